// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package course

import "errors"

// Common errors returned while loading a course
var (
	ErrRouteTooShort      = errors.New("course route needs at least two points")
	ErrNoRoute            = errors.New("course file has no LineString route")
	ErrInvalidPoint       = errors.New("course point is outside coordinate ranges")
	ErrUnsupportedFormat  = errors.New("unsupported course file format (want .geojson, .json or .gpx)")
	ErrInvalidRadius      = errors.New("radius must be positive")
	ErrInvalidProgressDiv = errors.New("progress divisor must be positive")
)
