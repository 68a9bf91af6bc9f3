// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import "errors"

var (
	ErrMalformedCoordinate = errors.New("malformed degree-minute coordinate")
	ErrUnknownHemisphere   = errors.New("hemisphere must be one of N, S, E, W")
)
