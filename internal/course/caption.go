// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package course

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// NotOnCourseCaption is used for every off-course position.
	NotOnCourseCaption = "Not on course."

	// DefaultProgressDivisorKm turns kilometers into the "% done" figure.
	// It is a flat 100 regardless of the real course length, which looks
	// wrong for anything but a 10,000 km course; kept as-is until the
	// intended meaning is confirmed, and overridable via config.
	DefaultProgressDivisorKm = 100.0

	kmToMiles = 0.6214
)

// CaptionOptions tunes caption rendering.
type CaptionOptions struct {
	ProgressDivisorKm float64
}

// Validate rejects settings Caption cannot use.
func (o CaptionOptions) Validate() error {
	if !(o.ProgressDivisorKm > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidProgressDiv, o.ProgressDivisorKm)
	}
	return nil
}

// DefaultCaptionOptions returns the caption settings used in the field.
func DefaultCaptionOptions() CaptionOptions {
	return CaptionOptions{ProgressDivisorKm: DefaultProgressDivisorKm}
}

// Caption renders the status text for a photo taken at the given progress,
// e.g. "Near Aid Station 2. 42.2km - 26.2mi in. 1% done!". A zero
// CaptionOptions uses the default divisor.
func Caption(p Progress, opts CaptionOptions) string {
	if !p.OnCourse() {
		return NotOnCourseCaption
	}

	div := opts.ProgressDivisorKm
	if div <= 0 {
		div = DefaultProgressDivisorKm
	}

	var b strings.Builder
	if p.Waypoint != "" {
		b.WriteString("Near ")
		b.WriteString(p.Waypoint)
		b.WriteString(". ")
	}
	b.WriteString(formatTenths(p.DistanceKm))
	b.WriteString("km - ")
	b.WriteString(formatTenths(p.DistanceKm * kmToMiles))
	b.WriteString("mi in. ")
	b.WriteString(strconv.FormatFloat(math.Ceil(p.DistanceKm/div), 'f', 0, 64))
	b.WriteString("% done!")
	return b.String()
}

// formatTenths renders v with at most one decimal: 12 -> "12", 12.34 -> "12.3".
func formatTenths(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
