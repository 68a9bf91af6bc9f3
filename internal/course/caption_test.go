// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package course

import (
	"errors"
	"testing"
)

func TestCaption(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		opts     CaptionOptions
		expected string
	}{
		{
			name:     "off course",
			progress: Progress{DistanceKm: OffCourse, Waypoint: "Aid 1"},
			opts:     DefaultCaptionOptions(),
			expected: "Not on course.",
		},
		{
			name:     "with waypoint",
			progress: Progress{DistanceKm: 42.195, Waypoint: "Aid Station 2"},
			opts:     DefaultCaptionOptions(),
			expected: "Near Aid Station 2. 42.2km - 26.2mi in. 1% done!",
		},
		{
			name:     "without waypoint",
			progress: Progress{DistanceKm: 10},
			opts:     DefaultCaptionOptions(),
			expected: "10km - 6.2mi in. 1% done!",
		},
		{
			name:     "start line",
			progress: Progress{DistanceKm: 0, Waypoint: "Start"},
			opts:     DefaultCaptionOptions(),
			expected: "Near Start. 0km - 0mi in. 0% done!",
		},
		{
			name:     "past the divisor",
			progress: Progress{DistanceKm: 150.04},
			opts:     DefaultCaptionOptions(),
			expected: "150km - 93.2mi in. 2% done!",
		},
		{
			name:     "custom divisor",
			progress: Progress{DistanceKm: 50},
			opts:     CaptionOptions{ProgressDivisorKm: 1},
			expected: "50km - 31.1mi in. 50% done!",
		},
		{
			name:     "zero divisor falls back to default",
			progress: Progress{DistanceKm: 50},
			opts:     CaptionOptions{},
			expected: "50km - 31.1mi in. 1% done!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caption(tt.progress, tt.opts); got != tt.expected {
				t.Errorf("Caption(%+v) = %q, want %q", tt.progress, got, tt.expected)
			}
		})
	}
}

func TestCaptionOptionsValidate(t *testing.T) {
	if err := DefaultCaptionOptions().Validate(); err != nil {
		t.Errorf("default options: %v", err)
	}
	for _, div := range []float64{0, -5} {
		err := CaptionOptions{ProgressDivisorKm: div}.Validate()
		if !errors.Is(err, ErrInvalidProgressDiv) {
			t.Errorf("divisor %v: err = %v, want ErrInvalidProgressDiv", div, err)
		}
	}
}
