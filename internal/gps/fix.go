// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"github.com/relabs-tech/racecam/internal/course"
	"github.com/relabs-tech/racecam/internal/geo"
)

// Fix represents a single decoded GPS reading plus its course progress,
// suitable for JSON, MQTT and the durable state hash.
type Fix struct {
	Time       string  `json:"time"`  // e.g. "12:34:56" (UTC)
	Date       string  `json:"date"`  // e.g. "23/03/94" (DD/MM/YY)
	Latitude   float64 `json:"lat"`   // decimal degrees
	Longitude  float64 `json:"lon"`   // decimal degrees
	DistanceKm float64 `json:"dist"`  // along the route, course.OffCourse when off route
	Waypoint   string  `json:"wp"`    // first waypoint whose radius contains the fix
	Caption    string  `json:"title"` // status text for photos taken at this fix
}

// Point returns the fix position.
func (f Fix) Point() geo.Point {
	return geo.Point{Lon: f.Longitude, Lat: f.Latitude}
}

// withProgress returns a copy of f stamped with course progress and caption.
func (f Fix) withProgress(p course.Progress, opts course.CaptionOptions) Fix {
	f.DistanceKm = p.DistanceKm
	f.Waypoint = p.Waypoint
	f.Caption = course.Caption(p, opts)
	return f
}
