// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package course models a race course (route polyline plus named waypoints)
// and computes how far along it a position is.
//
// A Course is immutable once built and is shared read-only by every fix
// computation, so it carries no locks.
package course

import (
	"fmt"

	"github.com/relabs-tech/racecam/internal/geo"
)

const (
	// OffCourse is the distance reported for positions too far from the route.
	OffCourse = -1.0

	// DefaultOffRouteRadiusM is how far from the nearest route vertex a
	// position may be and still count as on course.
	DefaultOffRouteRadiusM = 1000.0

	// DefaultWaypointRadiusM is used for waypoints that do not carry a radius.
	DefaultWaypointRadiusM = 100.0
)

// Waypoint is a named point of interest with a proximity radius.
type Waypoint struct {
	Point   geo.Point `json:"point"`
	RadiusM float64   `json:"radius_m"`
	Label   string    `json:"label"`
}

// Course is an ordered route polyline and an ordered waypoint list.
type Course struct {
	Name            string
	Route           []geo.Point
	Waypoints       []Waypoint
	OffRouteRadiusM float64

	// cumulative[i] is the path length in meters from Route[0] to Route[i]
	cumulative []float64
}

// Progress is where a position sits relative to the course.
type Progress struct {
	DistanceKm float64 `json:"distance_km"`
	Waypoint   string  `json:"waypoint"`
}

// OnCourse reports whether the distance is a real value rather than OffCourse.
func (p Progress) OnCourse() bool {
	return p.DistanceKm != OffCourse
}

// New validates the geometry and builds a Course. Waypoints keep the order
// they are given in; that order decides overlapping matches.
func New(name string, route []geo.Point, waypoints []Waypoint, offRouteRadiusM float64) (*Course, error) {
	if len(route) < 2 {
		return nil, ErrRouteTooShort
	}
	if offRouteRadiusM <= 0 {
		return nil, fmt.Errorf("off-route %w", ErrInvalidRadius)
	}
	for i, p := range route {
		if !p.Valid() {
			return nil, fmt.Errorf("route point %d %v: %w", i, p, ErrInvalidPoint)
		}
	}
	for i, w := range waypoints {
		if !w.Point.Valid() {
			return nil, fmt.Errorf("waypoint %d %q: %w", i, w.Label, ErrInvalidPoint)
		}
		if w.RadiusM <= 0 {
			return nil, fmt.Errorf("waypoint %d %q: %w", i, w.Label, ErrInvalidRadius)
		}
	}

	c := &Course{
		Name:            name,
		Route:           append([]geo.Point(nil), route...),
		Waypoints:       append([]Waypoint(nil), waypoints...),
		OffRouteRadiusM: offRouteRadiusM,
		cumulative:      make([]float64, len(route)),
	}
	for i := 1; i < len(route); i++ {
		c.cumulative[i] = c.cumulative[i-1] + geo.Distance(route[i-1], route[i])
	}
	return c, nil
}

// LengthKm is the total route length.
func (c *Course) LengthKm() float64 {
	return geo.PathLength(c.Route) / 1000
}

// nearestVertex returns the index of the route vertex closest to p and its
// distance in meters. Ties resolve to the earliest vertex.
func (c *Course) nearestVertex(p geo.Point) (int, float64) {
	best, bestDist := 0, geo.Distance(p, c.Route[0])
	for i := 1; i < len(c.Route); i++ {
		if d := geo.Distance(p, c.Route[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// DistanceAlongRoute snaps p to the nearest route vertex (vertices only, no
// segment projection) and returns the route length from the start to that
// vertex in kilometers, or OffCourse when the vertex is farther than
// OffRouteRadiusM from p.
func (c *Course) DistanceAlongRoute(p geo.Point) float64 {
	idx, d := c.nearestVertex(p)
	if d > c.OffRouteRadiusM {
		return OffCourse
	}
	return c.cumulative[idx] / 1000
}

// WaypointAt returns the label of the first waypoint, in stored order, whose
// radius contains p. Overlapping radii resolve by list order, not by
// proximity: a later waypoint never wins even when it is closer.
func (c *Course) WaypointAt(p geo.Point) string {
	for _, w := range c.Waypoints {
		if geo.WithinRadius(p, w.Point, w.RadiusM) {
			return w.Label
		}
	}
	return ""
}

// Progress combines DistanceAlongRoute and WaypointAt.
func (c *Course) Progress(p geo.Point) Progress {
	return Progress{
		DistanceKm: c.DistanceAlongRoute(p),
		Waypoint:   c.WaypointAt(p),
	}
}
