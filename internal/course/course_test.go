// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package course

import (
	"errors"
	"math"
	"testing"

	"github.com/relabs-tech/racecam/internal/geo"
)

func straightCourse(t *testing.T, waypoints ...Waypoint) *Course {
	t.Helper()
	c, err := New("straight", []geo.Point{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}, {Lon: 0, Lat: 2}}, waypoints, DefaultOffRouteRadiusM)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		route     []geo.Point
		waypoints []Waypoint
		radius    float64
		want      error
	}{
		{"single point", []geo.Point{{Lon: 0, Lat: 0}}, nil, 1000, ErrRouteTooShort},
		{"empty", nil, nil, 1000, ErrRouteTooShort},
		{"bad route point", []geo.Point{{Lon: 0, Lat: 0}, {Lon: 200, Lat: 0}}, nil, 1000, ErrInvalidPoint},
		{"bad waypoint", []geo.Point{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}}, []Waypoint{{Point: geo.Point{Lon: 0, Lat: 95}, RadiusM: 10}}, 1000, ErrInvalidPoint},
		{"zero waypoint radius", []geo.Point{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}}, []Waypoint{{Point: geo.Point{}, RadiusM: 0}}, 1000, ErrInvalidRadius},
		{"zero off-route radius", []geo.Point{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}}, nil, 0, ErrInvalidRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("x", tt.route, tt.waypoints, tt.radius)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDistanceAlongRouteOnVertex(t *testing.T) {
	c := straightCourse(t)

	want := geo.Distance(geo.Point{Lon: 0, Lat: 0}, geo.Point{Lon: 0, Lat: 1}) / 1000
	got := c.DistanceAlongRoute(geo.Point{Lon: 0, Lat: 1})
	if got == OffCourse {
		t.Fatalf("fix on a route vertex reported off course")
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("DistanceAlongRoute((0,1)) = %f km, want %f km", got, want)
	}

	if got := c.DistanceAlongRoute(geo.Point{Lon: 0, Lat: 0}); got != 0 {
		t.Errorf("DistanceAlongRoute at start = %f, want 0", got)
	}
}

func TestDistanceAlongRouteOffCourse(t *testing.T) {
	c := straightCourse(t)

	// 2000 m east of the middle vertex
	offset := 2000 / (geo.EarthRadiusM * math.Pi / 180) / math.Cos(1*math.Pi/180)
	p := geo.Point{Lon: offset, Lat: 1}
	if d := geo.Distance(p, geo.Point{Lon: 0, Lat: 1}); math.Abs(d-2000) > 5 {
		t.Fatalf("test point is %f m from the vertex, want ~2000", d)
	}

	if got := c.DistanceAlongRoute(p); got != OffCourse {
		t.Errorf("DistanceAlongRoute 2km off route = %f, want OffCourse", got)
	}
	if got := Caption(c.Progress(p), DefaultCaptionOptions()); got != NotOnCourseCaption {
		t.Errorf("Caption off course = %q, want %q", got, NotOnCourseCaption)
	}
}

func TestDistanceAlongRouteThreshold(t *testing.T) {
	c := straightCourse(t)
	metersPerDegree := geo.EarthRadiusM * math.Pi / 180

	inside := geo.Point{Lon: 0, Lat: 2 + 900/metersPerDegree}
	if got := c.DistanceAlongRoute(inside); got == OffCourse {
		t.Errorf("point 900m past the finish reported off course")
	}

	outside := geo.Point{Lon: 0, Lat: 2 + 1100/metersPerDegree}
	if got := c.DistanceAlongRoute(outside); got != OffCourse {
		t.Errorf("point 1100m past the finish = %f, want OffCourse", got)
	}
}

func TestDistanceAlongRouteMonotonic(t *testing.T) {
	route := []geo.Point{
		{Lon: -105.2705, Lat: 40.0150},
		{Lon: -105.2690, Lat: 40.0162},
		{Lon: -105.2671, Lat: 40.0170},
		{Lon: -105.2650, Lat: 40.0171},
		{Lon: -105.2631, Lat: 40.0185},
		{Lon: -105.2610, Lat: 40.0199},
		{Lon: -105.2600, Lat: 40.0220},
	}
	c, err := New("loop", route, nil, DefaultOffRouteRadiusM)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	prev := -1.0
	for i, p := range route {
		got := c.DistanceAlongRoute(p)
		if got == OffCourse {
			t.Fatalf("vertex %d reported off course", i)
		}
		if got < prev {
			t.Errorf("vertex %d distance %f decreased from %f", i, got, prev)
		}
		prev = got
	}
	if math.Abs(prev-c.LengthKm()) > 1e-9 {
		t.Errorf("distance at last vertex = %f, want course length %f", prev, c.LengthKm())
	}
}

func TestNearestVertexTieUsesFirst(t *testing.T) {
	// out-and-back: the turnaround's neighbours coincide
	c, err := New("out-and-back", []geo.Point{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 0.001}, {Lon: 0, Lat: 0.002}, {Lon: 0, Lat: 0.001}, {Lon: 0, Lat: 0}}, nil, DefaultOffRouteRadiusM)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := geo.Distance(geo.Point{Lon: 0, Lat: 0}, geo.Point{Lon: 0, Lat: 0.001}) / 1000
	if got := c.DistanceAlongRoute(geo.Point{Lon: 0, Lat: 0.001}); math.Abs(got-want) > 1e-9 {
		t.Errorf("DistanceAlongRoute on a repeated vertex = %f, want first occurrence %f", got, want)
	}
}

func TestWaypointAtFirstMatchWins(t *testing.T) {
	far := Waypoint{Point: geo.Point{Lon: 0, Lat: 1.0005}, RadiusM: 200, Label: "Listed First"}
	near := Waypoint{Point: geo.Point{Lon: 0, Lat: 1}, RadiusM: 200, Label: "Closer"}
	c := straightCourse(t, far, near)

	p := geo.Point{Lon: 0, Lat: 1}
	if got := c.WaypointAt(p); got != "Listed First" {
		t.Errorf("WaypointAt = %q, want the first listed waypoint", got)
	}

	c = straightCourse(t, near, far)
	if got := c.WaypointAt(p); got != "Closer" {
		t.Errorf("WaypointAt with swapped order = %q, want %q", got, "Closer")
	}
}

func TestWaypointAtNoMatch(t *testing.T) {
	c := straightCourse(t, Waypoint{Point: geo.Point{Lon: 0, Lat: 2}, RadiusM: 100, Label: "Finish"})
	if got := c.WaypointAt(geo.Point{Lon: 0, Lat: 1}); got != "" {
		t.Errorf("WaypointAt away from all waypoints = %q, want empty", got)
	}
}

func TestProgress(t *testing.T) {
	c := straightCourse(t, Waypoint{Point: geo.Point{Lon: 0, Lat: 2}, RadiusM: 100, Label: "Finish"})
	p := c.Progress(geo.Point{Lon: 0, Lat: 2})
	if !p.OnCourse() {
		t.Fatalf("finish reported off course")
	}
	if p.Waypoint != "Finish" {
		t.Errorf("Progress waypoint = %q, want Finish", p.Waypoint)
	}
	if math.Abs(p.DistanceKm-c.LengthKm()) > 1e-9 {
		t.Errorf("Progress distance = %f, want %f", p.DistanceKm, c.LengthKm())
	}
}
