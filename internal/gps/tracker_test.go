// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/relabs-tech/racecam/internal/course"
	"github.com/relabs-tech/racecam/internal/geo"
)

func testCourse(t *testing.T) *course.Course {
	t.Helper()
	c, err := course.New("equator",
		[]geo.Point{{Lon: 0, Lat: 0}, {Lon: 0.01, Lat: 0}, {Lon: 0.02, Lat: 0}},
		[]course.Waypoint{{Point: geo.Point{Lon: 0.02, Lat: 0}, RadiusM: 100, Label: "Finish"}},
		course.DefaultOffRouteRadiusM,
	)
	if err != nil {
		t.Fatalf("course.New: %v", err)
	}
	return c
}

func TestTrackerUpdate(t *testing.T) {
	tr := NewTracker(testCourse(t), course.DefaultCaptionOptions())

	if _, ok := tr.Latest(); ok {
		t.Fatal("Latest() before any update should report no fix")
	}

	var seen []Fix
	tr.AddHandler(func(_ context.Context, f Fix) { seen = append(seen, f) })

	fix := tr.Update(context.Background(), Fix{Time: "10:00:00", Date: "01/01/26", Latitude: 0, Longitude: 0.01})
	if fix.Caption != "1.1km - 0.7mi in. 1% done!" {
		t.Errorf("Caption = %q", fix.Caption)
	}
	if fix.Waypoint != "" {
		t.Errorf("Waypoint = %q, want none", fix.Waypoint)
	}

	fix = tr.Update(context.Background(), Fix{Latitude: 0, Longitude: 0.02})
	if fix.Waypoint != "Finish" {
		t.Errorf("Waypoint = %q, want Finish", fix.Waypoint)
	}

	latest, ok := tr.Latest()
	if !ok || latest != fix {
		t.Errorf("Latest() = %+v, %v; want %+v", latest, ok, fix)
	}
	if len(seen) != 2 || seen[1] != fix {
		t.Errorf("handler saw %+v", seen)
	}
}

func TestTrackerOffCourse(t *testing.T) {
	tr := NewTracker(testCourse(t), course.DefaultCaptionOptions())

	fix := tr.Update(context.Background(), Fix{Latitude: 0.05, Longitude: 0.01})
	if fix.DistanceKm != course.OffCourse || fix.Caption != course.NotOnCourseCaption {
		t.Errorf("fix = %+v, want off course", fix)
	}
}

type stubQuerier struct {
	fix Fix
	ok  bool
	err error
}

func (s stubQuerier) QueryLocation(context.Context) (Fix, bool, error) {
	return s.fix, s.ok, s.err
}

func TestPollingSource(t *testing.T) {
	tr := NewTracker(testCourse(t), course.DefaultCaptionOptions())

	disabled := NewPollingSource(nil, tr)
	if fix, ok, err := disabled.Current(context.Background()); ok || err != nil || fix != (Fix{}) {
		t.Errorf("disabled source = %+v, %v, %v", fix, ok, err)
	}

	src := &PollingSource{modem: stubQuerier{fix: Fix{Longitude: 0.02}, ok: true}, tracker: tr}
	fix, ok, err := src.Current(context.Background())
	if err != nil || !ok || fix.Waypoint != "Finish" {
		t.Errorf("Current() = %+v, %v, %v", fix, ok, err)
	}

	failing := &PollingSource{modem: stubQuerier{err: ErrModem}, tracker: tr}
	if _, ok, err := failing.Current(context.Background()); ok || !errors.Is(err, ErrModem) {
		t.Errorf("failing Current() ok=%v err=%v", ok, err)
	}

	searching := &PollingSource{modem: stubQuerier{}, tracker: tr}
	if _, ok, err := searching.Current(context.Background()); ok || err != nil {
		t.Errorf("searching Current() ok=%v err=%v", ok, err)
	}
}

func TestTrackerHandlersRunOutsideLock(t *testing.T) {
	tr := NewTracker(testCourse(t), course.DefaultCaptionOptions())
	ctx := context.Background()

	var order []string
	tr.AddHandler(func(ctx context.Context, f Fix) {
		order = append(order, "first")
		// handlers may read the tracker and register more handlers
		if _, ok := tr.Latest(); !ok {
			t.Error("Latest() inside a handler should see the fix")
		}
		if len(order) == 1 {
			tr.AddHandler(func(context.Context, Fix) { order = append(order, "late") })
		}
	})
	tr.AddHandler(func(context.Context, Fix) { order = append(order, "second") })

	tr.Update(ctx, Fix{Longitude: 0.01})
	if got := strings.Join(order, ","); got != "first,second" {
		t.Errorf("first update ran %q, want first,second", got)
	}

	order = nil
	tr.Update(ctx, Fix{Longitude: 0.02})
	if got := strings.Join(order, ","); got != "first,second,late" {
		t.Errorf("second update ran %q, want first,second,late", got)
	}
}
