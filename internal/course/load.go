// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package course

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/relabs-tech/racecam/internal/geo"
)

// LoadOptions controls how a course file is interpreted.
type LoadOptions struct {
	OffRouteRadiusM float64 // nearest-vertex cutoff, DefaultOffRouteRadiusM if zero
	WaypointRadiusM float64 // radius for waypoints without one, DefaultWaypointRadiusM if zero
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.OffRouteRadiusM == 0 {
		o.OffRouteRadiusM = DefaultOffRouteRadiusM
	}
	if o.WaypointRadiusM == 0 {
		o.WaypointRadiusM = DefaultWaypointRadiusM
	}
	return o
}

// Load reads a course from a GeoJSON (.geojson/.json) or GPX (.gpx) file.
func Load(path string, opts LoadOptions) (*Course, error) {
	opts = opts.withDefaults()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read course file %s: %w", path, err)
		}
		c, err := ParseGeoJSON(data, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse course file %s: %w", path, err)
		}
		return c, nil
	case ".gpx":
		g, err := gpx.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse GPX file %s: %w", path, err)
		}
		c, err := fromGPX(g, opts)
		if err != nil {
			return nil, fmt.Errorf("course file %s: %w", path, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// featureCollection is the subset of GeoJSON a course file uses: one
// LineString feature for the route and Point features for waypoints.
type featureCollection struct {
	Type     string    `json:"type"`
	Name     string    `json:"name"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"` // [lon, lat(, ele)]
	} `json:"geometry"`
}

// ParseGeoJSON builds a course from a GeoJSON FeatureCollection. The first
// LineString is the route; every Point feature becomes a waypoint labelled by
// its "title" (or "name") property with an optional "radius" in meters.
func ParseGeoJSON(data []byte, opts LoadOptions) (*Course, error) {
	opts = opts.withDefaults()

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}

	var route []geo.Point
	var waypoints []Waypoint
	for i, f := range fc.Features {
		switch f.Geometry.Type {
		case "LineString":
			if route != nil {
				continue
			}
			var coords [][]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			route = make([]geo.Point, 0, len(coords))
			for j, c := range coords {
				if len(c) < 2 {
					return nil, fmt.Errorf("feature %d coordinate %d: %w", i, j, ErrInvalidPoint)
				}
				route = append(route, geo.Point{Lon: c[0], Lat: c[1]})
			}
		case "Point":
			var c []float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &c); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			if len(c) < 2 {
				return nil, fmt.Errorf("feature %d: %w", i, ErrInvalidPoint)
			}
			waypoints = append(waypoints, Waypoint{
				Point:   geo.Point{Lon: c[0], Lat: c[1]},
				RadiusM: radiusProperty(f.Properties, opts.WaypointRadiusM),
				Label:   labelProperty(f.Properties),
			})
		}
	}

	if route == nil {
		return nil, ErrNoRoute
	}
	return New(fc.Name, route, waypoints, opts.OffRouteRadiusM)
}

func labelProperty(props map[string]any) string {
	for _, key := range []string{"title", "name"} {
		if s, ok := props[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func radiusProperty(props map[string]any, fallback float64) float64 {
	if r, ok := props["radius"].(float64); ok && r > 0 {
		return r
	}
	return fallback
}

// fromGPX takes the route from the first track (all segments joined), or the
// first <rte> when there are no tracks, and waypoints from <wpt> elements.
func fromGPX(g *gpx.GPX, opts LoadOptions) (*Course, error) {
	var route []geo.Point
	var name string

	if len(g.Tracks) > 0 {
		name = g.Tracks[0].Name
		for _, seg := range g.Tracks[0].Segments {
			for _, p := range seg.Points {
				route = append(route, geo.Point{Lon: p.Longitude, Lat: p.Latitude})
			}
		}
	}
	if len(route) == 0 && len(g.Routes) > 0 {
		name = g.Routes[0].Name
		for _, p := range g.Routes[0].Points {
			route = append(route, geo.Point{Lon: p.Longitude, Lat: p.Latitude})
		}
	}
	if len(route) == 0 {
		return nil, ErrNoRoute
	}
	if name == "" {
		name = g.Name
	}

	waypoints := make([]Waypoint, 0, len(g.Waypoints))
	for _, w := range g.Waypoints {
		waypoints = append(waypoints, Waypoint{
			Point:   geo.Point{Lon: w.Longitude, Lat: w.Latitude},
			RadiusM: opts.WaypointRadiusM,
			Label:   w.Name,
		})
	}

	return New(name, route, waypoints, opts.OffRouteRadiusM)
}
