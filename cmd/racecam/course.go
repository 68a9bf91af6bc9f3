// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/racecam/internal/course"
	"github.com/relabs-tech/racecam/internal/geo"
)

var (
	courseLat float64
	courseLon float64
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Show the configured course, or the caption for a position on it",
	Long: "course loads COURSE_FILE and prints its summary. With --lat and --lon it " +
		"prints the progress and caption a photo taken there would get.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		c, err := course.Load(cfg.CourseFile, course.LoadOptions{
			OffRouteRadiusM: cfg.OffRouteRadiusM,
			WaypointRadiusM: cfg.WaypointRadiusM,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !cmd.Flags().Changed("lat") && !cmd.Flags().Changed("lon") {
			fmt.Fprintf(out, "%s: %.2f km, %d route points, %d waypoints\n", c.Name, c.LengthKm(), len(c.Route), len(c.Waypoints))
			for _, w := range c.Waypoints {
				fmt.Fprintf(out, "  %-24s %.6f,%.6f r=%.0fm\n", w.Label, w.Point.Lat, w.Point.Lon, w.RadiusM)
			}
			return nil
		}

		p := c.Progress(geo.Point{Lat: courseLat, Lon: courseLon})
		if p.OnCourse() {
			fmt.Fprintf(out, "distance: %.3f km\n", p.DistanceKm)
		} else {
			fmt.Fprintln(out, "distance: off course")
		}
		if p.Waypoint != "" {
			fmt.Fprintf(out, "waypoint: %s\n", p.Waypoint)
		}
		fmt.Fprintf(out, "caption:  %s\n", course.Caption(p, course.CaptionOptions{ProgressDivisorKm: cfg.ProgressDivisorKm}))
		return nil
	},
}

func init() {
	courseCmd.Flags().Float64Var(&courseLat, "lat", 0, "Latitude in decimal degrees")
	courseCmd.Flags().Float64Var(&courseLon, "lon", 0, "Longitude in decimal degrees")
}
