// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/racecam/internal/config"
	"github.com/relabs-tech/racecam/internal/course"
	"github.com/relabs-tech/racecam/internal/gps"
)

var gpsCmd = &cobra.Command{
	Use:   "gps",
	Short: "Talk to the GNSS modem (production only)",
}

var gpsActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Switch the modem's GNSS engine on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withModem(cmd.Context(), func(ctx context.Context, _ *config.Config, m *gps.Modem) error {
			if err := m.Activate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "GNSS engine active")
			return nil
		})
	},
}

var gpsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask the modem for one position and print its caption",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withModem(cmd.Context(), func(ctx context.Context, cfg *config.Config, m *gps.Modem) error {
			fix, ok, err := m.QueryLocation(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "no fix")
				return nil
			}

			c, err := course.Load(cfg.CourseFile, course.LoadOptions{
				OffRouteRadiusM: cfg.OffRouteRadiusM,
				WaypointRadiusM: cfg.WaypointRadiusM,
			})
			if err != nil {
				return err
			}
			fix = gps.NewTracker(c, course.CaptionOptions{ProgressDivisorKm: cfg.ProgressDivisorKm}).Update(ctx, fix)

			fmt.Fprintf(out, "%s %s  %.6f,%.6f\n", fix.Date, fix.Time, fix.Latitude, fix.Longitude)
			fmt.Fprintf(out, "caption: %s\n", fix.Caption)
			return nil
		})
	},
}

func init() {
	gpsCmd.AddCommand(gpsActivateCmd)
	gpsCmd.AddCommand(gpsQueryCmd)
}

func withModem(ctx context.Context, fn func(context.Context, *config.Config, *gps.Modem) error) error {
	cfg, _, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if !cfg.Production() {
		return gps.ErrHardwareDisabled
	}

	m, err := gps.OpenModem(cfg.ModemSerialPort, cfg.ModemBaudRate, cfg.ModemReadTimeout)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(ctx, cfg, m)
}
