// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/racecam/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch for media, track the GPS and drain the publish queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("starting racecam", "env", cfg.Env, "config", configPath)
		if err := app.Run(ctx, cfg, logger); err != nil {
			logger.Error("racecam stopped", "err", err)
			return err
		}
		logger.Info("racecam stopped")
		return nil
	},
}
