// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/racecam/internal/config"
	"github.com/relabs-tech/racecam/internal/logging"
)

var (
	configPath string
	logLevel   string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "racecam",
	Short: "Race photo geotagger and publish queue",
	Long: "racecam captions new photos and videos with course progress from the GPS " +
		"and publishes them from a durable Redis queue whenever the network is up.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "racecam.conf", "Path to the KEY=VALUE configuration file (empty to use environment only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Also log to stdout when LOG_FILE is set")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(gpsCmd)
}

// setup loads the configuration and builds the logger every subcommand uses.
// The returned function closes the log file.
func setup() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: logConsole,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)

	return cfg, logger, func() { _ = closeLog() }, nil
}
