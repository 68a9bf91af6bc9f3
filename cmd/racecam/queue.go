// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/racecam/internal/store"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect or edit the publish queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued media, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQueue(cmd.Context(), func(ctx context.Context, q *store.MediaQueue) error {
			entries, err := q.Entries(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "QUEUED\tPUBLISHED\tPATH\tCAPTION")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%t\t%s\t%s\n",
					time.UnixMilli(e.EnqueuedAt).Format(time.DateTime), e.Published, e.Path, e.Caption)
			}
			return w.Flush()
		})
	},
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove PATH...",
	Short: "Drop media from the queue without publishing or deleting the files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQueue(cmd.Context(), func(ctx context.Context, q *store.MediaQueue) error {
			for _, path := range args {
				if err := q.Remove(ctx, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
			}
			return nil
		})
	},
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueRemoveCmd)
}

func withQueue(ctx context.Context, fn func(context.Context, *store.MediaQueue) error) error {
	cfg, _, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	rdb, err := store.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	return fn(ctx, store.NewMediaQueue(rdb))
}
