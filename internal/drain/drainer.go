// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package drain publishes queued media, oldest first, whenever the network
// allows it.
package drain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/racecam/internal/publish"
	"github.com/relabs-tech/racecam/internal/store"
)

// State is what the drainer is doing right now.
type State int32

const (
	Idle State = iota
	CheckingConnectivity
	Publishing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CheckingConnectivity:
		return "checking-connectivity"
	case Publishing:
		return "publishing"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Next tells Run when to start the following cycle.
type Next int

const (
	// Wait sleeps for the drain interval.
	Wait Next = iota
	// DrainNow starts the next cycle immediately.
	DrainNow
)

const (
	DefaultInterval       = 10 * time.Second
	DefaultPublishTimeout = 5 * time.Minute
)

// Queue is the subset of the media queue the drainer uses.
type Queue interface {
	ListPending(ctx context.Context) (map[string]int64, error)
	Caption(ctx context.Context, path string) (string, error)
	IsPublished(ctx context.Context, path string) (bool, error)
	MarkPublished(ctx context.Context, path string, ts int64) error
	Remove(ctx context.Context, path string) error
}

// Options tune the drainer. Zero values select the defaults.
type Options struct {
	Interval       time.Duration
	PublishTimeout time.Duration

	// KeepFiles leaves media on disk after publishing. Dry runs use it so
	// development never deletes real captures.
	KeepFiles bool

	// OnPublished, if set, is called after an entry has been posted and
	// removed.
	OnPublished func(ctx context.Context, path, caption string)
}

// Drainer moves media from the durable queue to the publisher, one entry
// per cycle. Only Run schedules cycles, so two never overlap.
type Drainer struct {
	queue     Queue
	publisher publish.Publisher
	prober    Prober
	logger    *slog.Logger
	opts      Options

	state  atomic.Int32
	cycles atomic.Int64

	// unpublished entries whose file was missing in the previous cycle;
	// only Cycle touches it
	missing map[string]bool

	// swapped in tests
	removeFile func(string) error
	now        func() time.Time
}

// New creates a drainer.
func New(queue Queue, publisher publish.Publisher, prober Prober, logger *slog.Logger, opts Options) *Drainer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}
	return &Drainer{
		queue:      queue,
		publisher:  publisher,
		prober:     prober,
		logger:     logger,
		opts:       opts,
		missing:    make(map[string]bool),
		removeFile: os.Remove,
		now:        time.Now,
	}
}

// State reports the current phase of the running cycle.
func (d *Drainer) State() State {
	return State(d.state.Load())
}

func (d *Drainer) setState(s State) {
	d.state.Store(int32(s))
}

// Run drains until ctx is cancelled: immediately again while entries remain
// after a successful cycle, otherwise after the fixed interval.
func (d *Drainer) Run(ctx context.Context) error {
	d.logger.Info("queue drainer started", "interval", d.opts.Interval, "publish_timeout", d.opts.PublishTimeout)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("queue drainer stopped")
			return nil
		case <-timer.C:
		}

		next, err := d.Cycle(ctx)
		if err != nil && ctx.Err() == nil {
			d.logger.Warn("drain cycle failed", "err", err)
		}

		if next == DrainNow {
			timer.Reset(0)
		} else {
			timer.Reset(d.opts.Interval)
		}
	}
}

// Cycle publishes at most one entry, the oldest. Any error leaves the entry
// queued and asks the caller to wait.
func (d *Drainer) Cycle(ctx context.Context) (Next, error) {
	defer d.setState(Idle)
	cycle := d.cycles.Add(1)
	log := d.logger.With("cycle", cycle)

	pending, err := d.queue.ListPending(ctx)
	if err != nil {
		return Wait, err
	}
	if len(pending) == 0 {
		return Wait, nil
	}

	d.setState(CheckingConnectivity)
	if err := d.prober.Probe(ctx); err != nil {
		log.Info("no connectivity, keeping queue", "pending", len(pending), "err", err)
		return Wait, fmt.Errorf("%w: %v", ErrOffline, err)
	}

	path, ts, _ := store.Oldest(pending)
	next := Wait
	if len(pending) > 1 {
		next = DrainNow
	}
	log = log.With("path", path, "ts", ts)

	published, err := d.queue.IsPublished(ctx, path)
	if err != nil {
		return Wait, err
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		// a card that is briefly unmounted gets one more cycle
		if !published && !d.missing[path] {
			d.missing[path] = true
			log.Warn("queued media file is missing, retrying next cycle")
			return Wait, nil
		}
		delete(d.missing, path)
		log.Warn("queued media file is gone, dropping record", "published", published)
		if err := d.queue.Remove(ctx, path); err != nil {
			return Wait, err
		}
		return next, nil
	}
	delete(d.missing, path)

	caption, err := d.queue.Caption(ctx, path)
	if err != nil {
		return Wait, err
	}

	if published {
		log.Info("already published, finishing cleanup")
	} else {
		if err := d.publish(ctx, path, caption); err != nil {
			return Wait, err
		}
		if err := d.queue.MarkPublished(ctx, path, d.now().UnixMilli()); err != nil {
			return Wait, err
		}
		log.Info("media published", "caption", caption)
	}

	if !d.opts.KeepFiles {
		if err := d.removeFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Wait, fmt.Errorf("%w: %s: %v", ErrDeleteMedia, path, err)
		}
	}
	if err := d.queue.Remove(ctx, path); err != nil {
		return Wait, err
	}

	if d.opts.OnPublished != nil {
		d.opts.OnPublished(ctx, path, caption)
	}
	return next, nil
}

func (d *Drainer) publish(ctx context.Context, path, caption string) error {
	d.setState(Publishing)

	ctx, cancel := context.WithTimeout(ctx, d.opts.PublishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, path, caption); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}
