// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"slices"
	"sync"

	"github.com/relabs-tech/racecam/internal/course"
)

// Tracker stamps raw fixes with course progress, remembers the latest one
// and fans it out to the registered handlers.
type Tracker struct {
	course      *course.Course
	captionOpts course.CaptionOptions

	mu       sync.RWMutex
	last     Fix
	haveLast bool
	handlers []func(context.Context, Fix)
}

// NewTracker creates a tracker for the given course.
func NewTracker(c *course.Course, opts course.CaptionOptions) *Tracker {
	return &Tracker{course: c, captionOpts: opts}
}

// AddHandler registers a function called with every processed fix.
// Handlers run synchronously in registration order.
func (t *Tracker) AddHandler(h func(context.Context, Fix)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, h)
}

// Update computes progress for raw, records it as the latest fix and
// notifies handlers. The stamped fix is returned.
func (t *Tracker) Update(ctx context.Context, raw Fix) Fix {
	fix := raw.withProgress(t.course.Progress(raw.Point()), t.captionOpts)

	t.mu.Lock()
	t.last = fix
	t.haveLast = true
	handlers := slices.Clone(t.handlers)
	t.mu.Unlock()

	for _, h := range handlers {
		h(ctx, fix)
	}
	return fix
}

// Latest returns the most recent fix seen by this process.
func (t *Tracker) Latest() (Fix, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.haveLast
}
