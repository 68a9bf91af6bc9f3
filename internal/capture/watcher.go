// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file size must stay unchanged before the file
// counts as fully written.
const DefaultSettle = 2 * time.Second

// Watcher reports files created in a directory once they stop growing.
// Cameras and FTP uploads write in bursts; handing over a file too early
// would upload a truncated image.
type Watcher struct {
	dir    string
	settle time.Duration
	logger *slog.Logger

	now func() time.Time
}

type pendingFile struct {
	firstSeen  time.Time
	lastChange time.Time
	size       int64
}

// NewWatcher watches dir. A non-positive settle selects DefaultSettle.
func NewWatcher(dir string, settle time.Duration, logger *slog.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{dir: dir, settle: settle, logger: logger, now: time.Now}
}

// Run watches until ctx is cancelled, calling handle sequentially for each
// settled file. Files already present when Run starts are ignored.
func (w *Watcher) Run(ctx context.Context, handle func(context.Context, Event)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for media", "dir", w.dir, "settle", w.settle)

	ticker := time.NewTicker(w.settle / 4)
	defer ticker.Stop()

	pending := make(map[string]*pendingFile)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				w.touch(pending, ev.Name)
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)

		case <-ticker.C:
			for _, ev := range w.settled(pending) {
				handle(ctx, ev)
			}
		}
	}
}

func (w *Watcher) touch(pending map[string]*pendingFile, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	now := w.now()
	p, ok := pending[path]
	if !ok {
		p = &pendingFile{firstSeen: now}
		pending[path] = p
	}
	p.lastChange = now
	p.size = info.Size()
}

// settled removes and returns the files whose size has been stable for the
// settle time.
func (w *Watcher) settled(pending map[string]*pendingFile) []Event {
	now := w.now()
	var out []Event
	for path, p := range pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(pending, path)
			continue
		}
		if info.Size() != p.size {
			p.size = info.Size()
			p.lastChange = now
			continue
		}
		if now.Sub(p.lastChange) < w.settle {
			continue
		}
		delete(pending, path)
		out = append(out, Event{Path: path, Size: p.size, Created: p.firstSeen})
	}
	// keep capture order
	sort.Slice(out, func(i, j int) bool { return before(out[i], out[j]) })
	return out
}

func before(a, b Event) bool {
	if !a.Created.Equal(b.Created) {
		return a.Created.Before(b.Created)
	}
	return a.Path < b.Path
}
