// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package capture turns new media files into queued, captioned posts.
package capture

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/relabs-tech/racecam/internal/gps"
)

// DefaultExtensions are the media types the camera produces.
var DefaultExtensions = []string{".jpg", ".jpeg", ".mp4"}

// Event announces a media file that has finished being written.
type Event struct {
	Path    string
	Size    int64
	Created time.Time
}

// Enqueuer is the part of the media queue the pipeline writes to.
type Enqueuer interface {
	Enqueue(ctx context.Context, path string, ts int64) (bool, error)
	SetCaption(ctx context.Context, path, caption string) error
}

// Options configure a Pipeline.
type Options struct {
	Extensions []string

	// Resizer shrinks images before they are queued; nil keeps originals.
	Resizer *Resizer

	// OnQueued, if set, is called for every newly queued file.
	OnQueued func(ctx context.Context, path string, fix gps.Fix)
}

// Pipeline handles one file event at a time: filter, resize, locate,
// enqueue, caption.
type Pipeline struct {
	queue      Enqueuer
	source     gps.Source
	logger     *slog.Logger
	extensions map[string]bool
	resizer    *Resizer
	onQueued   func(context.Context, string, gps.Fix)
	now        func() time.Time
}

// NewPipeline builds a pipeline writing to queue and asking source for the
// position of each capture.
func NewPipeline(queue Enqueuer, source gps.Source, logger *slog.Logger, opts Options) *Pipeline {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	p := &Pipeline{
		queue:      queue,
		source:     source,
		logger:     logger,
		extensions: make(map[string]bool, len(exts)),
		resizer:    opts.Resizer,
		onQueued:   opts.OnQueued,
		now:        time.Now,
	}
	for _, ext := range exts {
		p.extensions[normalizeExt(ext)] = true
	}
	return p
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Accepts reports whether path has one of the configured extensions.
func (p *Pipeline) Accepts(path string) bool {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

// Handle processes one event. Only a queue failure is returned: without a
// queue record the file would never be published. Resize and position
// problems are logged and the file is queued anyway.
func (p *Pipeline) Handle(ctx context.Context, ev Event) error {
	if !p.Accepts(ev.Path) {
		return nil
	}
	log := p.logger.With("path", ev.Path)

	if p.resizer != nil && isImage(ev.Path) {
		if resized, err := p.resizer.ResizeFile(ev.Path); err != nil {
			log.Warn("resize failed, keeping original", "err", err)
		} else if resized {
			log.Debug("image resized", "max_dimension", p.resizer.MaxDimension)
		}
	}

	fix, haveFix, err := p.source.Current(ctx)
	if err != nil {
		log.Warn("position unavailable", "err", err)
		haveFix = false
	}

	created := ev.Created
	if created.IsZero() {
		created = p.now()
	}
	ts := created.UnixMilli()

	added, err := p.queue.Enqueue(ctx, ev.Path, ts)
	if err != nil {
		return err
	}
	if !added {
		log.Debug("already queued")
		return nil
	}

	if haveFix {
		if err := p.queue.SetCaption(ctx, ev.Path, fix.Caption); err != nil {
			log.Error("storing caption failed", "err", err)
		}
	}
	log.Info("media queued", "ts", ts, "caption", fix.Caption, "fix", haveFix)

	if p.onQueued != nil {
		p.onQueued(ctx, ev.Path, fix)
	}
	return nil
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
