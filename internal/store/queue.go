// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis hashes backing the queue, all keyed by media path.
const (
	MediaKey     = "media"           // path -> enqueue time (unix ms)
	TitlesKey    = "media:titles"    // path -> caption
	PublishedKey = "media:published" // path -> publish time (unix ms)
)

// Entry is one queued media file.
type Entry struct {
	Path       string `json:"path"`
	EnqueuedAt int64  `json:"ts"`
	Caption    string `json:"caption"`
	Published  bool   `json:"published"`
}

// MediaQueue is the durable FIFO of media waiting to be published.
// Ordering is by enqueue timestamp, not by insertion.
type MediaQueue struct {
	rdb redis.Cmdable
}

// NewMediaQueue wraps a Redis client.
func NewMediaQueue(rdb redis.Cmdable) *MediaQueue {
	return &MediaQueue{rdb: rdb}
}

// Enqueue records path with timestamp ts. An existing record is never
// overwritten; added reports whether a new record was created.
func (q *MediaQueue) Enqueue(ctx context.Context, path string, ts int64) (added bool, err error) {
	added, err = q.rdb.HSetNX(ctx, MediaKey, path, ts).Result()
	if err != nil {
		return false, fmt.Errorf("enqueue %s: %w", path, err)
	}
	return added, nil
}

// SetCaption stores the caption for path. It does not require the path to
// be queued.
func (q *MediaQueue) SetCaption(ctx context.Context, path, caption string) error {
	if err := q.rdb.HSet(ctx, TitlesKey, path, caption).Err(); err != nil {
		return fmt.Errorf("set caption %s: %w", path, err)
	}
	return nil
}

// Caption returns the caption stored for path, or "" if there is none.
func (q *MediaQueue) Caption(ctx context.Context, path string) (string, error) {
	caption, err := q.rdb.HGet(ctx, TitlesKey, path).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get caption %s: %w", path, err)
	}
	return caption, nil
}

// ListPending returns a snapshot of every queued path and its timestamp.
// Records whose timestamp does not parse are left out.
func (q *MediaQueue) ListPending(ctx context.Context) (map[string]int64, error) {
	raw, err := q.rdb.HGetAll(ctx, MediaKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return parseTimestamps(raw), nil
}

// Entries returns the queue joined with captions and publish markers,
// oldest first.
func (q *MediaQueue) Entries(ctx context.Context) ([]Entry, error) {
	pending, err := q.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := q.rdb.HGetAll(ctx, TitlesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list captions: %w", err)
	}
	published, err := q.rdb.HGetAll(ctx, PublishedKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list published: %w", err)
	}

	entries := make([]Entry, 0, len(pending))
	for path, ts := range pending {
		_, done := published[path]
		entries = append(entries, Entry{
			Path:       path,
			EnqueuedAt: ts,
			Caption:    titles[path],
			Published:  done,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return before(entries[i].Path, entries[i].EnqueuedAt, entries[j].Path, entries[j].EnqueuedAt)
	})
	return entries, nil
}

// Remove deletes path from the queue, its caption and its publish marker in
// one transaction. Removing an absent path is not an error.
func (q *MediaQueue) Remove(ctx context.Context, path string) error {
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, MediaKey, path)
		pipe.HDel(ctx, TitlesKey, path)
		pipe.HDel(ctx, PublishedKey, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// MarkPublished records that path was posted at ts, so a later cycle only
// has to finish the cleanup.
func (q *MediaQueue) MarkPublished(ctx context.Context, path string, ts int64) error {
	if err := q.rdb.HSet(ctx, PublishedKey, path, ts).Err(); err != nil {
		return fmt.Errorf("mark published %s: %w", path, err)
	}
	return nil
}

// IsPublished reports whether path carries a publish marker.
func (q *MediaQueue) IsPublished(ctx context.Context, path string) (bool, error) {
	ok, err := q.rdb.HExists(ctx, PublishedKey, path).Result()
	if err != nil {
		return false, fmt.Errorf("check published %s: %w", path, err)
	}
	return ok, nil
}

// Len returns the number of queued records.
func (q *MediaQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.HLen(ctx, MediaKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Oldest picks the entry with the smallest timestamp. Equal timestamps are
// ordered by path so the result does not depend on map iteration order.
func Oldest(pending map[string]int64) (path string, ts int64, ok bool) {
	for p, t := range pending {
		if !ok || before(p, t, path, ts) {
			path, ts, ok = p, t, true
		}
	}
	return path, ts, ok
}

func before(pathA string, tsA int64, pathB string, tsB int64) bool {
	if tsA != tsB {
		return tsA < tsB
	}
	return pathA < pathB
}

func parseTimestamps(raw map[string]string) map[string]int64 {
	out := make(map[string]int64, len(raw))
	for path, v := range raw {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[path] = ts
	}
	return out
}
