// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherSettled(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	os.WriteFile(a, []byte("aaaa"), 0o644)
	os.WriteFile(b, []byte("bb"), 0o644)

	clock := time.Unix(1000, 0)
	w := NewWatcher(dir, time.Second, discardLogger())
	w.now = func() time.Time { return clock }

	pending := map[string]*pendingFile{}
	w.touch(pending, b)
	clock = clock.Add(100 * time.Millisecond)
	w.touch(pending, a)
	w.touch(pending, filepath.Join(dir, "missing.jpg"))

	if len(pending) != 2 {
		t.Fatalf("pending = %d files, want 2", len(pending))
	}
	if evs := w.settled(pending); len(evs) != 0 {
		t.Fatalf("settled too early: %v", evs)
	}

	// a keeps growing, b is done
	os.WriteFile(a, []byte("aaaaaaaa"), 0o644)
	clock = clock.Add(1500 * time.Millisecond)
	evs := w.settled(pending)
	if len(evs) != 1 || evs[0].Path != b || evs[0].Size != 2 {
		t.Fatalf("settled = %+v, want only b", evs)
	}
	if !evs[0].Created.Equal(time.Unix(1000, 0)) {
		t.Errorf("Created = %v, want first sighting", evs[0].Created)
	}

	clock = clock.Add(time.Second)
	evs = w.settled(pending)
	if len(evs) != 1 || evs[0].Path != a || evs[0].Size != 8 {
		t.Fatalf("settled = %+v, want a", evs)
	}
	if len(pending) != 0 {
		t.Errorf("pending not drained: %v", pending)
	}
}

func TestWatcherSettledDropsDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	os.WriteFile(a, []byte("x"), 0o644)

	w := NewWatcher(dir, time.Millisecond, discardLogger())
	pending := map[string]*pendingFile{}
	w.touch(pending, a)
	os.Remove(a)

	if evs := w.settled(pending); len(evs) != 0 || len(pending) != 0 {
		t.Errorf("settled = %v, pending = %v", evs, pending)
	}
}

func TestWatcherRun(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "old.jpg"), []byte("old"), 0o644)

	w := NewWatcher(dir, 50*time.Millisecond, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, ev Event) { events <- ev })
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(dir, "new.jpg")
	if err := os.WriteFile(path, []byte("fresh image"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Path != path || ev.Size != int64(len("fresh image")) {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event for the new file")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}
	select {
	case ev := <-events:
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"), time.Second, discardLogger())
	if err := w.Run(context.Background(), func(context.Context, Event) {}); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
