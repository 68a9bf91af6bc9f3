// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestResizeBounds(t *testing.T) {
	r := NewResizer(1000, 0)
	if r.Quality != jpeg.DefaultQuality {
		t.Errorf("Quality = %d, want default", r.Quality)
	}

	tests := []struct {
		name      string
		w, h      int
		wantW     int
		wantH     int
		unchanged bool
	}{
		{"landscape", 4000, 3000, 1000, 750, false},
		{"portrait", 3000, 4000, 750, 1000, false},
		{"square", 2000, 2000, 1000, 1000, false},
		{"already small", 800, 600, 800, 600, true},
		{"exact fit", 1000, 10, 1000, 10, true},
		{"thin strip", 5000, 2, 1000, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewGray(image.Rect(0, 0, tt.w, tt.h))
			dst := r.Resize(src)
			if b := dst.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("Resize() = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if (dst == image.Image(src)) != tt.unchanged {
				t.Errorf("unchanged = %v, want %v", dst == image.Image(src), tt.unchanged)
			}
		})
	}
}

func TestResizeFileLeavesSmallImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.jpg")
	writeJPEG(t, path, 50, 40)
	before, _ := os.Stat(path)

	resized, err := NewResizer(100, 90).ResizeFile(path)
	if err != nil || resized {
		t.Fatalf("ResizeFile = %v, %v; want false, nil", resized, err)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Error("small image was rewritten")
	}
}

func TestResizeFileNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.jpg")
	writeJPEG(t, path, 300, 300)

	if resized, err := NewResizer(100, 90).ResizeFile(path); err != nil || !resized {
		t.Fatalf("ResizeFile = %v, %v", resized, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory holds %d files, want 1", len(entries))
	}
}

func TestResizeFileMissing(t *testing.T) {
	if _, err := NewResizer(100, 90).ResizeFile(filepath.Join(t.TempDir(), "none.jpg")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
