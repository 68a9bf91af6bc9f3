// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Resizer scales JPEG images down so their longest side is at most
// MaxDimension. Smaller images are left untouched.
type Resizer struct {
	MaxDimension int
	Quality      int
}

// NewResizer returns a resizer; quality falls back to jpeg.DefaultQuality
// when out of range.
func NewResizer(maxDimension, quality int) *Resizer {
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Resizer{MaxDimension: maxDimension, Quality: quality}
}

// ResizeFile rewrites path in place when it is larger than the limit. The
// new image is written next to the original and renamed over it, so a
// reader never sees a half-written file.
func (r *Resizer) ResizeFile(path string) (resized bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	src, err := jpeg.Decode(f)
	f.Close()
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	dst := r.Resize(src)
	if dst == src {
		return false, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".resize-*.tmp")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, dst, &jpeg.Options{Quality: r.Quality}); err != nil {
		tmp.Close()
		return false, fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}
	return true, nil
}

// Resize returns src scaled to fit MaxDimension, or src itself when it
// already fits.
func (r *Resizer) Resize(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if r.MaxDimension <= 0 || (w <= r.MaxDimension && h <= r.MaxDimension) {
		return src
	}

	nw, nh := r.MaxDimension, r.MaxDimension
	if w >= h {
		nh = max(1, h*r.MaxDimension/w)
	} else {
		nw = max(1, w*r.MaxDimension/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
