// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display shows the camera status on a 128x64 SSD1306 OLED.
package display

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/racecam/internal/gps"
)

const (
	width      = 128
	height     = 64
	lineHeight = 13
)

// Panel is the drawing surface; *ssd1306.Dev satisfies it.
type Panel interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// Status is one screenful of information.
type Status struct {
	Fix     gps.Fix
	HaveFix bool
	Pending int64
	Drainer string
}

// Device is an opened OLED on the I2C bus.
type Device struct {
	*ssd1306.Dev
	bus i2c.BusCloser
}

// Open initialises periph and the display on the default I2C bus.
func Open() (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	return &Device{Dev: dev, bus: bus}, nil
}

// Close blanks the panel and releases the bus.
func (d *Device) Close() error {
	d.Dev.Halt()
	return d.bus.Close()
}

// Display refreshes a panel with the status returned by a callback.
type Display struct {
	panel    Panel
	interval time.Duration
	status   func(context.Context) Status
	logger   *slog.Logger
}

// New creates a display loop.
func New(panel Panel, interval time.Duration, status func(context.Context) Status, logger *slog.Logger) *Display {
	if interval <= 0 {
		interval = time.Second
	}
	return &Display{panel: panel, interval: interval, status: status, logger: logger}
}

// Run shows a splash screen, then redraws every interval until ctx ends.
// Draw errors are logged; a flaky I2C bus must not stop the camera.
func (d *Display) Run(ctx context.Context) error {
	if err := d.draw(Splash()); err != nil {
		d.logger.Warn("display: splash failed", "err", err)
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.draw(Render(d.status(ctx))); err != nil {
				d.logger.Warn("display: update failed", "err", err)
			}
		}
	}
}

func (d *Display) draw(img image.Image) error {
	return d.panel.Draw(d.panel.Bounds(), img, image.Point{})
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, line int, text string) {
	d.Dot = fixed.P(x, lineHeight*line)
	d.DrawString(text)
}

// Splash is shown while the receiver looks for satellites.
func Splash() image.Image {
	img, d := newCanvas()
	drawLine(d, 30, 2, "racecam")
	drawLine(d, 5, 3, "Looking for")
	drawLine(d, 45, 4, "sats")
	return img
}

// Render draws position, course progress and queue state.
func Render(s Status) image.Image {
	img, d := newCanvas()

	if !s.HaveFix {
		drawLine(d, 0, 1, "GPS")
		drawLine(d, 0, 2, "Waiting...")
	} else {
		drawLine(d, 0, 1, hemisphere(s.Fix.Latitude, "N", "S"))
		drawLine(d, 0, 2, hemisphere(s.Fix.Longitude, "E", "W"))
		drawLine(d, 0, 3, progressLine(s.Fix))
	}

	queue := fmt.Sprintf("Q:%d", s.Pending)
	if s.Drainer != "" {
		queue += " " + s.Drainer
	}
	drawLine(d, 0, 4, queue)
	return img
}

func hemisphere(v float64, pos, neg string) string {
	dir := pos
	if v < 0 {
		dir = neg
		v = -v
	}
	return fmt.Sprintf("%.4f%s", v, dir)
}

func progressLine(f gps.Fix) string {
	if f.DistanceKm < 0 {
		return "Off course"
	}
	line := fmt.Sprintf("%.1fkm", f.DistanceKm)
	if f.Waypoint != "" {
		line += " " + f.Waypoint
	}
	return line
}
