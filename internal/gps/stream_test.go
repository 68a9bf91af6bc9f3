// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device unplugged") }

func TestScan(t *testing.T) {
	stream := strings.Join([]string{
		withChecksum("$GPGGA,120000,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"),
		withChecksum("$GPRMC,120000,V,,,,,,,230394,,,N"),
		rmcAt(48.1, 11.5, "120001", "230394"),
		"$GPRMC,120002,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*00",
		rmcAt(48.2, 11.6, "120003", "230394"),
		"$GPRMC,1200",
	}, "\r\n")

	var got []Fix
	err := Scan(context.Background(), strings.NewReader(stream), discardLogger(), func(_ context.Context, f Fix) {
		got = append(got, f)
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d fixes, want 2: %+v", len(got), got)
	}
	if got[0].Time != "12:00:01" || got[1].Time != "12:00:03" {
		t.Errorf("times = %s, %s", got[0].Time, got[1].Time)
	}
}

func TestScanPropagatesReadErrors(t *testing.T) {
	err := Scan(context.Background(), failingReader{}, discardLogger(), func(context.Context, Fix) {
		t.Error("handler must not be called")
	})
	if err == nil {
		t.Fatal("expected read error")
	}
}

func TestScanStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stream := rmcAt(48.1, 11.5, "120001", "230394") + "\r\n" + rmcAt(48.2, 11.6, "120002", "230394") + "\r\n"

	calls := 0
	err := Scan(ctx, strings.NewReader(stream), discardLogger(), func(context.Context, Fix) {
		calls++
		cancel()
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times after cancel, want 1", calls)
	}
}
