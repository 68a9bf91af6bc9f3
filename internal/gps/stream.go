// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"
)

// StreamReader follows the NMEA stream of a GPS receiver on a serial port
// and hands every valid fix to a callback.
type StreamReader struct {
	opts   serial.OpenOptions
	logger *slog.Logger
	handle func(context.Context, Fix)
}

// NewStreamReader prepares a reader for the given port. Nothing is opened
// until Run is called.
func NewStreamReader(portName string, baudRate int, logger *slog.Logger, handle func(context.Context, Fix)) *StreamReader {
	return &StreamReader{
		opts: serial.OpenOptions{
			PortName:              portName,
			BaudRate:              uint(baudRate),
			DataBits:              8,
			StopBits:              1,
			MinimumReadSize:       1,
			ParityMode:            serial.PARITY_NONE,
			InterCharacterTimeout: 0,
		},
		logger: logger,
		handle: handle,
	}
}

// Run opens the serial port and scans it until ctx is cancelled or the port
// fails. The port is closed on return.
func (r *StreamReader) Run(ctx context.Context) error {
	port, err := serial.Open(r.opts)
	if err != nil {
		return fmt.Errorf("open GPS serial port %s: %w", r.opts.PortName, err)
	}
	r.logger.Info("GPS serial port opened", "port", r.opts.PortName, "baud", r.opts.BaudRate)

	// a blocked Read only returns once the port is closed
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer func() {
		if stop() {
			port.Close()
		}
	}()

	err = Scan(ctx, port, r.logger, r.handle)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Scan reads newline-delimited chunks from rd, decodes the last RMC sentence
// of each chunk and calls handle for every valid fix. Void and malformed
// sentences are skipped. It returns nil at EOF.
func Scan(ctx context.Context, rd io.Reader, logger *slog.Logger, handle func(context.Context, Fix)) error {
	reader := bufio.NewReader(rd)

	for {
		chunk, err := reader.ReadString('\n')
		if len(chunk) > 0 {
			if fix, ok := decodeChunk(chunk, logger); ok {
				handle(ctx, fix)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("GPS read: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func decodeChunk(chunk string, logger *slog.Logger) (Fix, bool) {
	sentence, ok := LastRMC(chunk)
	if !ok {
		return Fix{}, false
	}

	fix, err := DecodeRMC(sentence)
	switch {
	case errors.Is(err, ErrNoFix):
		return Fix{}, false
	case err != nil:
		// noisy receivers produce the odd corrupted line
		logger.Debug("skipping RMC sentence", "sentence", strings.TrimSpace(sentence), "err", err)
		return Fix{}, false
	}
	return fix, true
}
