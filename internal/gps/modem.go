// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// ActivateCommand switches the modem's GNSS engine on.
	ActivateCommand = "AT+QGPS=1"

	// LocationCommand asks for the current fix with hemispheres in
	// separate fields.
	LocationCommand = "AT+QGPSLOC=1"

	// "Session is ongoing": the GNSS engine was already running.
	cmeSessionOngoing = "+CME ERROR: 504"
)

var cmeError = regexp.MustCompile(`\+CME ERROR: ?\d+\r?\n`)

// modemPort is the part of serial.Port the modem needs.
type modemPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Modem talks AT commands to the cellular modem's control port.
type Modem struct {
	mu          sync.Mutex
	port        modemPort
	readTimeout time.Duration
}

// OpenModem opens the modem AT port.
func OpenModem(portName string, baudRate int, readTimeout time.Duration) (*Modem, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open modem port %s: %w", portName, err)
	}
	return newModem(port, readTimeout)
}

func newModem(port modemPort, readTimeout time.Duration) (*Modem, error) {
	// short per-Read timeout so the response loop can watch its deadline
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set modem read timeout: %w", err)
	}
	return &Modem{port: port, readTimeout: readTimeout}, nil
}

// Close releases the serial port.
func (m *Modem) Close() error {
	return m.port.Close()
}

// Command sends one AT command and returns the raw response up to and
// including the final OK or ERROR line. An ERROR answer is returned along
// with ErrModem.
func (m *Modem) Command(ctx context.Context, cmd string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := io.WriteString(m.port, cmd+"\r"); err != nil {
		return "", fmt.Errorf("write %s: %w", cmd, err)
	}

	deadline := time.Now().Add(m.readTimeout)
	var resp bytes.Buffer
	buf := make([]byte, 256)

	for {
		if err := ctx.Err(); err != nil {
			return resp.String(), err
		}
		if time.Now().After(deadline) {
			return resp.String(), fmt.Errorf("%s: no final result within %v", cmd, m.readTimeout)
		}

		n, err := m.port.Read(buf)
		if n > 0 {
			resp.Write(buf[:n])
		}
		if err != nil {
			return resp.String(), fmt.Errorf("read %s response: %w", cmd, err)
		}

		switch text := resp.String(); {
		case finalLine(text, "OK"):
			return text, nil
		case finalLine(text, "ERROR") || cmeError.MatchString(text):
			return text, fmt.Errorf("%w: %s", ErrModem, strings.TrimSpace(text))
		}
	}
}

func finalLine(text, result string) bool {
	return strings.Contains(text, "\r\n"+result+"\r\n") || strings.HasPrefix(text, result+"\r\n")
}

// Activate enables GNSS acquisition. An engine that is already running is
// not an error.
func (m *Modem) Activate(ctx context.Context) error {
	resp, err := m.Command(ctx, ActivateCommand)
	if err != nil && strings.Contains(resp, cmeSessionOngoing) {
		return nil
	}
	return err
}

// QueryLocation polls the modem for a fix. ok is false, with a nil error,
// when the receiver has no fix yet.
func (m *Modem) QueryLocation(ctx context.Context) (Fix, bool, error) {
	resp, err := m.Command(ctx, LocationCommand)
	if err != nil && !strings.Contains(resp, "+CME ERROR:") {
		return Fix{}, false, err
	}
	return ParseLocationResponse(resp)
}
