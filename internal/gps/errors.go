// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "errors"

var (
	// ErrNoFix means the receiver answered but has no valid position yet.
	ErrNoFix = errors.New("gps: no fix")

	// ErrInvalidSentence covers malformed, truncated or checksum-failing input.
	ErrInvalidSentence = errors.New("gps: invalid sentence")

	// ErrModem is returned when the modem answers a command with ERROR.
	ErrModem = errors.New("gps: modem error")

	// ErrHardwareDisabled is returned by hardware helpers outside production.
	ErrHardwareDisabled = errors.New("gps: hardware access disabled outside production")
)
