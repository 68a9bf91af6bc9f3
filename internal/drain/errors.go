// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package drain

import "errors"

var (
	// ErrOffline means the connectivity probe failed; nothing was attempted.
	ErrOffline = errors.New("drain: offline")

	// ErrDeleteMedia means the post went out but the local file could not be
	// removed. The entry stays queued, marked published.
	ErrDeleteMedia = errors.New("drain: delete media")
)
