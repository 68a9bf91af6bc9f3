// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package publish

import "errors"

var (
	// ErrRejected is returned when the server answers with a non-success status.
	ErrRejected = errors.New("publish: request rejected")

	// ErrProcessingTimeout is returned when uploaded media never finishes processing.
	ErrProcessingTimeout = errors.New("publish: media processing did not finish")
)
