// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "context"

// Source answers "where are we now" for the capture pipeline.
type Source interface {
	Current(ctx context.Context) (Fix, bool, error)
}

type locationQuerier interface {
	QueryLocation(ctx context.Context) (Fix, bool, error)
}

// PollingSource queries the modem on demand and runs the answer through the
// tracker. With a nil modem (hardware disabled) it returns an empty result
// immediately.
type PollingSource struct {
	modem   locationQuerier
	tracker *Tracker
}

// NewPollingSource builds a polled position source. Pass a nil modem outside
// production.
func NewPollingSource(modem *Modem, tracker *Tracker) *PollingSource {
	s := &PollingSource{tracker: tracker}
	if modem != nil {
		s.modem = modem
	}
	return s
}

// Current polls the modem once.
func (s *PollingSource) Current(ctx context.Context) (Fix, bool, error) {
	if s.modem == nil {
		return Fix{}, false, nil
	}
	raw, ok, err := s.modem.QueryLocation(ctx)
	if err != nil || !ok {
		return Fix{}, false, err
	}
	return s.tracker.Update(ctx, raw), true, nil
}
