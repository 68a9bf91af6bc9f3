// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/relabs-tech/racecam/internal/gps"
)

// GPSKey is the hash holding the last known fix.
const GPSKey = "gps"

// StateStore persists the last GPS fix so it survives restarts and can be
// read by other processes.
type StateStore struct {
	rdb redis.Cmdable
}

// NewStateStore wraps a Redis client.
func NewStateStore(rdb redis.Cmdable) *StateStore {
	return &StateStore{rdb: rdb}
}

// SaveFix overwrites the stored fix.
func (s *StateStore) SaveFix(ctx context.Context, fix gps.Fix) error {
	err := s.rdb.HSet(ctx, GPSKey,
		"lat", strconv.FormatFloat(fix.Latitude, 'f', -1, 64),
		"lon", strconv.FormatFloat(fix.Longitude, 'f', -1, 64),
		"time", fix.Time,
		"date", fix.Date,
		"dist", strconv.FormatFloat(fix.DistanceKm, 'f', -1, 64),
		"wp", fix.Waypoint,
		"title", fix.Caption,
	).Err()
	if err != nil {
		return fmt.Errorf("save fix: %w", err)
	}
	return nil
}

// LastFix reads the stored fix. ok is false when nothing has been saved.
func (s *StateStore) LastFix(ctx context.Context) (fix gps.Fix, ok bool, err error) {
	h, err := s.rdb.HGetAll(ctx, GPSKey).Result()
	if err != nil {
		return gps.Fix{}, false, fmt.Errorf("load fix: %w", err)
	}
	if len(h) == 0 {
		return gps.Fix{}, false, nil
	}

	fix = gps.Fix{
		Time:     h["time"],
		Date:     h["date"],
		Waypoint: h["wp"],
		Caption:  h["title"],
	}
	for key, dst := range map[string]*float64{
		"lat":  &fix.Latitude,
		"lon":  &fix.Longitude,
		"dist": &fix.DistanceKm,
	} {
		if *dst, err = strconv.ParseFloat(h[key], 64); err != nil {
			return gps.Fix{}, false, fmt.Errorf("load fix: field %s %q: %w", key, h[key], err)
		}
	}
	return fix, true, nil
}

// Current serves the stored fix as a position source.
func (s *StateStore) Current(ctx context.Context) (gps.Fix, bool, error) {
	return s.LastFix(ctx)
}
