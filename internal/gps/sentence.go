// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"fmt"
	"regexp"
	"strings"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/racecam/internal/geo"
)

// rmcPattern matches one complete RMC sentence (any talker): at least nine
// comma-delimited fields after the tag, terminated by a checksum so a
// fragment cut off by the read boundary never matches.
var rmcPattern = regexp.MustCompile(`\$[A-Z]{2}RMC(?:,[^,$*\r\n]*){9,}\*[0-9A-Fa-f]{2}`)

// LastRMC returns the last complete RMC sentence in a raw serial chunk.
// A chunk may hold any mix of sentence types and partial sentences.
func LastRMC(chunk string) (string, bool) {
	matches := rmcPattern.FindAllString(chunk, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1], true
}

// DecodeRMC turns one RMC sentence into a Fix. Void sentences (validity
// flag "V") return ErrNoFix; anything go-nmea rejects returns
// ErrInvalidSentence.
//
// Time and date are sliced by fixed offsets (hhmmss -> HH:MM:SS,
// ddmmyy -> DD/MM/YY) and coordinates go through geo.DecodeCoordinate so the
// stream and polled readers decode identically.
func DecodeRMC(sentence string) (Fix, error) {
	sentence = strings.TrimSpace(sentence)

	// Check validity before full parsing: void sentences carry empty
	// coordinate fields that are not worth a parse error.
	raw := strings.Split(sentence, ",")
	if len(raw) < 10 {
		return Fix{}, fmt.Errorf("%w: %d fields", ErrInvalidSentence, len(raw))
	}
	if raw[2] != nmea.ValidRMC {
		return Fix{}, ErrNoFix
	}

	s, err := nmea.Parse(sentence)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: %v", ErrInvalidSentence, err)
	}
	rmc, ok := s.(nmea.RMC)
	if !ok {
		return Fix{}, fmt.Errorf("%w: not RMC (%s)", ErrInvalidSentence, s.DataType())
	}

	// Fields excludes the "$GPRMC" tag: time, validity, lat, N/S, lon, E/W,
	// speed, course, date, ...
	f := rmc.Fields
	return decodeFields(f[0], f[2], f[3], f[4], f[5], f[8])
}

// decodeFields is shared by the RMC and +QGPSLOC decoders.
func decodeFields(hhmmss, lat, latHem, lon, lonHem, ddmmyy string) (Fix, error) {
	if len(hhmmss) < 6 || len(ddmmyy) < 6 {
		return Fix{}, fmt.Errorf("%w: time %q date %q", ErrInvalidSentence, hhmmss, ddmmyy)
	}

	latitude, err := geo.DecodeCoordinate(lat, latHem)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: latitude: %v", ErrInvalidSentence, err)
	}
	longitude, err := geo.DecodeCoordinate(lon, lonHem)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: longitude: %v", ErrInvalidSentence, err)
	}
	if !(geo.Point{Lon: longitude, Lat: latitude}).Valid() {
		return Fix{}, fmt.Errorf("%w: position %f,%f out of range", ErrInvalidSentence, latitude, longitude)
	}

	return Fix{
		Time:      hhmmss[0:2] + ":" + hhmmss[2:4] + ":" + hhmmss[4:6],
		Date:      ddmmyy[0:2] + "/" + ddmmyy[2:4] + "/" + ddmmyy[4:6],
		Latitude:  latitude,
		Longitude: longitude,
	}, nil
}
