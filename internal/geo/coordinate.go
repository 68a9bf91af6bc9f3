// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecodeCoordinate converts an NMEA degree-minute value such as "4807.038"
// (latitude, DDMM.mmmm) or "01131.000" (longitude, DDDMM.mmmm) into signed
// decimal degrees. The last two digits before the decimal point are minutes,
// everything before them is degrees, so both widths share one decoder.
// S and W hemispheres yield negative values.
func DecodeCoordinate(value, hemisphere string) (float64, error) {
	var sign float64
	switch strings.ToUpper(strings.TrimSpace(hemisphere)) {
	case "N", "E":
		sign = 1
	case "S", "W":
		sign = -1
	default:
		return math.NaN(), fmt.Errorf("%w: %q", ErrUnknownHemisphere, hemisphere)
	}

	value = strings.TrimSpace(value)
	head, tail, _ := strings.Cut(value, ".")
	if len(head) < 3 {
		return math.NaN(), fmt.Errorf("%w: %q", ErrMalformedCoordinate, value)
	}

	degPart := head[:len(head)-2]
	minPart := head[len(head)-2:]
	if tail != "" {
		minPart += "." + tail
	}

	deg, err := strconv.ParseUint(degPart, 10, 16)
	if err != nil {
		return math.NaN(), fmt.Errorf("%w: degrees %q", ErrMalformedCoordinate, degPart)
	}
	if strings.Trim(minPart, "0123456789.") != "" {
		return math.NaN(), fmt.Errorf("%w: minutes %q", ErrMalformedCoordinate, minPart)
	}
	minutes, err := strconv.ParseFloat(minPart, 64)
	if err != nil || minutes >= 60 {
		return math.NaN(), fmt.Errorf("%w: minutes %q", ErrMalformedCoordinate, minPart)
	}

	return sign * (float64(deg) + minutes/60), nil
}

// EncodeCoordinate is the inverse of DecodeCoordinate. Latitudes are written
// with two degree digits, longitudes with three, minutes with four decimals
// as most receivers emit them.
func EncodeCoordinate(decimal float64, isLatitude bool) (value, hemisphere string) {
	switch {
	case isLatitude && decimal < 0:
		hemisphere = "S"
	case isLatitude:
		hemisphere = "N"
	case decimal < 0:
		hemisphere = "W"
	default:
		hemisphere = "E"
	}

	abs := math.Abs(decimal)
	deg := math.Floor(abs)
	minutes := (abs - deg) * 60

	// rounding 59.99999 up must carry into the degrees
	if math.Round(minutes*10000)/10000 >= 60 {
		deg++
		minutes = 0
	}

	if isLatitude {
		return fmt.Sprintf("%02d%07.4f", int(deg), minutes), hemisphere
	}
	return fmt.Sprintf("%03d%07.4f", int(deg), minutes), hemisphere
}
