// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"math"
	"testing"
)

func TestParseLocationResponse(t *testing.T) {
	resp := "AT+QGPSLOC=1\r\r\n+QGPSLOC: 061951.000,3150.722314,N,11711.929378,E,0.7,62.2,2,0.00,0.0,0.0,110513,09\r\n\r\nOK\r\n"

	fix, ok, err := ParseLocationResponse(resp)
	if err != nil || !ok {
		t.Fatalf("ParseLocationResponse: ok=%v err=%v", ok, err)
	}
	if fix.Time != "06:19:51" || fix.Date != "11/05/13" {
		t.Errorf("time/date = %s %s, want 06:19:51 11/05/13", fix.Time, fix.Date)
	}
	if math.Abs(fix.Latitude-(31+50.722314/60)) > 1e-9 {
		t.Errorf("Latitude = %f", fix.Latitude)
	}
	if math.Abs(fix.Longitude-(117+11.929378/60)) > 1e-9 {
		t.Errorf("Longitude = %f", fix.Longitude)
	}
}

func TestParseLocationResponseWestSouth(t *testing.T) {
	fix, ok, err := ParseLocationResponse("+QGPSLOC: 120000,3356.0000,S,07039.0000,W,1.1,520.0,3,0.00,0.0,0.0,010124,07")
	if err != nil || !ok {
		t.Fatalf("ParseLocationResponse: ok=%v err=%v", ok, err)
	}
	if fix.Latitude >= 0 || fix.Longitude >= 0 {
		t.Errorf("position = %f,%f, want both negative", fix.Latitude, fix.Longitude)
	}
}

func TestParseLocationResponseNoFix(t *testing.T) {
	for _, resp := range []string{
		"",
		"AT+QGPSLOC=1\r\r\n+CME ERROR: 516\r\n",
		"OK\r\n",
		"+QGPSLOC: 061951.000,3150.722314N,11711.929378E,0.7,62.2,2,0.00,0.0,0.0,110513,09",
	} {
		fix, ok, err := ParseLocationResponse(resp)
		if err != nil || ok || fix != (Fix{}) {
			t.Errorf("ParseLocationResponse(%q) = %+v, %v, %v; want empty, false, nil", resp, fix, ok, err)
		}
	}
}

func TestParseLocationResponseBadMinutes(t *testing.T) {
	_, ok, err := ParseLocationResponse("+QGPSLOC: 061951.000,3175.000000,N,11711.929378,E,0.7,62.2,2,0.00,0.0,0.0,110513,09")
	if ok || !errors.Is(err, ErrInvalidSentence) {
		t.Errorf("ok=%v err=%v, want ErrInvalidSentence", ok, err)
	}
}
