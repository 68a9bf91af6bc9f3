// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package drain

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

func TestDNSProberLocalhost(t *testing.T) {
	p := &DNSProber{Host: "localhost", Timeout: time.Second, Resolver: &net.Resolver{PreferGo: true}}
	if err := p.Probe(context.Background()); err != nil {
		t.Fatalf("Probe: %v", err)
	}
}

func TestDNSProberOffline(t *testing.T) {
	offline := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, errors.New("network unreachable")
		},
	}
	p := &DNSProber{Host: "racecam.invalid", Timeout: time.Second, Resolver: offline}

	err := p.Probe(context.Background())
	if err == nil {
		t.Fatal("expected an error without a network")
	}
	if !strings.Contains(err.Error(), "resolve racecam.invalid") {
		t.Errorf("err = %v", err)
	}
}
