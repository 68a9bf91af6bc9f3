// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package drain

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Prober checks whether the network is usable before a publish attempt.
type Prober interface {
	Probe(ctx context.Context) error
}

// DNSProber resolves a well-known host name. On a cellular link a working
// resolver is a good enough sign that an upload can go out.
type DNSProber struct {
	Host     string
	Timeout  time.Duration
	Resolver *net.Resolver
}

// NewDNSProber probes host with the default resolver.
func NewDNSProber(host string, timeout time.Duration) *DNSProber {
	return &DNSProber{Host: host, Timeout: timeout, Resolver: net.DefaultResolver}
}

// Probe returns nil when Host resolves to at least one address.
func (p *DNSProber) Probe(ctx context.Context) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	addrs, err := p.Resolver.LookupHost(ctx, p.Host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", p.Host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("resolve %s: no addresses", p.Host)
	}
	return nil
}
