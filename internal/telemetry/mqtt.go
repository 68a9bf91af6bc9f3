// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry mirrors fixes and queue activity to an MQTT broker so
// a support crew can follow the runner.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/racecam/internal/gps"
)

const (
	connectWait = 10 * time.Second
	publishWait = 5 * time.Second
)

// Topics names the MQTT topics used.
type Topics struct {
	GPS   string
	Queue string
}

// QueueEvent reports a change in the publish queue.
type QueueEvent struct {
	Type    string `json:"type"` // queued, published
	Path    string `json:"path"`
	Caption string `json:"caption,omitempty"`
	At      int64  `json:"ts"`
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Connect dials the broker. It fails when the first connection does not
// succeed within connectWait; later drops are handled by auto-reconnect.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectWait)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectWait) {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect %s: timed out after %s", broker, connectWait)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return client, nil
}

// Publisher serialises events as JSON and publishes them. Delivery is
// awaited in the background and failures are only logged, so callers on
// the GPS, capture and drain paths never wait on the broker.
type Publisher struct {
	client publisher
	topics Topics
	logger *slog.Logger
	wait   time.Duration

	inflight sync.WaitGroup
}

// NewPublisher wraps a connected client.
func NewPublisher(client mqtt.Client, topics Topics, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, topics: topics, logger: logger, wait: publishWait}
}

// Flush blocks until every outstanding publish has completed or timed out.
func (p *Publisher) Flush() {
	p.inflight.Wait()
}

// PublishFix sends a fix, retained so late subscribers see the last one.
func (p *Publisher) PublishFix(fix gps.Fix) {
	p.publish(p.topics.GPS, true, fix)
}

// PublishQueueEvent sends a queue change.
func (p *Publisher) PublishQueueEvent(ev QueueEvent) {
	p.publish(p.topics.Queue, false, ev)
}

func (p *Publisher) publish(topic string, retained bool, v any) {
	if topic == "" {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("telemetry marshal failed", "topic", topic, "err", err)
		return
	}

	token := p.client.Publish(topic, 0, retained, payload)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		if !token.WaitTimeout(p.wait) {
			p.logger.Warn("telemetry publish timed out", "topic", topic, "wait", p.wait)
			return
		}
		if err := token.Error(); err != nil {
			p.logger.Warn("telemetry publish failed", "topic", topic, "err", err)
		}
	}()
}
