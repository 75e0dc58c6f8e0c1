/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus bridges the in-process event bus to NATS so external
// consumers (plot servers, archival jobs) can follow a run live.
package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/aegir_ocean/internal/events"
	"github.com/friendsincode/aegir_ocean/internal/telemetry"
)

// NATSBus wraps the in-process bus and mirrors every published event to a
// NATS subject. With an empty URL it degrades to the in-process bus alone.
type NATSBus struct {
	conn   *nats.Conn
	local  *events.Bus
	logger zerolog.Logger
	nodeID string
}

// natsMessage is the wire form published to aegir.events.<type>.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"`
}

// NewNATSBus connects to NATS when a URL is configured. Connection loss is
// handled by the client's reconnect loop; events published while offline
// still reach in-process subscribers.
func NewNATSBus(natsURL string, logger zerolog.Logger) (*NATSBus, error) {
	bus := &NATSBus{
		local:  events.NewBus(),
		logger: logger,
		nodeID: uuid.NewString(),
	}

	if natsURL == "" {
		logger.Info().Msg("no NATS URL configured, events stay in-process")
		return bus, nil
	}

	conn, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", natsURL, err)
	}
	bus.conn = conn
	logger.Info().Str("url", natsURL).Msg("connected to NATS")
	return bus, nil
}

// Subscribe registers an in-process subscriber for an event type.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	return nb.local.Subscribe(eventType)
}

// Unsubscribe removes an in-process subscriber.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.local.Unsubscribe(eventType, sub)
}

// Publish delivers the event locally and mirrors it to NATS.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.local.Publish(eventType, payload)
	telemetry.EventsPublishedTotal.WithLabelValues(string(eventType)).Inc()

	if nb.conn == nil {
		return
	}

	msg := natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		NodeID:    nb.nodeID,
		MessageID: uuid.NewString(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		nb.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("event not serializable")
		return
	}

	subject := fmt.Sprintf("aegir.events.%s", eventType)
	if err := nb.conn.Publish(subject, data); err != nil {
		nb.logger.Warn().Err(err).Str("subject", subject).Msg("NATS publish failed")
	}
}

// Close drains the NATS connection.
func (nb *NATSBus) Close() error {
	if nb.conn == nil {
		return nil
	}
	return nb.conn.Drain()
}
