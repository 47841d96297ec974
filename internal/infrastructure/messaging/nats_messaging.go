// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

// Package messaging publishes bot lifecycle events to NATS.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
	"github.com/recapio/meeting-bot-service/internal/logging"
)

// INatsConn is the NATS connection interface needed by the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds bot event messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

var _ domain.BotEventSender = (*MessageBuilder)(nil)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	if m.NatsConn == nil || !m.NatsConn.IsConnected() {
		return domain.NewUnavailableError("NATS connection is not available")
	}
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// SendBotWebhookEvent publishes an inbound provider webhook event to NATS for
// async processing by the reconciliation handler.
func (m *MessageBuilder) SendBotWebhookEvent(ctx context.Context, subject string, event models.BotWebhookEventMessage) error {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling bot webhook event into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "publishing bot webhook event to NATS",
		"subject", subject,
		"event_type", event.EventType,
		"session_uid", event.SessionUID,
	)

	return m.sendMessage(ctx, subject, messageBytes)
}

// SendBotStatusUpdated notifies downstream consumers that a session's bot
// status was persisted with a new value.
func (m *MessageBuilder) SendBotStatusUpdated(ctx context.Context, msg models.BotStatusUpdatedMessage) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling bot status message into JSON", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, models.BotStatusUpdatedSubject, messageBytes)
}
