// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package models

// NATS subjects for bot webhook events. Inbound webhook deliveries are
// published here and consumed by the reconciliation handler so that webhook
// responses stay fast and delivery retries stay idempotent.
const (
	BotWebhookStatusChangeSubject          = "recap.webhook.bot.status_change"
	BotWebhookTranscriptDataSubject        = "recap.webhook.bot.transcript.data"
	BotWebhookTranscriptPartialDataSubject = "recap.webhook.bot.transcript.partial_data"
)

// BotStatusUpdatedSubject carries persisted bot status transitions for
// downstream consumers (usage accounting, UI push).
const BotStatusUpdatedSubject = "recap.bot.status.updated"

// BotWebhookQueue is the NATS queue group name for webhook event consumers.
const BotWebhookQueue = "bot-api-queue"

// BotWebhookEventMessage is the NATS payload for an inbound provider
// webhook event.
type BotWebhookEventMessage struct {
	EventType  string         `json:"event_type"`
	SessionUID string         `json:"session_uid"`
	BotID      string         `json:"bot_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// BotStatusUpdatedMessage is published whenever a session's bot status is
// persisted with a new value.
type BotStatusUpdatedMessage struct {
	SessionUID      string    `json:"session_uid"`
	BotID           string    `json:"bot_id"`
	Status          BotStatus `json:"status"`
	Error           string    `json:"error,omitempty"`
	BillableMinutes int       `json:"billable_minutes,omitempty"`
}
