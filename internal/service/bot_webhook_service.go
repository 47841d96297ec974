// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
	"github.com/recapio/meeting-bot-service/internal/logging"
)

// BotWebhookService validates inbound provider webhooks and republishes them
// to NATS for async reconciliation. Keeping the HTTP handler thin means the
// provider gets a fast 200 and delivery retries stay harmless.
type BotWebhookService struct {
	messageSender    domain.BotEventSender
	webhookValidator domain.WebhookValidator
}

// WebhookRequest represents an inbound provider webhook delivery.
type WebhookRequest struct {
	SessionUID string
	Signature  string
	Timestamp  string
	RawBody    []byte
}

// webhookEnvelope is the provider's webhook body shape.
type webhookEnvelope struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// eventSubjects maps provider event types onto NATS subjects. Events not in
// this table are acknowledged but dropped.
var eventSubjects = map[string]string{
	"bot.status_change":       models.BotWebhookStatusChangeSubject,
	"transcript.data":         models.BotWebhookTranscriptDataSubject,
	"transcript.partial_data": models.BotWebhookTranscriptPartialDataSubject,
}

// NewBotWebhookService creates a new BotWebhookService.
func NewBotWebhookService(
	messageSender domain.BotEventSender,
	webhookValidator domain.WebhookValidator,
) *BotWebhookService {
	return &BotWebhookService{
		messageSender:    messageSender,
		webhookValidator: webhookValidator,
	}
}

// ServiceReady checks if the service is ready to process webhook events.
func (s *BotWebhookService) ServiceReady() bool {
	return s.messageSender != nil && s.webhookValidator != nil
}

// ProcessWebhookEvent validates the delivery and publishes it for async
// processing. Deliveries may be duplicated or out of order; the reconciler
// downstream is idempotent so both are safe.
func (s *BotWebhookService) ProcessWebhookEvent(ctx context.Context, req WebhookRequest) error {
	if req.SessionUID == "" {
		return domain.NewValidationError("missing session UID in webhook path")
	}
	if req.Signature == "" || req.Timestamp == "" {
		return domain.NewValidationError("missing signature headers")
	}

	if err := s.webhookValidator.ValidateSignature(req.RawBody, req.Signature, req.Timestamp); err != nil {
		return domain.NewValidationError("invalid webhook signature", err)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(req.RawBody, &envelope); err != nil {
		return domain.NewValidationError("invalid webhook body", err)
	}
	if envelope.Event == "" {
		return domain.NewValidationError("missing event field")
	}

	subject, ok := eventSubjects[envelope.Event]
	if !ok {
		slog.DebugContext(ctx, "ignoring unsupported webhook event", "event_type", envelope.Event)
		return nil
	}

	botID, _ := envelope.Data["bot_id"].(string)

	err := s.messageSender.SendBotWebhookEvent(ctx, subject, models.BotWebhookEventMessage{
		EventType:  envelope.Event,
		SessionUID: req.SessionUID,
		BotID:      botID,
		Payload:    envelope.Data,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish webhook event", logging.ErrKey, err,
			"event_type", envelope.Event, "session_uid", req.SessionUID)
		return domain.NewInternalError("failed to queue webhook event", err)
	}

	return nil
}
