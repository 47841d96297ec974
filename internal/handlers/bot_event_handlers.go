// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

// Package handlers wires the HTTP and NATS surfaces to the services.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
	"github.com/recapio/meeting-bot-service/internal/logging"
	"github.com/recapio/meeting-bot-service/internal/service"
)

// BotEventHandler consumes queued provider webhook events from NATS and
// drives reconciliation. Delivery is at-least-once and possibly out of
// order; reconciliation is idempotent so both are safe to replay.
type BotEventHandler struct {
	syncService *service.StatusSyncService
}

// NewBotEventHandler creates a new BotEventHandler.
func NewBotEventHandler(syncService *service.StatusSyncService) *BotEventHandler {
	return &BotEventHandler{
		syncService: syncService,
	}
}

// HandlerReady reports whether the handler can process messages.
func (h *BotEventHandler) HandlerReady() bool {
	return h.syncService != nil && h.syncService.ServiceReady()
}

// HandleMessage implements the domain.MessageHandler interface.
func (h *BotEventHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, event models.BotWebhookEventMessage){
		models.BotWebhookStatusChangeSubject:          h.handleStatusChange,
		models.BotWebhookTranscriptDataSubject:        h.handleTranscriptData,
		models.BotWebhookTranscriptPartialDataSubject: h.handleTranscriptData,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		return
	}

	var event models.BotWebhookEventMessage
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling bot webhook event", logging.ErrKey, err)
		return
	}
	if event.SessionUID == "" {
		slog.WarnContext(ctx, "bot webhook event missing session UID", "event_type", event.EventType)
		return
	}

	handler(ctx, event)
}

// handleStatusChange reconciles the session against provider truth. The
// webhook payload itself is only a hint; the reconciler re-fetches the bot
// so stale or duplicate deliveries cannot regress state.
func (h *BotEventHandler) handleStatusChange(ctx context.Context, event models.BotWebhookEventMessage) {
	result := h.syncService.SyncOne(ctx, event.SessionUID)
	if result.Error != "" {
		slog.ErrorContext(ctx, "webhook-triggered sync failed",
			"session_uid", event.SessionUID, "sync_error", result.Error)
		return
	}
	slog.DebugContext(ctx, "webhook-triggered sync complete",
		"session_uid", event.SessionUID, "bot_status", result.Status, "updated", result.Updated)
}

// handleTranscriptData acknowledges streaming transcript events. Transcript
// ingestion happens elsewhere; the lifecycle service only treats the event
// as a liveness signal worth logging.
func (h *BotEventHandler) handleTranscriptData(ctx context.Context, event models.BotWebhookEventMessage) {
	slog.DebugContext(ctx, "received transcript event",
		"session_uid", event.SessionUID, "event_type", event.EventType)
}
