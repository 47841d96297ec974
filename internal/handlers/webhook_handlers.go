// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/service"
)

// Provider webhook signature headers.
const (
	WebhookSignatureHeader = "x-recall-signature"
	WebhookTimestampHeader = "x-recall-request-timestamp"
)

// maxWebhookBodyBytes caps inbound webhook bodies; transcript payloads are
// small and anything larger is not ours.
const maxWebhookBodyBytes = 1 << 20

// BotWebhookHandler serves the inbound provider webhook endpoint.
type BotWebhookHandler struct {
	webhookService *service.BotWebhookService
}

// NewBotWebhookHandler creates a new BotWebhookHandler.
func NewBotWebhookHandler(webhookService *service.BotWebhookService) *BotWebhookHandler {
	return &BotWebhookHandler{
		webhookService: webhookService,
	}
}

// HandlerReady reports whether the webhook service is ready.
func (h *BotWebhookHandler) HandlerReady() bool {
	return h.webhookService.ServiceReady()
}

// HandleBotWebhook handles POST /webhooks/bot/{uid}. The response must be
// fast; heavy work is queued to NATS and the provider retries on non-2xx.
func (h *BotWebhookHandler) HandleBotWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		writeError(ctx, w, domain.NewValidationError("unable to read request body", err))
		return
	}

	err = h.webhookService.ProcessWebhookEvent(ctx, service.WebhookRequest{
		SessionUID: chi.URLParam(r, "uid"),
		Signature:  r.Header.Get(WebhookSignatureHeader),
		Timestamp:  r.Header.Get(WebhookTimestampHeader),
		RawBody:    body,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "accepted"})
}
