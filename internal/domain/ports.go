// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

// CreateBotRequest carries the session-scoped inputs for creating a remote
// recording bot. The gateway client turns this into the provider payload.
type CreateBotRequest struct {
	SessionUID            string
	MeetingURL            string
	TranscriptionProvider string
}

// BotProvider is the typed, stateless transport to the remote recording-bot
// provider. Implementations perform no retries; callers own retry policy.
type BotProvider interface {
	// CreateBot creates a remote bot for the meeting. The only local side
	// effect is the returned projection.
	CreateBot(ctx context.Context, req CreateBotRequest) (*models.Bot, error)

	// GetBot fetches the current remote bot resource. No side effects.
	GetBot(ctx context.Context, botID string) (*models.Bot, error)

	// StopBot asks the bot to leave the call. It does not wait for the
	// provider to confirm the bot actually left.
	StopBot(ctx context.Context, botID string) error

	// GetBotTranscript fetches the transcript captured by the bot.
	GetBotTranscript(ctx context.Context, botID string) ([]models.TranscriptSegment, error)
}

// SessionRepository is the persistence boundary for session records.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionUID string) (*models.Session, error)
	GetWithRevision(ctx context.Context, sessionUID string) (*models.Session, uint64, error)
	Update(ctx context.Context, session *models.Session, revision uint64) error
	ListWithBots(ctx context.Context) ([]*models.Session, error)
}

// BotEventSender publishes bot lifecycle events to the message bus.
type BotEventSender interface {
	SendBotWebhookEvent(ctx context.Context, subject string, event models.BotWebhookEventMessage) error
	SendBotStatusUpdated(ctx context.Context, msg models.BotStatusUpdatedMessage) error
}

// WebhookValidator validates inbound provider webhook signatures.
type WebhookValidator interface {
	ValidateSignature(body []byte, signature, timestamp string) error
}

// Message represents an inbound bus message.
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming bus messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}
