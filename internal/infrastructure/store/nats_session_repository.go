// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

// NatsSessionRepository is the NATS KV store repository for sessions.
type NatsSessionRepository struct {
	*NatsBaseRepository[models.Session]
}

// Ensure the repository satisfies the domain port.
var _ domain.SessionRepository = (*NatsSessionRepository)(nil)

// NewNatsSessionRepository creates a new NATS KV store repository for sessions.
func NewNatsSessionRepository(kvStore INatsKeyValue) *NatsSessionRepository {
	return &NatsSessionRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Session](kvStore, "session"),
	}
}

// Create stores a new session keyed by its UID.
func (r *NatsSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.UID == "" {
		return domain.NewValidationError("session UID is required")
	}

	return r.NatsBaseRepository.Create(ctx, session.UID, session)
}

// Get retrieves a session by UID.
func (r *NatsSessionRepository) Get(ctx context.Context, sessionUID string) (*models.Session, error) {
	return r.NatsBaseRepository.Get(ctx, sessionUID)
}

// GetWithRevision retrieves a session with its revision by UID.
func (r *NatsSessionRepository) GetWithRevision(ctx context.Context, sessionUID string) (*models.Session, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, sessionUID)
}

// Update updates an existing session with optimistic concurrency control.
func (r *NatsSessionRepository) Update(ctx context.Context, session *models.Session, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, session.UID, session, revision)
}

// ListWithBots lists all sessions that have a bot attached. Used by the
// sync-all reconciliation path.
func (r *NatsSessionRepository) ListWithBots(ctx context.Context) ([]*models.Session, error) {
	sessions, err := r.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	var withBots []*models.Session
	for _, session := range sessions {
		if session.HasBot() {
			withBots = append(withBots, session)
		}
	}

	return withBots, nil
}
