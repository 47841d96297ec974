// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"sync"
	"time"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

// fakeSessionRepo is an in-memory SessionRepository with the same revision
// semantics as the NATS KV store. It lets lifecycle tests observe real
// persisted state instead of scripting every read.
type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]models.Session
	revisions map[string]uint64
}

var _ domain.SessionRepository = (*fakeSessionRepo)(nil)

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:  make(map[string]models.Session),
		revisions: make(map[string]uint64),
	}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.UID == "" {
		return domain.NewValidationError("session UID is required")
	}
	r.sessions[session.UID] = *session
	r.revisions[session.UID] = 1
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, sessionUID string) (*models.Session, error) {
	session, _, err := r.GetWithRevision(ctx, sessionUID)
	return session, err
}

func (r *fakeSessionRepo) GetWithRevision(_ context.Context, sessionUID string) (*models.Session, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionUID]
	if !ok {
		return nil, 0, domain.NewNotFoundError("session not found")
	}
	copied := session
	return &copied, r.revisions[sessionUID], nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *models.Session, revision uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.revisions[session.UID]
	if !ok {
		return domain.NewNotFoundError("session not found")
	}
	if current != revision {
		return domain.NewConflictError("session has been modified")
	}
	r.sessions[session.UID] = *session
	r.revisions[session.UID] = current + 1
	return nil
}

func (r *fakeSessionRepo) ListWithBots(_ context.Context) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sessions []*models.Session
	for _, session := range r.sessions {
		if session.HasBot() {
			copied := session
			sessions = append(sessions, &copied)
		}
	}
	return sessions, nil
}

// mustGet returns the current persisted session, failing the test on error.
func (r *fakeSessionRepo) mustGet(uid string) models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[uid]
}

func (r *fakeSessionRepo) seed(session models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.UID] = session
	r.revisions[session.UID] = 1
}

func testConfig() ServiceConfig {
	return ServiceConfig{
		CostCentsPerMinute: 2,
		MaxCreateAttempts:  3,
		CreateRetryDelay:   time.Millisecond,
		PollInterval:       10 * time.Millisecond,
		JoinTimeout:        100 * time.Millisecond,
	}
}
