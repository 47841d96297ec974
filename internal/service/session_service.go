// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

// SessionService owns creation and retrieval of session records. Sessions
// exist before any bot orchestration begins; enhancement attaches a bot to
// an already-created session.
type SessionService struct {
	repo domain.SessionRepository
}

// CreateSessionRequest carries the inputs for creating a session.
type CreateSessionRequest struct {
	MeetingURL string `json:"meeting_url,omitempty"`
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo domain.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// ServiceReady checks if the service is ready to serve sessions.
func (s *SessionService) ServiceReady() bool {
	return s.repo != nil
}

// CreateSession creates a new session record. The meeting URL is optional at
// creation time; the platform is detected eagerly when one is given.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		UID:        uuid.NewString(),
		MeetingURL: req.MeetingURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.MeetingURL != "" {
		session.Platform = domain.DetectPlatform(req.MeetingURL)
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "created session", "session_uid", session.UID)
	return session, nil
}

// GetSession retrieves a session by UID.
func (s *SessionService) GetSession(ctx context.Context, sessionUID string) (*models.Session, error) {
	if sessionUID == "" {
		return nil, domain.NewValidationError("session UID is required")
	}
	return s.repo.Get(ctx, sessionUID)
}
