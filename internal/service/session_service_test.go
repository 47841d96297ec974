// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

func TestCreateSession_DetectsPlatform(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	session, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		MeetingURL: "https://teams.microsoft.com/l/meetup-join/abc",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, session.UID)
	assert.Equal(t, models.PlatformTeams, session.Platform)
	assert.False(t, session.CreatedAt.IsZero())

	persisted := repo.mustGet(session.UID)
	assert.Equal(t, session.UID, persisted.UID)
}

func TestCreateSession_WithoutMeetingURL(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo())

	session, err := svc.CreateSession(context.Background(), CreateSessionRequest{})

	require.NoError(t, err)
	assert.Equal(t, models.PlatformUnknown, session.Platform)
}

func TestGetSession(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.seed(models.Session{UID: "s1"})
	svc := NewSessionService(repo)

	session, err := svc.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", session.UID)

	_, err = svc.GetSession(context.Background(), "")
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

	_, err = svc.GetSession(context.Background(), "missing")
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}
