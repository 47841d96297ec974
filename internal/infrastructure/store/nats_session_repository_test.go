// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

func newTestSession(uid, botID string) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		UID:        uid,
		MeetingURL: "https://meet.google.com/abc-defg-hij",
		Platform:   models.PlatformGoogleMeet,
		BotID:      botID,
		BotStatus:  models.BotStatusJoining,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestNatsSessionRepository_CreateAndGet(t *testing.T) {
	repo := NewNatsSessionRepository(newMockNatsKeyValue())
	ctx := context.Background()

	session := newTestSession("session-1", "bot-1")
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.UID)
	assert.Equal(t, "bot-1", got.BotID)
	assert.Equal(t, models.BotStatusJoining, got.BotStatus)
}

func TestNatsSessionRepository_CreateRequiresUID(t *testing.T) {
	repo := NewNatsSessionRepository(newMockNatsKeyValue())

	err := repo.Create(context.Background(), &models.Session{})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestNatsSessionRepository_GetNotFound(t *testing.T) {
	repo := NewNatsSessionRepository(newMockNatsKeyValue())

	_, err := repo.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsSessionRepository_UpdateWithRevision(t *testing.T) {
	repo := NewNatsSessionRepository(newMockNatsKeyValue())
	ctx := context.Background()

	session := newTestSession("session-1", "bot-1")
	require.NoError(t, repo.Create(ctx, session))

	got, revision, err := repo.GetWithRevision(ctx, "session-1")
	require.NoError(t, err)

	got.BotStatus = models.BotStatusRecording
	require.NoError(t, repo.Update(ctx, got, revision))

	updated, err := repo.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, models.BotStatusRecording, updated.BotStatus)
}

func TestNatsSessionRepository_UpdateStaleRevisionConflicts(t *testing.T) {
	repo := NewNatsSessionRepository(newMockNatsKeyValue())
	ctx := context.Background()

	session := newTestSession("session-1", "bot-1")
	require.NoError(t, repo.Create(ctx, session))

	got, revision, err := repo.GetWithRevision(ctx, "session-1")
	require.NoError(t, err)

	// Concurrent writer bumps the revision.
	require.NoError(t, repo.Update(ctx, got, revision))

	err = repo.Update(ctx, got, revision)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsSessionRepository_ListWithBots(t *testing.T) {
	repo := NewNatsSessionRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestSession("with-bot", "bot-1")))
	require.NoError(t, repo.Create(ctx, newTestSession("without-bot", "")))

	sessions, err := repo.ListWithBots(ctx)

	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "with-bot", sessions[0].UID)
}

func TestNatsSessionRepository_NotReady(t *testing.T) {
	repo := NewNatsSessionRepository(nil)

	assert.False(t, repo.IsReady())

	_, err := repo.Get(context.Background(), "session-1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestNatsSessionRepository_GetInternalError(t *testing.T) {
	kv := newMockNatsKeyValue()
	kv.getError = errors.New("kv unavailable")
	repo := NewNatsSessionRepository(kv)

	_, err := repo.Get(context.Background(), "session-1")

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
}
