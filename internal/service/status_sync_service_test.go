// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recapio/meeting-bot-service/internal/domain/mocks"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

func recordingBot(id string, seconds int) *models.Bot {
	started := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(time.Duration(seconds) * time.Second)
	return &models.Bot{
		ID:         id,
		StatusCode: models.BotCodeDone,
		Recordings: []models.BotRecording{
			{ID: "rec-1", StartedAt: &started, CompletedAt: &completed},
		},
	}
}

func TestSyncOne_IdempotentReconciliation(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.seed(models.Session{UID: "s1", BotID: "bot-1", BotStatus: models.BotStatusInCall})

	provider := new(mocks.MockBotProvider)
	provider.On("GetBot", mock.Anything, "bot-1").Return(recordingBot("bot-1", 1800), nil)

	svc := NewStatusSyncService(provider, repo, nil, testConfig())

	first := svc.SyncOne(context.Background(), "s1")
	assert.True(t, first.Updated)
	assert.Equal(t, models.BotStatusCompleted, first.Status)

	afterFirst := repo.mustGet("s1")
	assert.Equal(t, 30, afterFirst.BillableMinutes)
	assert.Equal(t, 60, afterFirst.RecordingCostCents)

	// Second call with unchanged provider state writes nothing.
	second := svc.SyncOne(context.Background(), "s1")
	assert.False(t, second.Updated)
	assert.Empty(t, second.Error)
	assert.Equal(t, afterFirst.UpdatedAt, repo.mustGet("s1").UpdatedAt)
}

func TestSyncOne_TerminalMonotonicity(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.seed(models.Session{UID: "s1", BotID: "bot-1", BotStatus: models.BotStatusCompleted})

	provider := new(mocks.MockBotProvider)
	// A stale observation still sees the bot joining.
	provider.On("GetBot", mock.Anything, "bot-1").
		Return(&models.Bot{ID: "bot-1", StatusCode: models.BotCodeJoiningCall}, nil)

	svc := NewStatusSyncService(provider, repo, nil, testConfig())
	result := svc.SyncOne(context.Background(), "s1")

	assert.False(t, result.Updated)
	assert.Equal(t, models.BotStatusCompleted, repo.mustGet("s1").BotStatus)
}

func TestSyncOne_TerminalCorrectionAllowed(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.seed(models.Session{UID: "s1", BotID: "bot-1", BotStatus: models.BotStatusFailed, BotError: "fatal"})

	provider := new(mocks.MockBotProvider)
	// Late data arrived; the provider corrects failed to done.
	provider.On("GetBot", mock.Anything, "bot-1").Return(recordingBot("bot-1", 600), nil)

	svc := NewStatusSyncService(provider, repo, nil, testConfig())
	result := svc.SyncOne(context.Background(), "s1")

	assert.True(t, result.Updated)
	persisted := repo.mustGet("s1")
	assert.Equal(t, models.BotStatusCompleted, persisted.BotStatus)
	assert.Empty(t, persisted.BotError)
	assert.Equal(t, 10, persisted.BillableMinutes)
}

func TestSyncOne_NoBotIsNoOp(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.seed(models.Session{UID: "s1"})

	provider := new(mocks.MockBotProvider)

	svc := NewStatusSyncService(provider, repo, nil, testConfig())
	result := svc.SyncOne(context.Background(), "s1")

	assert.False(t, result.Updated)
	assert.Empty(t, result.Error)
	provider.AssertNotCalled(t, "GetBot", mock.Anything, mock.Anything)
}

func TestSyncOne_ProviderErrorReportedNotPersisted(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.seed(models.Session{UID: "s1", BotID: "bot-1", BotStatus: models.BotStatusInCall})

	provider := new(mocks.MockBotProvider)
	provider.On("GetBot", mock.Anything, "bot-1").Return(nil, assert.AnError)

	svc := NewStatusSyncService(provider, repo, nil, testConfig())
	result := svc.SyncOne(context.Background(), "s1")

	assert.False(t, result.Updated)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, models.BotStatusInCall, repo.mustGet("s1").BotStatus)
}

func TestSyncOne_SessionNotFound(t *testing.T) {
	repo := newFakeSessionRepo()
	provider := new(mocks.MockBotProvider)

	svc := NewStatusSyncService(provider, repo, nil, testConfig())
	result := svc.SyncOne(context.Background(), "missing")

	assert.False(t, result.Updated)
	assert.NotEmpty(t, result.Error)
}

func TestSyncAll_ReconcilesEverySessionWithBot(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.seed(models.Session{UID: "s1", BotID: "bot-1", BotStatus: models.BotStatusJoining})
	repo.seed(models.Session{UID: "s2", BotID: "bot-2", BotStatus: models.BotStatusInCall})
	repo.seed(models.Session{UID: "s3"}) // no bot, skipped

	provider := new(mocks.MockBotProvider)
	provider.On("GetBot", mock.Anything, "bot-1").
		Return(&models.Bot{ID: "bot-1", StatusCode: models.BotCodeInCallRecording}, nil)
	provider.On("GetBot", mock.Anything, "bot-2").Return(nil, assert.AnError)

	svc := NewStatusSyncService(provider, repo, nil, testConfig())
	results, err := svc.SyncAll(context.Background())

	require.NoError(t, err)
	require.Len(t, results, 2)

	byUID := make(map[string]models.SyncResult)
	for _, result := range results {
		byUID[result.SessionUID] = result
	}
	assert.True(t, byUID["s1"].Updated)
	assert.Equal(t, models.BotStatusRecording, repo.mustGet("s1").BotStatus)
	assert.False(t, byUID["s2"].Updated)
	assert.NotEmpty(t, byUID["s2"].Error)
}
