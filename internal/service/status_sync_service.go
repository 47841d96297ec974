// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
	"github.com/recapio/meeting-bot-service/internal/logging"
	"github.com/recapio/meeting-bot-service/pkg/concurrent"
)

// syncAllWorkerCount bounds concurrent provider lookups during a full sync.
const syncAllWorkerCount = 10

// StatusSyncService reconciles persisted bot status with provider truth.
// It is the recovery path when the in-process monitor died (restart, crash)
// and the handler behind both webhook delivery and the manual sync API.
// Every entry point funnels into SyncOne so concurrent writers stay
// commutative.
type StatusSyncService struct {
	provider domain.BotProvider
	repo     domain.SessionRepository
	sender   domain.BotEventSender
	config   ServiceConfig
}

// NewStatusSyncService creates a new StatusSyncService.
func NewStatusSyncService(
	provider domain.BotProvider,
	repo domain.SessionRepository,
	sender domain.BotEventSender,
	config ServiceConfig,
) *StatusSyncService {
	return &StatusSyncService{
		provider: provider,
		repo:     repo,
		sender:   sender,
		config:   config,
	}
}

// ServiceReady checks if the service is ready to sync bot statuses.
func (s *StatusSyncService) ServiceReady() bool {
	return s.provider != nil && s.repo != nil
}

// SyncOne fetches current provider truth for the session's bot and merges it
// into the persisted record. Safe to call repeatedly and from any writer;
// a session without a bot is a no-op, not an error.
func (s *StatusSyncService) SyncOne(ctx context.Context, sessionUID string) models.SyncResult {
	ctx = logging.AppendCtx(ctx, slog.String("session_uid", sessionUID))

	result := models.SyncResult{SessionUID: sessionUID}

	session, err := s.repo.Get(ctx, sessionUID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if !session.HasBot() {
		// Nothing to sync.
		result.Status = session.BotStatus
		return result
	}
	result.BotID = session.BotID

	bot, err := s.provider.GetBot(ctx, session.BotID)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch bot for sync", logging.ErrKey, err, "bot_id", session.BotID)
		result.Error = err.Error()
		result.Status = session.BotStatus
		return result
	}

	obs := observationFromBot(bot)
	updated, err := persistObservation(ctx, s.repo, s.sender, sessionUID, obs, s.config.CostCentsPerMinute)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Status = obs.Status
	result.Updated = updated
	if updated {
		slog.InfoContext(ctx, "session bot status reconciled",
			"bot_id", session.BotID, "bot_status", obs.Status)
	}
	return result
}

// SyncAll reconciles every session that has a bot attached, fanning out over
// a bounded worker pool. Per-session failures are reported in the results,
// never aborting the pass.
func (s *StatusSyncService) SyncAll(ctx context.Context) ([]models.SyncResult, error) {
	sessions, err := s.repo.ListWithBots(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []models.SyncResult
	)

	pool := concurrent.NewWorkerPool(syncAllWorkerCount)
	functions := make([]func() error, 0, len(sessions))
	for _, session := range sessions {
		session := session
		functions = append(functions, func() error {
			result := s.SyncOne(ctx, session.UID)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	pool.RunAll(ctx, functions...)

	return results, nil
}

// GetTranscript fetches the transcript the session's bot captured.
func (s *StatusSyncService) GetTranscript(ctx context.Context, sessionUID string) ([]models.TranscriptSegment, error) {
	session, err := s.repo.Get(ctx, sessionUID)
	if err != nil {
		return nil, err
	}
	if !session.HasBot() {
		return nil, domain.NewValidationError("session has no bot attached")
	}
	return s.provider.GetBotTranscript(ctx, session.BotID)
}

// observationFromBot projects the remote bot resource onto a local
// observation, including derived billable minutes from completed recordings.
func observationFromBot(bot *models.Bot) models.BotObservation {
	status := bot.Status()

	obs := models.BotObservation{
		Status:          status,
		BillableMinutes: models.BillableMinutesFromSeconds(bot.RecordedSeconds()),
		ObservedAt:      time.Now().UTC(),
	}
	switch status {
	case models.BotStatusFailed, models.BotStatusTimeout, models.BotStatusPermissionDenied:
		obs.Error = bot.StatusMessage()
		if obs.Error == "" {
			obs.Error = "bot reported " + string(status)
		}
	}
	return obs
}
