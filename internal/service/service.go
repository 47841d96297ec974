// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

// Package service implements the bot lifecycle orchestration: session
// enhancement, join-phase monitoring, and status reconciliation.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
	"github.com/recapio/meeting-bot-service/internal/logging"
)

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// CostCentsPerMinute is the display rate used to derive recording cost
	// from billable minutes.
	CostCentsPerMinute int
	// MaxCreateAttempts bounds bot-creation retries per enhancement.
	MaxCreateAttempts int
	// CreateRetryDelay is the base delay between bot-creation attempts.
	// Successive retries back off linearly from this value.
	CreateRetryDelay time.Duration
	// PollInterval is the status monitor's poll cadence.
	PollInterval time.Duration
	// JoinTimeout is the monitor's hard wall-clock ceiling for the join phase.
	JoinTimeout time.Duration
}

// DefaultServiceConfig returns the production defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CostCentsPerMinute: 2,
		MaxCreateAttempts:  3,
		CreateRetryDelay:   2 * time.Second,
		PollInterval:       5 * time.Second,
		JoinTimeout:        5 * time.Minute,
	}
}

// persistObservation merges an observed bot state into the persisted session
// and reports whether anything changed. It is the single write path shared by
// the status monitor, the webhook reconciler, and manual sync, so concurrent
// writers stay commutative. Revision conflicts are retried with a fresh read
// since a conflicting write was itself a valid observation.
func persistObservation(
	ctx context.Context,
	repo domain.SessionRepository,
	sender domain.BotEventSender,
	sessionUID string,
	obs models.BotObservation,
	costCentsPerMinute int,
) (bool, error) {
	const maxConflictRetries = 3

	for attempt := 0; ; attempt++ {
		session, revision, err := repo.GetWithRevision(ctx, sessionUID)
		if err != nil {
			return false, err
		}

		if !session.ApplyBotObservation(obs, costCentsPerMinute) {
			return false, nil
		}

		err = repo.Update(ctx, session, revision)
		if err == nil {
			if sender != nil {
				if sendErr := sender.SendBotStatusUpdated(ctx, models.BotStatusUpdatedMessage{
					SessionUID:      session.UID,
					BotID:           session.BotID,
					Status:          session.BotStatus,
					Error:           session.BotError,
					BillableMinutes: session.BillableMinutes,
				}); sendErr != nil {
					slog.WarnContext(ctx, "failed to publish bot status update",
						logging.ErrKey, sendErr, "session_uid", session.UID)
				}
			}
			return true, nil
		}

		if domain.GetErrorType(err) == domain.ErrorTypeConflict && attempt < maxConflictRetries {
			slog.DebugContext(ctx, "session revision conflict, retrying observation merge",
				"session_uid", sessionUID, "attempt", attempt+1)
			continue
		}

		return false, err
	}
}
