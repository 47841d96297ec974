// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
	"github.com/recapio/meeting-bot-service/internal/logging"
	"github.com/recapio/meeting-bot-service/pkg/utils"
)

// SessionEnhancementService turns "a session has a meeting URL" into "a bot
// is attached or a clean fallback is recorded". Bot-creation failure never
// escalates to the caller as an error; it is captured into the session's
// bot_error and fallback transcription provider so the session stays usable
// without the bot.
type SessionEnhancementService struct {
	provider domain.BotProvider
	repo     domain.SessionRepository
	sender   domain.BotEventSender
	monitor  *StatusMonitor
	config   ServiceConfig
}

// NewSessionEnhancementService creates a new SessionEnhancementService.
func NewSessionEnhancementService(
	provider domain.BotProvider,
	repo domain.SessionRepository,
	sender domain.BotEventSender,
	monitor *StatusMonitor,
	config ServiceConfig,
) *SessionEnhancementService {
	return &SessionEnhancementService{
		provider: provider,
		repo:     repo,
		sender:   sender,
		monitor:  monitor,
		config:   config,
	}
}

// ServiceReady checks if the service is ready to enhance sessions.
func (s *SessionEnhancementService) ServiceReady() bool {
	return s.provider != nil && s.repo != nil && s.monitor != nil
}

// EnhanceSession attaches a recording bot to the session for the given
// meeting URL and starts join-phase monitoring. A nil bot with a nil error
// means enhancement was skipped or fell back; the persisted session carries
// the outcome either way. A maxAttempts of zero or less uses the configured
// default.
func (s *SessionEnhancementService) EnhanceSession(ctx context.Context, sessionUID, meetingURL string, maxAttempts int) (*models.Bot, error) {
	if maxAttempts <= 0 {
		maxAttempts = s.config.MaxCreateAttempts
	}
	ctx = logging.AppendCtx(ctx, slog.String("session_uid", sessionUID))

	session, revision, err := s.repo.GetWithRevision(ctx, sessionUID)
	if err != nil {
		return nil, err
	}

	// Persisted guard against double-invocation creating duplicate remote
	// bots, e.g. a user double-clicking join.
	if session.EnhancementAttempted() {
		return nil, domain.NewConflictError("session enhancement already attempted")
	}

	platform := domain.DetectPlatform(meetingURL)
	if platform == models.PlatformUnknown {
		// Unsupported platforms are a terminal, non-retryable condition.
		// Nothing bot-related is persisted.
		slog.InfoContext(ctx, "meeting URL does not match a supported platform, skipping bot")
		return nil, nil
	}

	bot, lastErr := s.createBotWithRetries(ctx, domain.CreateBotRequest{
		SessionUID:            sessionUID,
		MeetingURL:            meetingURL,
		TranscriptionProvider: models.TranscriptionProviderMeetingCaptions,
	}, maxAttempts)

	now := time.Now().UTC()
	session.MeetingURL = meetingURL
	session.Platform = platform
	session.UpdatedAt = now

	if bot == nil {
		// Exhausted retries. Record the failure and fall back to direct
		// capture so the session remains usable.
		session.BotError = lastErr.Error()
		session.TranscriptionProvider = models.TranscriptionProviderDirectCapture
		if err := s.repo.Update(ctx, session, revision); err != nil {
			return nil, err
		}
		slog.WarnContext(ctx, "bot creation failed, session falls back to direct capture",
			logging.ErrKey, lastErr)
		return nil, nil
	}

	session.BotID = bot.ID
	session.BotStatus = models.BotStatusCreated
	session.BotStatusObservedAt = utils.TimePtr(now)
	session.TranscriptionProvider = models.TranscriptionProviderMeetingCaptions
	if err := s.repo.Update(ctx, session, revision); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "bot attached to session", "bot_id", bot.ID, "meeting_platform", platform)

	// Fire and forget; the monitor owns its own deadline and cancellation.
	s.monitor.Start(sessionUID, bot.ID)

	return bot, nil
}

// createBotWithRetries attempts bot creation up to maxAttempts times with
// linear backoff, stopping on first success or context cancellation.
func (s *SessionEnhancementService) createBotWithRetries(ctx context.Context, req domain.CreateBotRequest, maxAttempts int) (*models.Bot, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * s.config.CreateRetryDelay):
			}
		}

		bot, err := s.provider.CreateBot(ctx, req)
		if err == nil {
			return bot, nil
		}

		lastErr = err
		slog.WarnContext(ctx, "bot creation attempt failed",
			logging.ErrKey, err, "attempt", attempt, "max_attempts", maxAttempts)
	}

	return nil, lastErr
}

// StopSession cancels join monitoring, asks the remote bot to leave the call,
// and persists the cancelled status. Sessions without a bot are a no-op.
func (s *SessionEnhancementService) StopSession(ctx context.Context, sessionUID string) error {
	ctx = logging.AppendCtx(ctx, slog.String("session_uid", sessionUID))

	session, err := s.repo.Get(ctx, sessionUID)
	if err != nil {
		return err
	}
	if !session.HasBot() {
		return nil
	}
	if session.BotStatus.IsTerminal() {
		// Nothing left to stop; keep the already-terminal outcome.
		return nil
	}

	// Preempt the poll loop first so it cannot overwrite cancelled with a
	// stale join observation.
	s.monitor.Cancel(sessionUID)

	if err := s.provider.StopBot(ctx, session.BotID); err != nil {
		slog.WarnContext(ctx, "failed to stop remote bot", logging.ErrKey, err, "bot_id", session.BotID)
	}

	if _, err := persistObservation(ctx, s.repo, s.sender, sessionUID, models.BotObservation{
		Status:     models.BotStatusCancelled,
		ObservedAt: time.Now().UTC(),
	}, s.config.CostCentsPerMinute); err != nil {
		return err
	}

	slog.InfoContext(ctx, "session stopped", "bot_id", session.BotID)
	return nil
}
