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
)

// StatusMonitor observes newly created bots through their join phase. Each
// monitored bot gets its own poll loop bounded by a hard wall-clock ceiling;
// the loop stops as soon as the bot is in the call or has terminally failed.
// Later lifecycle phases are covered by webhooks and sync, not this loop.
//
// Monitoring is best-effort: if the process restarts mid-poll the loop is
// abandoned and the reconciler recovers truth on the next webhook or sync.
type StatusMonitor struct {
	provider domain.BotProvider
	repo     domain.SessionRepository
	sender   domain.BotEventSender
	config   ServiceConfig

	mu      sync.Mutex
	cancels map[string]*monitorHandle
	wg      sync.WaitGroup
}

// monitorHandle identifies one running poll loop so a finished loop only
// deregisters itself, not a replacement started for the same session.
type monitorHandle struct {
	cancel context.CancelFunc
}

// NewStatusMonitor creates a new StatusMonitor.
func NewStatusMonitor(
	provider domain.BotProvider,
	repo domain.SessionRepository,
	sender domain.BotEventSender,
	config ServiceConfig,
) *StatusMonitor {
	return &StatusMonitor{
		provider: provider,
		repo:     repo,
		sender:   sender,
		config:   config,
		cancels:  make(map[string]*monitorHandle),
	}
}

// ServiceReady checks if the service is ready to monitor bots.
func (m *StatusMonitor) ServiceReady() bool {
	return m.provider != nil && m.repo != nil
}

// Start launches a poll loop for the session's bot. The loop runs detached
// from the caller's context; use Cancel or Shutdown to preempt it. Starting
// a second monitor for the same session cancels the first.
func (m *StatusMonitor) Start(sessionUID, botID string) {
	ctx, cancel := context.WithCancel(context.Background())
	handle := &monitorHandle{cancel: cancel}

	m.mu.Lock()
	if existing, ok := m.cancels[sessionUID]; ok {
		existing.cancel()
	}
	m.cancels[sessionUID] = handle
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.remove(sessionUID, handle)
		m.run(ctx, sessionUID, botID)
	}()
}

// Cancel preempts the poll loop for a session, if one is running. Used when
// the user explicitly stops the session so the loop does not later overwrite
// the cancelled status with a stale join observation.
func (m *StatusMonitor) Cancel(sessionUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if handle, ok := m.cancels[sessionUID]; ok {
		handle.cancel()
		delete(m.cancels, sessionUID)
	}
}

// Shutdown cancels all running monitors and waits for them to exit.
func (m *StatusMonitor) Shutdown() {
	m.mu.Lock()
	for uid, handle := range m.cancels {
		handle.cancel()
		delete(m.cancels, uid)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// remove deregisters a finished loop unless Start already replaced it.
func (m *StatusMonitor) remove(sessionUID string, handle *monitorHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.cancels[sessionUID]; ok && current == handle {
		delete(m.cancels, sessionUID)
	}
}

func (m *StatusMonitor) run(ctx context.Context, sessionUID, botID string) {
	ctx = logging.AppendCtx(ctx, slog.String("session_uid", sessionUID))
	ctx = logging.AppendCtx(ctx, slog.String("bot_id", botID))

	slog.DebugContext(ctx, "starting bot join monitor",
		"poll_interval", m.config.PollInterval, "join_timeout", m.config.JoinTimeout)

	deadline := time.Now().Add(m.config.JoinTimeout)
	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "bot join monitor cancelled")
			return
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			m.handleJoinTimeout(ctx, sessionUID, botID)
			return
		}

		bot, err := m.provider.GetBot(ctx, botID)
		if err != nil {
			// Transient poll failures are tolerated; try again next tick.
			slog.WarnContext(ctx, "bot status poll failed", logging.ErrKey, err)
			continue
		}

		status := bot.Status()
		switch status {
		case models.BotStatusFailed, models.BotStatusPermissionDenied:
			m.persist(ctx, sessionUID, models.BotObservation{
				Status:     status,
				Error:      bot.StatusMessage(),
				ObservedAt: time.Now().UTC(),
			})
			slog.InfoContext(ctx, "bot failed to join", "bot_status", status)
			return
		case models.BotStatusInCall, models.BotStatusRecording, models.BotStatusCompleted:
			// Join phase is over; the reconciler owns the rest.
			m.persist(ctx, sessionUID, models.BotObservation{
				Status:     status,
				ObservedAt: time.Now().UTC(),
			})
			slog.InfoContext(ctx, "bot joined the call", "bot_status", status)
			return
		default:
			m.persist(ctx, sessionUID, models.BotObservation{
				Status:     status,
				ObservedAt: time.Now().UTC(),
			})
		}
	}
}

func (m *StatusMonitor) handleJoinTimeout(ctx context.Context, sessionUID, botID string) {
	slog.WarnContext(ctx, "bot did not join before the monitor deadline")

	m.persist(ctx, sessionUID, models.BotObservation{
		Status:     models.BotStatusTimeout,
		Error:      "join timeout",
		ObservedAt: time.Now().UTC(),
	})

	// Best effort; the timeout is already persisted.
	if err := m.provider.StopBot(ctx, botID); err != nil {
		slog.WarnContext(ctx, "failed to stop timed-out bot", logging.ErrKey, err)
	}
}

func (m *StatusMonitor) persist(ctx context.Context, sessionUID string, obs models.BotObservation) {
	if _, err := persistObservation(ctx, m.repo, m.sender, sessionUID, obs, m.config.CostCentsPerMinute); err != nil {
		slog.ErrorContext(ctx, "failed to persist monitored bot status",
			logging.ErrKey, err, "bot_status", obs.Status)
	}
}
