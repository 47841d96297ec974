// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// Platform identifies the video-call platform a meeting URL belongs to.
type Platform string

// Supported meeting platforms.
const (
	PlatformZoom       Platform = "zoom"
	PlatformGoogleMeet Platform = "google_meet"
	PlatformTeams      Platform = "teams"
	// PlatformUnknown means the meeting URL did not match any supported platform.
	PlatformUnknown Platform = ""
)

// BotStatus is the locally persisted projection of a recording bot's
// lifecycle. Exactly one value is true for a session at any instant.
type BotStatus string

const (
	BotStatusCreated          BotStatus = "created"
	BotStatusJoining          BotStatus = "joining"
	BotStatusInCall           BotStatus = "in_call"
	BotStatusRecording        BotStatus = "recording"
	BotStatusCompleted        BotStatus = "completed"
	BotStatusFailed           BotStatus = "failed"
	BotStatusTimeout          BotStatus = "timeout"
	BotStatusPermissionDenied BotStatus = "permission_denied"
	BotStatusCancelled        BotStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are expected from the
// status. Terminal statuses must never be overwritten by a stale
// non-terminal observation.
func (s BotStatus) IsTerminal() bool {
	switch s {
	case BotStatusCompleted, BotStatusFailed, BotStatusTimeout,
		BotStatusPermissionDenied, BotStatusCancelled:
		return true
	}
	return false
}

// Transcription provider selection for a session. When a bot is attached,
// the provider's meeting captions are used; if bot enhancement fails the
// session falls back to direct audio capture so it stays usable.
const (
	TranscriptionProviderMeetingCaptions = "meeting_captions"
	TranscriptionProviderDirectCapture   = "direct_capture"
)

// Session is the locally owned record the orchestrator reads and writes.
// The session itself is created by the session-creation surface before any
// bot orchestration begins.
type Session struct {
	UID                   string     `json:"uid"`
	MeetingURL            string     `json:"meeting_url,omitempty"`
	Platform              Platform   `json:"meeting_platform,omitempty"`
	BotID                 string     `json:"bot_id,omitempty"`
	BotStatus             BotStatus  `json:"bot_status,omitempty"`
	BotError              string     `json:"bot_error,omitempty"`
	TranscriptionProvider string     `json:"transcription_provider,omitempty"`
	BillableMinutes       int        `json:"billable_minutes,omitempty"`
	RecordingCostCents    int        `json:"recording_cost_cents,omitempty"`
	BotStatusObservedAt   *time.Time `json:"bot_status_observed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// HasBot reports whether a bot has been attached to the session.
func (s *Session) HasBot() bool {
	return s.BotID != ""
}

// EnhancementAttempted reports whether a bot enhancement has already been
// recorded for the session, successful or not. Used as the persisted guard
// against double-invocation creating duplicate remote bots.
func (s *Session) EnhancementAttempted() bool {
	return s.BotID != "" || s.BotError != ""
}

// BotObservation is a single observation of remote bot truth, produced by
// the status monitor, the webhook reconciler, or the manual sync path.
// Observations are merged with ApplyBotObservation; any observation is a
// valid (possibly stale) view of the provider's state.
type BotObservation struct {
	Status          BotStatus
	Error           string
	BillableMinutes int
	ObservedAt      time.Time
}

// ApplyBotObservation merges an observed bot state into the session and
// reports whether the persisted state changed. The merge is pure and
// commutative across concurrent writers:
//
//   - a non-terminal observation never overwrites a terminal status
//     (remote truth can only move a terminal session to a different
//     terminal status, e.g. a late failed -> completed correction);
//   - non-error statuses clear bot_error, error statuses set it;
//   - identical observations are no-ops so repeated syncs write nothing.
func (s *Session) ApplyBotObservation(obs BotObservation, costCentsPerMinute int) bool {
	if s.BotStatus.IsTerminal() && !obs.Status.IsTerminal() {
		return false
	}

	newError := obs.Error
	if !isErrorStatus(obs.Status) {
		newError = ""
	}

	newMinutes := s.BillableMinutes
	if obs.BillableMinutes > 0 {
		newMinutes = obs.BillableMinutes
	}

	if s.BotStatus == obs.Status && s.BotError == newError && s.BillableMinutes == newMinutes {
		return false
	}

	s.BotStatus = obs.Status
	s.BotError = newError
	s.BillableMinutes = newMinutes
	s.RecordingCostCents = newMinutes * costCentsPerMinute
	observedAt := obs.ObservedAt
	s.BotStatusObservedAt = &observedAt
	s.UpdatedAt = time.Now().UTC()
	return true
}

func isErrorStatus(status BotStatus) bool {
	switch status {
	case BotStatusFailed, BotStatusTimeout, BotStatusPermissionDenied:
		return true
	}
	return false
}

// BillableMinutesFromSeconds converts a provider-reported recording duration
// to billable minutes, rounding any partial minute up.
func BillableMinutesFromSeconds(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 59) / 60
}

// SyncResult is the per-session outcome of a reconciliation pass, rendered
// directly by the manual-sync UI.
type SyncResult struct {
	SessionUID string    `json:"session_uid"`
	BotID      string    `json:"bot_id,omitempty"`
	Status     BotStatus `json:"status,omitempty"`
	Updated    bool      `json:"updated"`
	Error      string    `json:"error,omitempty"`
}
