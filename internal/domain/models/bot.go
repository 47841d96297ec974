// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// Remote bot status codes as reported by the recording-bot provider.
// The provider drives all transitions; the service only observes them.
const (
	BotCodeReady                     = "ready"
	BotCodeJoiningCall               = "joining_call"
	BotCodeInWaitingRoom             = "in_waiting_room"
	BotCodeInCallNotRecording        = "in_call_not_recording"
	BotCodeInCallRecording           = "in_call_recording"
	BotCodeRecordingPermissionDenied = "recording_permission_denied"
	BotCodeCallEnded                 = "call_ended"
	BotCodeDone                      = "done"
	BotCodeAnalysisDone              = "analysis_done"
	BotCodeFatal                     = "fatal"
)

// MapBotStatusCode maps a provider status code onto the local BotStatus
// state machine. Unknown codes map to joining so that an unrecognized
// intermediate state keeps the monitor polling rather than wedging the
// session.
func MapBotStatusCode(code string) BotStatus {
	switch code {
	case BotCodeReady:
		return BotStatusCreated
	case BotCodeJoiningCall, BotCodeInWaitingRoom:
		return BotStatusJoining
	case BotCodeInCallNotRecording:
		return BotStatusInCall
	case BotCodeInCallRecording:
		return BotStatusRecording
	case BotCodeRecordingPermissionDenied:
		return BotStatusPermissionDenied
	case BotCodeCallEnded, BotCodeDone, BotCodeAnalysisDone:
		return BotStatusCompleted
	case BotCodeFatal:
		return BotStatusFailed
	}
	return BotStatusJoining
}

// Bot is the local projection of the provider's remote bot resource.
// It is not locally owned; callers only cache what GetBot returned.
type Bot struct {
	ID            string            `json:"id"`
	StatusCode    string            `json:"status_code"`
	MeetingURL    string            `json:"meeting_url,omitempty"`
	StatusChanges []BotStatusChange `json:"status_changes,omitempty"`
	Recordings    []BotRecording    `json:"recordings,omitempty"`
}

// BotStatusChange is one entry in the provider's ordered status history.
type BotStatusChange struct {
	Code      string    `json:"code"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BotRecording describes a recording the provider captured for the bot.
type BotRecording struct {
	ID          string     `json:"id"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Status returns the bot's current local status, preferring the latest
// status-change entry over the top-level code since the history carries the
// provider's failure message.
func (b *Bot) Status() BotStatus {
	return MapBotStatusCode(b.latestCode())
}

// StatusMessage returns the provider's message for the latest status
// change, if any. Used to surface failure reasons into bot_error.
func (b *Bot) StatusMessage() string {
	if len(b.StatusChanges) == 0 {
		return ""
	}
	return b.StatusChanges[len(b.StatusChanges)-1].Message
}

func (b *Bot) latestCode() string {
	if len(b.StatusChanges) > 0 {
		return b.StatusChanges[len(b.StatusChanges)-1].Code
	}
	return b.StatusCode
}

// RecordedSeconds sums the duration of all completed recordings. This is a
// derived display value, not authoritative billing state.
func (b *Bot) RecordedSeconds() int {
	var total time.Duration
	for _, rec := range b.Recordings {
		if rec.StartedAt == nil || rec.CompletedAt == nil {
			continue
		}
		if d := rec.CompletedAt.Sub(*rec.StartedAt); d > 0 {
			total += d
		}
	}
	return int(total / time.Second)
}
