// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

// Ensure that Client implements the domain port.
var _ domain.BotProvider = (*Client)(nil)

// Automatic-leave timeouts, in seconds. These are deliberately generous
// (tens of minutes to hours): the bot must not leave a call that is merely
// quiet, stuck in a waiting room, or not yet recording.
const (
	waitingRoomTimeoutSeconds        = 3600
	nooneJoinedTimeoutSeconds        = 3600
	everyoneLeftTimeoutSeconds       = 900
	everyoneLeftActivateAfterSeconds = 300
	inCallNotRecordingTimeoutSeconds = 7200
	permissionDeniedTimeoutSeconds   = 1800
	silenceTimeoutSeconds            = 7200
	silenceActivateAfterSeconds      = 1200
	botDetectionTimeoutSeconds       = 1800
	botDetectionActivateAfterSeconds = 600
)

// createBotPayload is the provider wire format for POST /bot.
type createBotPayload struct {
	MeetingURL      string          `json:"meeting_url"`
	BotName         string          `json:"bot_name"`
	Metadata        botMetadata     `json:"metadata"`
	RecordingConfig recordingConfig `json:"recording_config"`
	AutomaticLeave  automaticLeave  `json:"automatic_leave"`
}

type botMetadata struct {
	SessionUID string `json:"session_uid"`
}

type recordingConfig struct {
	Transcript            transcriptConfig   `json:"transcript"`
	RealtimeEndpoints     []realtimeEndpoint `json:"realtime_endpoints,omitempty"`
	VideoMixedLayout      string             `json:"video_mixed_layout"`
	IncludeBotInRecording bool               `json:"include_bot_in_recording"`
}

type transcriptConfig struct {
	Provider map[string]struct{} `json:"provider"`
}

type realtimeEndpoint struct {
	Type   string   `json:"type"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

type automaticLeave struct {
	WaitingRoomTimeout        int              `json:"waiting_room_timeout"`
	NooneJoinedTimeout        int              `json:"noone_joined_timeout"`
	EveryoneLeft              activatedTimeout `json:"everyone_left_timeout"`
	InCallNotRecordingTimeout int              `json:"in_call_not_recording_timeout"`
	PermissionDeniedTimeout   int              `json:"recording_permission_denied_timeout"`
	SilenceDetection          activatedTimeout `json:"silence_detection"`
	BotDetection              activatedTimeout `json:"bot_detection"`
}

type activatedTimeout struct {
	Timeout       int `json:"timeout"`
	ActivateAfter int `json:"activate_after"`
}

// botResource is the provider wire format for a bot.
type botResource struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	MeetingURL    string            `json:"meeting_url"`
	StatusChanges []botStatusChange `json:"status_changes"`
	Recordings    []botRecording    `json:"recordings"`
}

type botStatusChange struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type botRecording struct {
	ID          string     `json:"id"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (b *botResource) toModel() *models.Bot {
	bot := &models.Bot{
		ID:         b.ID,
		StatusCode: b.Status,
		MeetingURL: b.MeetingURL,
	}
	for _, sc := range b.StatusChanges {
		bot.StatusChanges = append(bot.StatusChanges, models.BotStatusChange{
			Code:      sc.Code,
			Message:   sc.Message,
			CreatedAt: sc.CreatedAt,
		})
	}
	for _, rec := range b.Recordings {
		bot.Recordings = append(bot.Recordings, models.BotRecording{
			ID:          rec.ID,
			StartedAt:   rec.StartedAt,
			CompletedAt: rec.CompletedAt,
		})
	}
	return bot
}

// CreateBot creates a recording bot for the meeting. The webhook destination
// is scoped to the session UID so that provider pushes can be routed back to
// the owning session.
func (c *Client) CreateBot(ctx context.Context, req domain.CreateBotRequest) (*models.Bot, error) {
	payload := &createBotPayload{
		MeetingURL: req.MeetingURL,
		BotName:    c.config.BotName,
		Metadata:   botMetadata{SessionUID: req.SessionUID},
		RecordingConfig: recordingConfig{
			Transcript: transcriptConfig{
				Provider: map[string]struct{}{req.TranscriptionProvider: {}},
			},
			VideoMixedLayout:      "audio_only",
			IncludeBotInRecording: false,
		},
		AutomaticLeave: automaticLeave{
			WaitingRoomTimeout: waitingRoomTimeoutSeconds,
			NooneJoinedTimeout: nooneJoinedTimeoutSeconds,
			EveryoneLeft: activatedTimeout{
				Timeout:       everyoneLeftTimeoutSeconds,
				ActivateAfter: everyoneLeftActivateAfterSeconds,
			},
			InCallNotRecordingTimeout: inCallNotRecordingTimeoutSeconds,
			PermissionDeniedTimeout:   permissionDeniedTimeoutSeconds,
			SilenceDetection: activatedTimeout{
				Timeout:       silenceTimeoutSeconds,
				ActivateAfter: silenceActivateAfterSeconds,
			},
			BotDetection: activatedTimeout{
				Timeout:       botDetectionTimeoutSeconds,
				ActivateAfter: botDetectionActivateAfterSeconds,
			},
		},
	}
	if c.config.WebhookBaseURL != "" {
		payload.RecordingConfig.RealtimeEndpoints = []realtimeEndpoint{
			{
				Type:   "webhook",
				URL:    fmt.Sprintf("%s/%s", c.config.WebhookBaseURL, req.SessionUID),
				Events: []string{"transcript.data", "transcript.partial_data"},
			},
		}
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/bot", payload)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var bot botResource
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, fmt.Errorf("failed to decode bot response: %w", err)
	}

	return bot.toModel(), nil
}

// GetBot fetches the current bot resource. No side effects.
func (c *Client) GetBot(ctx context.Context, botID string) (*models.Bot, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/bot/%s", botID), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var bot botResource
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, fmt.Errorf("failed to decode bot response: %w", err)
	}

	return bot.toModel(), nil
}

// StopBot requests the bot leave the call. The provider stops the bot
// asynchronously; this call does not wait for confirmation.
func (c *Client) StopBot(ctx context.Context, botID string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/bot/%s/leave_call", botID), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromResponse(resp)
	}

	return nil
}

// transcriptSegment is the provider wire format for transcript entries.
type transcriptSegment struct {
	Speaker string `json:"speaker"`
	Words   []struct {
		Text           string  `json:"text"`
		StartTimestamp float64 `json:"start_timestamp"`
		EndTimestamp   float64 `json:"end_timestamp"`
	} `json:"words"`
}

// GetBotTranscript fetches the transcript the bot captured.
func (c *Client) GetBotTranscript(ctx context.Context, botID string) ([]models.TranscriptSegment, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/bot/%s/transcript", botID), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var wire []transcriptSegment
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode transcript response: %w", err)
	}

	segments := make([]models.TranscriptSegment, 0, len(wire))
	for _, seg := range wire {
		var text string
		var start, end float64
		for i, w := range seg.Words {
			if i > 0 {
				text += " "
			}
			text += w.Text
			if i == 0 {
				start = w.StartTimestamp
			}
			end = w.EndTimestamp
		}
		segments = append(segments, models.TranscriptSegment{
			Speaker:      seg.Speaker,
			Text:         text,
			StartSeconds: start,
			EndSeconds:   end,
		})
	}

	return segments, nil
}
