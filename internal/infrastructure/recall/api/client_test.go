// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		APIToken:       "test-token",
		WebhookBaseURL: "https://api.recap.example/webhooks/bot",
		BaseURL:        server.URL,
	})
}

func TestCreateBot_Success(t *testing.T) {
	var captured createBotPayload

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"bot-123","status":"ready","meeting_url":"https://meet.google.com/abc-defg-hij"}`))
	})

	bot, err := client.CreateBot(context.Background(), domain.CreateBotRequest{
		SessionUID:            "session-1",
		MeetingURL:            "https://meet.google.com/abc-defg-hij",
		TranscriptionProvider: "meeting_captions",
	})

	require.NoError(t, err)
	assert.Equal(t, "bot-123", bot.ID)
	assert.Equal(t, models.BotStatusCreated, bot.Status())

	assert.Equal(t, "https://meet.google.com/abc-defg-hij", captured.MeetingURL)
	assert.Equal(t, "session-1", captured.Metadata.SessionUID)
	assert.Equal(t, "audio_only", captured.RecordingConfig.VideoMixedLayout)
	assert.False(t, captured.RecordingConfig.IncludeBotInRecording)
	assert.Contains(t, captured.RecordingConfig.Transcript.Provider, "meeting_captions")

	require.Len(t, captured.RecordingConfig.RealtimeEndpoints, 1)
	endpoint := captured.RecordingConfig.RealtimeEndpoints[0]
	assert.Equal(t, "webhook", endpoint.Type)
	assert.Equal(t, "https://api.recap.example/webhooks/bot/session-1", endpoint.URL)
	assert.Equal(t, []string{"transcript.data", "transcript.partial_data"}, endpoint.Events)

	// The automatic-leave block must be tuned to multi-minute scales so the
	// bot never leaves a quiet call prematurely.
	assert.GreaterOrEqual(t, captured.AutomaticLeave.WaitingRoomTimeout, 600)
	assert.GreaterOrEqual(t, captured.AutomaticLeave.NooneJoinedTimeout, 600)
	assert.GreaterOrEqual(t, captured.AutomaticLeave.SilenceDetection.Timeout, 600)
	assert.GreaterOrEqual(t, captured.AutomaticLeave.InCallNotRecordingTimeout, 600)
	assert.GreaterOrEqual(t, captured.AutomaticLeave.BotDetection.Timeout, 600)
	assert.GreaterOrEqual(t, captured.AutomaticLeave.BotDetection.ActivateAfter, 60)
}

func TestCreateBot_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"invalid meeting url"}`))
	})

	bot, err := client.CreateBot(context.Background(), domain.CreateBotRequest{
		SessionUID: "session-1",
		MeetingURL: "https://meet.google.com/bad",
	})

	assert.Nil(t, bot)
	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusForbidden, upstreamErr.StatusCode)
	assert.Equal(t, "invalid meeting url", upstreamErr.Message)
	assert.Contains(t, upstreamErr.RawBody, "invalid meeting url")
}

func TestGetBot_MapsStatusHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bot/bot-123", r.URL.Path)

		_, _ = w.Write([]byte(`{
			"id": "bot-123",
			"status": "in_call_recording",
			"meeting_url": "https://zoom.us/j/123",
			"status_changes": [
				{"code": "joining_call", "created_at": "2026-08-01T10:00:00Z"},
				{"code": "in_call_recording", "created_at": "2026-08-01T10:01:00Z"}
			],
			"recordings": [
				{"id": "rec-1", "started_at": "2026-08-01T10:01:00Z", "completed_at": "2026-08-01T10:31:00Z"}
			]
		}`))
	})

	bot, err := client.GetBot(context.Background(), "bot-123")

	require.NoError(t, err)
	assert.Equal(t, models.BotStatusRecording, bot.Status())
	require.Len(t, bot.StatusChanges, 2)
	assert.Equal(t, "in_call_recording", bot.StatusChanges[1].Code)
	assert.Equal(t, 1800, bot.RecordedSeconds())
}

func TestGetBot_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not found"}`))
	})

	bot, err := client.GetBot(context.Background(), "missing")

	assert.Nil(t, bot)
	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusNotFound, upstreamErr.StatusCode)
}

func TestStopBot(t *testing.T) {
	var called bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot/bot-123/leave_call", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, client.StopBot(context.Background(), "bot-123"))
	assert.True(t, called)
}

func TestStopBot_TransportError(t *testing.T) {
	client := NewClient(Config{
		APIToken: "test-token",
		BaseURL:  "http://127.0.0.1:1", // nothing listens here
	})

	err := client.StopBot(context.Background(), "bot-123")

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Zero(t, upstreamErr.StatusCode)
}

func TestGetBotTranscript(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot/bot-123/transcript", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"speaker": "Alice", "words": [
				{"text": "hello", "start_timestamp": 1.0, "end_timestamp": 1.4},
				{"text": "there", "start_timestamp": 1.5, "end_timestamp": 1.9}
			]},
			{"speaker": "Bob", "words": [
				{"text": "hi", "start_timestamp": 2.0, "end_timestamp": 2.2}
			]}
		]`))
	})

	segments, err := client.GetBotTranscript(context.Background(), "bot-123")

	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Alice", segments[0].Speaker)
	assert.Equal(t, "hello there", segments[0].Text)
	assert.Equal(t, 1.0, segments[0].StartSeconds)
	assert.Equal(t, 1.9, segments[0].EndSeconds)
	assert.Equal(t, "hi", segments[1].Text)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{APIToken: "tok"})

	assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
	assert.Equal(t, DefaultClientTimeout, client.config.Timeout)
	assert.Equal(t, DefaultBotName, client.config.BotName)
	assert.True(t, client.IsConfigured())

	assert.False(t, NewClient(Config{}).IsConfigured())
}
