// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
	"github.com/recapio/meeting-bot-service/internal/service"
)

// SessionHandler serves the session lifecycle HTTP API.
type SessionHandler struct {
	sessionService     *service.SessionService
	enhancementService *service.SessionEnhancementService
	syncService        *service.StatusSyncService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	sessionService *service.SessionService,
	enhancementService *service.SessionEnhancementService,
	syncService *service.StatusSyncService,
) *SessionHandler {
	return &SessionHandler{
		sessionService:     sessionService,
		enhancementService: enhancementService,
		syncService:        syncService,
	}
}

// HandlerReady reports whether all backing services are ready.
func (h *SessionHandler) HandlerReady() bool {
	return h.sessionService.ServiceReady() &&
		h.enhancementService.ServiceReady() &&
		h.syncService.ServiceReady()
}

// CreateSession handles POST /sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(ctx, w, domain.NewValidationError("invalid request body", err))
			return
		}
	}

	session, err := h.sessionService.CreateSession(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, session)
}

// GetSession handles GET /sessions/{uid}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.sessionService.GetSession(ctx, chi.URLParam(r, "uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, session)
}

// enhanceSessionRequest is the body for POST /sessions/{uid}/enhance.
// MaxAttempts zero or omitted uses the service default.
type enhanceSessionRequest struct {
	MeetingURL  string `json:"meeting_url"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
}

// enhanceSessionResponse reports whether a bot was attached. bot_attached
// false with a 200 means the session fell back cleanly (unsupported platform
// or exhausted retries); the persisted session carries the detail.
type enhanceSessionResponse struct {
	BotAttached bool            `json:"bot_attached"`
	BotID       string          `json:"bot_id,omitempty"`
	Session     *models.Session `json:"session"`
}

// EnhanceSession handles POST /sessions/{uid}/enhance.
func (h *SessionHandler) EnhanceSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionUID := chi.URLParam(r, "uid")

	var req enhanceSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, domain.NewValidationError("invalid request body", err))
		return
	}
	if req.MeetingURL == "" {
		writeError(ctx, w, domain.NewValidationError("meeting_url is required"))
		return
	}

	if req.MaxAttempts < 0 {
		writeError(ctx, w, domain.NewValidationError("max_attempts must not be negative"))
		return
	}

	bot, err := h.enhancementService.EnhanceSession(ctx, sessionUID, req.MeetingURL, req.MaxAttempts)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.sessionService.GetSession(ctx, sessionUID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	resp := enhanceSessionResponse{Session: session}
	if bot != nil {
		resp.BotAttached = true
		resp.BotID = bot.ID
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// StopSession handles POST /sessions/{uid}/stop.
func (h *SessionHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.enhancementService.StopSession(ctx, chi.URLParam(r, "uid")); err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getTranscriptResponse wraps the captured transcript segments.
type getTranscriptResponse struct {
	Segments []models.TranscriptSegment `json:"segments"`
}

// GetTranscript handles GET /sessions/{uid}/transcript.
func (h *SessionHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	segments, err := h.syncService.GetTranscript(ctx, chi.URLParam(r, "uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, getTranscriptResponse{Segments: segments})
}

// syncBotStatusRequest is the body for POST /usage/sync-bot-status.
type syncBotStatusRequest struct {
	SessionUID string `json:"session_uid,omitempty"`
	SyncAll    bool   `json:"sync_all,omitempty"`
}

// syncBotStatusResponse is the structured result list the UI renders.
type syncBotStatusResponse struct {
	Updated  int                 `json:"updated"`
	Sessions []models.SyncResult `json:"sessions"`
}

// SyncBotStatus handles POST /usage/sync-bot-status, the manual sync
// trigger for sessions visibly stuck in a non-terminal state.
func (h *SessionHandler) SyncBotStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req syncBotStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, domain.NewValidationError("invalid request body", err))
		return
	}
	if !req.SyncAll && req.SessionUID == "" {
		writeError(ctx, w, domain.NewValidationError("session_uid is required unless sync_all is set"))
		return
	}

	var results []models.SyncResult
	if req.SyncAll {
		var err error
		results, err = h.syncService.SyncAll(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
	} else {
		results = []models.SyncResult{h.syncService.SyncOne(ctx, req.SessionUID)}
	}

	resp := syncBotStatusResponse{Sessions: results}
	for _, result := range results {
		if result.Updated {
			resp.Updated++
		}
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
