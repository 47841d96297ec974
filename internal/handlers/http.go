// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/logging"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "error encoding response", logging.ErrKey, err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := domain.GetErrorType(err).HTTPStatus()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", logging.ErrKey, err)
	}
	writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}
