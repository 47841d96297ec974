// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/recapio/meeting-bot-service/internal/logging"
	"github.com/recapio/meeting-bot-service/pkg/constants"
)

// RequestIDMiddleware ensures every request carries a request ID, generating
// one when the caller did not supply the header. The ID is echoed in the
// response and attached to all request-scoped logs.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(constants.RequestIDHeader, requestID)

			ctx := logging.AppendCtx(r.Context(), slog.String("request_id", requestID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
