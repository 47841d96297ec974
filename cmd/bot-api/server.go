// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recapio/meeting-bot-service/internal/handlers"
	"github.com/recapio/meeting-bot-service/internal/logging"
	"github.com/recapio/meeting-bot-service/internal/middleware"
)

// setupHTTPServer configures and starts the HTTP server.
func setupHTTPServer(
	flags flags,
	sessionHandler *handlers.SessionHandler,
	webhookHandler *handlers.BotWebhookHandler,
	gracefulCloseWG *sync.WaitGroup,
) *http.Server {
	r := chi.NewRouter()

	// Order matters: the request ID must exist before the logger runs.
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggerMiddleware())

	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !sessionHandler.HandlerReady() || !webhookHandler.HandlerReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", sessionHandler.CreateSession)
		r.Get("/{uid}", sessionHandler.GetSession)
		r.Post("/{uid}/enhance", sessionHandler.EnhanceSession)
		r.Post("/{uid}/stop", sessionHandler.StopSession)
		r.Get("/{uid}/transcript", sessionHandler.GetTranscript)
	})
	r.Post("/usage/sync-bot-status", sessionHandler.SyncBotStatus)
	r.Post("/webhooks/bot/{uid}", webhookHandler.HandleBotWebhook)

	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err, logging.PriorityCritical()).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
