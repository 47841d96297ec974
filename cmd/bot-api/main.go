// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

// Package main is the meeting bot service API. It exposes the session
// lifecycle HTTP surface, receives provider webhooks, and consumes queued
// webhook events from NATS for reconciliation.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/recapio/meeting-bot-service/internal/handlers"
	"github.com/recapio/meeting-bot-service/internal/infrastructure/messaging"
	"github.com/recapio/meeting-bot-service/internal/infrastructure/recall/api"
	"github.com/recapio/meeting-bot-service/internal/infrastructure/recall/webhook"
	"github.com/recapio/meeting-bot-service/internal/logging"
	"github.com/recapio/meeting-bot-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.Init()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err, logging.PriorityCritical()).Error("error setting up NATS")
		return
	}

	sessionRepo, err := getSessionRepository(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up session repository")
		return
	}

	botClient := api.NewClient(api.Config{
		APIToken:       env.RecallAPIToken,
		BaseURL:        env.RecallBaseURL,
		BotName:        env.RecallBotName,
		WebhookBaseURL: env.WebhookBaseURL,
	})
	if !botClient.IsConfigured() {
		slog.Warn("bot provider API token not configured, enhancement will fail over to direct capture")
	}

	serviceConfig := service.ServiceConfig{
		CostCentsPerMinute: env.CostCentsPerMinute,
		MaxCreateAttempts:  env.BotCreateMaxAttempts,
		CreateRetryDelay:   env.BotCreateRetryDelay,
		PollInterval:       env.BotPollInterval,
		JoinTimeout:        env.BotJoinTimeout,
	}

	// Initialize services
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	statusMonitor := service.NewStatusMonitor(botClient, sessionRepo, messageBuilder, serviceConfig)
	sessionService := service.NewSessionService(sessionRepo)
	enhancementService := service.NewSessionEnhancementService(
		botClient,
		sessionRepo,
		messageBuilder,
		statusMonitor,
		serviceConfig,
	)
	syncService := service.NewStatusSyncService(botClient, sessionRepo, messageBuilder, serviceConfig)
	webhookService := service.NewBotWebhookService(
		messageBuilder,
		webhook.NewValidator(env.WebhookSecret),
	)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService, enhancementService, syncService)
	webhookHandler := handlers.NewBotWebhookHandler(webhookService)
	botEventHandler := handlers.NewBotEventHandler(syncService)

	httpServer := setupHTTPServer(flags, sessionHandler, webhookHandler, &gracefulCloseWG)

	// Create NATS subscriptions for the queued webhook events.
	err = createNatsSubscriptions(ctx, botEventHandler, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, statusMonitor, &gracefulCloseWG, cancel)
}

// gracefulShutdown stops the HTTP server, abandons in-flight monitors, and
// drains NATS so queued work is handed back before exit.
func gracefulShutdown(
	httpServer *http.Server,
	natsConn *nats.Conn,
	statusMonitor *service.StatusMonitor,
	gracefulCloseWG *sync.WaitGroup,
	cancel context.CancelFunc,
) {
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("http server shutdown error")
	}
	gracefulCloseWG.Done()

	// Monitors are abandoned on restart; the reconciler recovers their
	// sessions from webhooks or manual sync.
	statusMonitor.Shutdown()

	cancel()

	if !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
