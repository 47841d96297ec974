// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/domain/models"
	"github.com/recapio/meeting-bot-service/internal/infrastructure/messaging"
	"github.com/recapio/meeting-bot-service/internal/infrastructure/store"
	"github.com/recapio/meeting-bot-service/internal/logging"
)

const natsConnectTimeout = 10 * time.Second

// setupNATS connects to the NATS server used for both persistence (JetStream
// KV) and messaging. The close handler feeds the shutdown channel so a lost
// connection takes the process down rather than serving stale state.
func setupNATS(env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	slog.With("nats_url", env.NatsURL).Info("connecting to NATS")

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Name("meeting-bot-service"),
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.Info("connected to NATS server")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
				return
			}
			slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			err := conn.LastError()
			if err != nil {
				slog.With(logging.ErrKey, err).Error("NATS connection closed")
			} else {
				slog.Info("NATS connection closed")
			}
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		return nil, err
	}

	// The closed handler owns this decrement.
	gracefulCloseWG.Add(1)

	return natsConn, nil
}

// getSessionRepository sets up the JetStream KV bucket backing the session
// repository, creating the bucket when it does not exist yet.
func getSessionRepository(ctx context.Context, natsConn *nats.Conn) (*store.NatsSessionRepository, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	kvStore, err := js.KeyValue(ctx, store.KVStoreNameSessions)
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketNotFound) {
			return nil, err
		}
		kvStore, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:  store.KVStoreNameSessions,
			History: 20,
		})
		if err != nil {
			return nil, err
		}
		slog.With("bucket", store.KVStoreNameSessions).Info("created NATS KV bucket")
	}

	return store.NewNatsSessionRepository(kvStore), nil
}

// createNatsSubscriptions queue-subscribes the bot event handler to the
// webhook event subjects. The queue group spreads deliveries across
// replicas while keeping each event handled once per group.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.BotWebhookStatusChangeSubject,
		models.BotWebhookTranscriptDataSubject,
		models.BotWebhookTranscriptPartialDataSubject,
	}

	for _, subject := range subjects {
		_, err := natsConn.QueueSubscribe(subject, models.BotWebhookQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMsg(msg))
		})
		if err != nil {
			return err
		}
		slog.With("subject", subject, "queue", models.BotWebhookQueue).Info("subscribed to NATS subject")
	}

	return nil
}
