// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/recapio/meeting-bot-service/internal/logging"
)

// flags are the command line flags for the bot service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the bot service.
type environment struct {
	Port    string `env:"PORT" envDefault:"8080"`
	NatsURL string `env:"NATS_URL" envDefault:"nats://localhost:4222"`

	// Recording-bot provider settings.
	RecallAPIToken string `env:"RECALL_API_TOKEN"`
	RecallBaseURL  string `env:"RECALL_API_BASE_URL"`
	RecallBotName  string `env:"RECALL_BOT_NAME"`

	// WebhookBaseURL is the externally reachable prefix provider webhooks
	// are delivered to; the session UID is appended per bot.
	WebhookBaseURL string `env:"BOT_WEBHOOK_BASE_URL"`
	// WebhookSecret signs inbound provider webhook deliveries.
	WebhookSecret string `env:"BOT_WEBHOOK_SECRET"`

	// Orchestration tuning.
	CostCentsPerMinute   int           `env:"RECORDING_COST_CENTS_PER_MINUTE" envDefault:"2"`
	BotCreateMaxAttempts int           `env:"BOT_CREATE_MAX_ATTEMPTS" envDefault:"3"`
	BotCreateRetryDelay  time.Duration `env:"BOT_CREATE_RETRY_DELAY" envDefault:"2s"`
	BotPollInterval      time.Duration `env:"BOT_POLL_INTERVAL" envDefault:"5s"`
	BotJoinTimeout       time.Duration `env:"BOT_JOIN_TIMEOUT" envDefault:"5m"`
}

// parseFlags parses command line flags for the bot service.
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.Init].
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the bot service.
func parseEnv() environment {
	var e environment
	if err := env.Parse(&e); err != nil {
		slog.With(logging.ErrKey, err).Error("error parsing environment variables")
		os.Exit(1)
	}
	return e
}
