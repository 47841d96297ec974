// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

// Package logging contains the structured logging setup for the bot service.
package logging

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey string

// ErrKey is the log attribute key used for errors across the service.
const ErrKey = "error"

const (
	slogFields      ctxKey = "slog_fields"
	logLevelDefault        = slog.LevelInfo

	// Log field value for errors that should page somebody.
	priorityCritical = "critical"
)

// contextHandler injects attributes stored on the context into every record.
type contextHandler struct {
	slog.Handler
}

// Handle adds contextual attributes to the Record before calling the underlying handler.
func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// AppendCtx adds an slog attribute to the provided context so that it is
// included in any record created with that context.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if v, ok := parent.Value(slogFields).([]slog.Attr); ok {
		v = append(v, attr)
		return context.WithValue(parent, slogFields, v)
	}

	return context.WithValue(parent, slogFields, []slog.Attr{attr})
}

// Init configures the process-wide slog default from the environment.
// LOG_LEVEL selects the level (debug, info, warn, error); LOG_ADD_SOURCE
// enables source locations.
func Init() slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))}

	addSource := os.Getenv("LOG_ADD_SOURCE")
	opts.AddSource = addSource == "true" || addSource == "t" || addSource == "1"

	h := slog.NewJSONHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(contextHandler{h}))

	slog.Info("log config", "logLevel", opts.Level, "addSource", opts.AddSource)

	return h
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return logLevelDefault
}

// PriorityCritical marks log records that the on-call team should act on.
func PriorityCritical() slog.Attr {
	return slog.String("priority", priorityCritical)
}
