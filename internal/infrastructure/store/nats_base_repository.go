// Copyright Recap Technologies, Inc.
// SPDX-License-Identifier: MIT

// Package store contains the NATS JetStream key-value persistence for the
// bot service.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/recapio/meeting-bot-service/internal/domain"
	"github.com/recapio/meeting-bot-service/internal/logging"
)

// KVStoreNameSessions is the NATS KV bucket holding session records.
const KVStoreNameSessions = "sessions"

// tracerName is the instrumentation name for the store package.
const tracerName = "github.com/recapio/meeting-bot-service/internal/infrastructure/store"

// INatsKeyValue is the NATS KV interface the repositories need. Narrowed
// from jetstream.KeyValue so tests can provide a mock.
type INatsKeyValue interface {
	ListKeys(context.Context, ...jetstream.WatchOpt) (jetstream.KeyLister, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(context.Context, string, []byte) (uint64, error)
	Update(context.Context, string, []byte, uint64) (uint64, error)
	Delete(context.Context, string, ...jetstream.KVDeleteOpt) error
}

// NatsBaseRepository provides common NATS KV operations shared by the
// typed repositories.
type NatsBaseRepository[T any] struct {
	kvStore    INatsKeyValue
	entityName string // used in error messages (e.g. "session")
}

// NewNatsBaseRepository creates a new base repository for NATS KV operations.
func NewNatsBaseRepository[T any](kvStore INatsKeyValue, entityName string) *NatsBaseRepository[T] {
	return &NatsBaseRepository[T]{
		kvStore:    kvStore,
		entityName: entityName,
	}
}

// IsReady checks if the repository is ready for use.
func (r *NatsBaseRepository[T]) IsReady() bool {
	return r.kvStore != nil
}

// Get retrieves and unmarshals an entity from the store.
func (r *NatsBaseRepository[T]) Get(ctx context.Context, key string) (*T, error) {
	entity, _, err := r.GetWithRevision(ctx, key)
	return entity, err
}

// GetWithRevision retrieves an entity along with its KV revision for
// optimistic-concurrency updates.
func (r *NatsBaseRepository[T]) GetWithRevision(ctx context.Context, key string) (*T, uint64, error) {
	ctx, span := r.startSpan(ctx, "get", key)
	defer span.End()

	if !r.IsReady() {
		return nil, 0, r.failSpan(span, domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName)))
	}

	entry, err := r.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, 0, r.failSpan(span, domain.NewNotFoundError(
				fmt.Sprintf("%s with key '%s' not found", r.entityName, key), err))
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error getting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return nil, 0, r.failSpan(span, domain.NewInternalError(
			fmt.Sprintf("failed to retrieve %s from store", r.entityName), err))
	}

	var entity T
	if err := json.Unmarshal(entry.Value(), &entity); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error unmarshaling %s", r.entityName), logging.ErrKey, err)
		return nil, 0, r.failSpan(span, domain.NewInternalError(
			fmt.Sprintf("failed to unmarshal %s data", r.entityName), err))
	}

	span.SetStatus(codes.Ok, "")
	return &entity, entry.Revision(), nil
}

// Create stores a new entity under the key.
func (r *NatsBaseRepository[T]) Create(ctx context.Context, key string, entity *T) error {
	ctx, span := r.startSpan(ctx, "put", key)
	defer span.End()

	if !r.IsReady() {
		return r.failSpan(span, domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName)))
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return r.failSpan(span, domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err))
	}

	if _, err := r.kvStore.Put(ctx, key, data); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error creating %s in NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return r.failSpan(span, domain.NewInternalError(fmt.Sprintf("failed to create %s in store", r.entityName), err))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update replaces an entity with optimistic concurrency control. A stale
// revision surfaces as a conflict error so callers can re-read and merge.
func (r *NatsBaseRepository[T]) Update(ctx context.Context, key string, entity *T, revision uint64) error {
	ctx, span := r.startSpan(ctx, "update", key)
	span.SetAttributes(attribute.Int64("db.nats.revision", int64(revision)))
	defer span.End()

	if !r.IsReady() {
		return r.failSpan(span, domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName)))
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return r.failSpan(span, domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err))
	}

	if _, err := r.kvStore.Update(ctx, key, data, revision); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return r.failSpan(span, domain.NewNotFoundError(fmt.Sprintf("%s not found", r.entityName), err))
		}
		if strings.Contains(err.Error(), "wrong last sequence") {
			return r.failSpan(span, domain.NewConflictError(fmt.Sprintf("%s has been modified", r.entityName), err))
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error updating %s in NATS KV", r.entityName),
			logging.ErrKey, err, "key", key, "revision", revision)
		return r.failSpan(span, domain.NewInternalError(fmt.Sprintf("failed to update %s in store", r.entityName), err))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes an entity with optimistic concurrency control.
func (r *NatsBaseRepository[T]) Delete(ctx context.Context, key string, revision uint64) error {
	ctx, span := r.startSpan(ctx, "delete", key)
	defer span.End()

	if !r.IsReady() {
		return r.failSpan(span, domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName)))
	}

	if err := r.kvStore.Delete(ctx, key, jetstream.LastRevision(revision)); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return r.failSpan(span, domain.NewNotFoundError(fmt.Sprintf("%s not found", r.entityName), err))
		}
		if strings.Contains(err.Error(), "wrong last sequence") {
			return r.failSpan(span, domain.NewConflictError(fmt.Sprintf("%s has been modified", r.entityName), err))
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error deleting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key, "revision", revision)
		return r.failSpan(span, domain.NewInternalError(fmt.Sprintf("failed to delete %s from store", r.entityName), err))
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListKeys lists all keys in the store.
func (r *NatsBaseRepository[T]) ListKeys(ctx context.Context) ([]string, error) {
	ctx, span := r.startSpan(ctx, "list_keys", "")
	defer span.End()

	if !r.IsReady() {
		return nil, r.failSpan(span, domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName)))
	}

	lister, err := r.kvStore.ListKeys(ctx)
	if err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error listing %s keys from NATS KV", r.entityName),
			logging.ErrKey, err)
		return nil, r.failSpan(span, domain.NewInternalError(
			fmt.Sprintf("failed to list %s keys from store", r.entityName), err))
	}

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	span.SetAttributes(attribute.Int("db.nats.keys_count", len(keys)))
	span.SetStatus(codes.Ok, "")
	return keys, nil
}

// ListEntities fetches every entity in the store. Entries that fail to
// load are skipped with a warning so one bad record cannot break a scan.
func (r *NatsBaseRepository[T]) ListEntities(ctx context.Context) ([]*T, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var entities []*T
	for _, key := range keys {
		entity, err := r.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, fmt.Sprintf("failed to get %s, skipping", r.entityName),
				"key", key, logging.ErrKey, err)
			continue
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

func (r *NatsBaseRepository[T]) startSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "nats"),
		attribute.String("db.operation", operation),
		attribute.String("db.nats.entity", r.entityName),
	}
	if key != "" {
		attrs = append(attrs, attribute.String("db.nats.key", key))
	}
	return otel.Tracer(tracerName).Start(ctx, "nats.kv."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func (r *NatsBaseRepository[T]) failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
