// Package store implements the forum's data-access façade: entity CRUD,
// role-gated moderation operations and a composite post search, backed by a
// flat key-value substrate.
//
// Every operation re-reads the collections it touches from the substrate,
// mutates in memory and writes the whole collection back before returning. A
// single mutex serializes operations so the read-modify-write cycle stays
// atomic under concurrent callers.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"classwall/internal/models"
	"classwall/internal/observability"
	"classwall/internal/storage"

	"github.com/google/uuid"
)

// Store is the authorization and consistency façade over the substrate.
type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	now   func() time.Time
	newID func(prefix string) string

	userLog    *observability.StoreLogger
	postLog    *observability.StoreLogger
	commentLog *observability.StoreLogger
}

// Option customizes a Store; used by tests to pin time and ids.
type Option func(*Store)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the id generator.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *Store) { s.newID = gen }
}

// New builds a Store over kv and seeds the initial collections on first run.
func New(ctx context.Context, kv storage.KV, seed SeedConfig, opts ...Option) (*Store, error) {
	s := &Store{
		kv:         kv,
		now:        time.Now,
		newID:      defaultNewID,
		userLog:    observability.NewStoreLogger("users"),
		postLog:    observability.NewStoreLogger("posts"),
		commentLog: observability.NewStoreLogger("comments"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSeeded(ctx, seed); err != nil {
		return nil, err
	}
	return s, nil
}

func defaultNewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}

// loadList reads and decodes a collection. A missing key decodes to an empty
// collection.
func loadList[T any](ctx context.Context, kv storage.KV, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("decode %s: %w", key, err))
	}
	return out, nil
}

// saveList encodes and writes a whole collection back under its key.
func saveList[T any](ctx context.Context, kv storage.KV, key string, list []T) error {
	if list == nil {
		list = []T{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("encode %s: %w", key, err))
	}
	if err := kv.Set(ctx, key, string(raw)); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
