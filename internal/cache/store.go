// Package cache implements the TTL cache store that views read list data
// through.
//
// A mounted Entry serves a fresh persisted value without touching the
// network, otherwise loads it, and refreshes it silently every TTL for as
// long as it stays mounted. Values are persisted to session storage as JSON
// under the key itself, with the write time in epoch millis under
// "<key>_timestamp". Fetch failures never propagate: they are recorded in the
// snapshot while the last good data is kept.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/observability"
)

// Storage is the persisted key/value backend (session scope).
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Store owns the persisted slots of one console session and the entries
// mounted on them.
type Store struct {
	storage    Storage
	clock      clockwork.Clock
	log        zerolog.Logger
	defaultTTL time.Duration

	mu      sync.Mutex
	mounted map[mountable]struct{}
}

type mountable interface{ Close() }

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the real clock (tests use a fake one).
func WithClock(c clockwork.Clock) Option { return func(s *Store) { s.clock = c } }

// WithLogger sets the logger used for fetch and persistence failures.
func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.log = l } }

// WithDefaultTTL sets the TTL used when Get is called with ttl <= 0.
func WithDefaultTTL(d time.Duration) Option { return func(s *Store) { s.defaultTTL = d } }

// NewStore returns a Store persisting into storage.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:    storage,
		clock:      clockwork.NewRealClock(),
		log:        zerolog.Nop(),
		defaultTTL: 2 * time.Minute,
		mounted:    make(map[mountable]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Clock returns the store's clock.
func (s *Store) Clock() clockwork.Clock { return s.clock }

// Close unmounts every entry still mounted on the store.
func (s *Store) Close() {
	s.mu.Lock()
	ms := make([]mountable, 0, len(s.mounted))
	for m := range s.mounted {
		ms = append(ms, m)
	}
	s.mounted = make(map[mountable]struct{})
	s.mu.Unlock()
	for _, m := range ms {
		m.Close()
	}
}

func (s *Store) track(m mountable) {
	s.mu.Lock()
	s.mounted[m] = struct{}{}
	s.mu.Unlock()
}

func (s *Store) untrack(m mountable) {
	s.mu.Lock()
	delete(s.mounted, m)
	s.mu.Unlock()
}

// Peek reads the persisted slot for key without mounting anything.
func (s *Store) Peek(ctx context.Context, key string) (domain.CacheEntry, bool) {
	raw, ok, err := s.storage.GetItem(ctx, key)
	if err != nil || !ok {
		return domain.CacheEntry{}, false
	}
	ts, ok, err := s.storage.GetItem(ctx, timestampKey(key))
	if err != nil || !ok {
		return domain.CacheEntry{}, false
	}
	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return domain.CacheEntry{}, false
	}
	return domain.CacheEntry{Key: key, Value: json.RawMessage(raw), StoredAt: time.UnixMilli(ms).UTC()}, true
}

// Invalidate drops the persisted slot for key so the next mount fetches.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if err := s.storage.RemoveItem(ctx, key); err != nil {
		return err
	}
	return s.storage.RemoveItem(ctx, timestampKey(key))
}

func (s *Store) persist(ctx context.Context, key string, v any, at time.Time) {
	buf, err := json.Marshal(v)
	if err != nil {
		s.log.Warn().Err(err).Str("cache_key", key).Msg("cache: encode failed")
		return
	}
	if err := s.storage.SetItem(ctx, key, string(buf)); err != nil {
		s.log.Warn().Err(err).Str("cache_key", key).Msg("cache: persist failed")
		return
	}
	if err := s.storage.SetItem(ctx, timestampKey(key), strconv.FormatInt(at.UnixMilli(), 10)); err != nil {
		s.log.Warn().Err(err).Str("cache_key", key).Msg("cache: persist timestamp failed")
	}
}

func observeFetch(m mode, err error) {
	observability.CacheFetches.WithLabelValues(m.String(), observability.Outcome(err)).Inc()
}
