package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tbourn/rental-console/internal/observability"
)

// Fetcher loads the current value for a key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Snapshot is the state of an entry at one instant.
type Snapshot[T any] struct {
	Data      T
	HasData   bool
	IsLoading bool
	Err       error
	StoredAt  time.Time
}

type mode int

const (
	modeInitial mode = iota
	modeSilent
	modeRefetch
)

func (m mode) String() string {
	switch m {
	case modeSilent:
		return "silent"
	case modeRefetch:
		return "refetch"
	default:
		return "initial"
	}
}

// Entry is one mounted view of a cache key.
type Entry[T any] struct {
	store *Store
	key   string
	ttl   time.Duration
	fetch Fetcher[T]
	ctx   context.Context

	// commit serializes the persist and apply steps of completed fetches so
	// the persisted slot and the snapshot always hold the same winner.
	commit sync.Mutex

	mu        sync.Mutex
	snap      Snapshot[T]
	loads     int // non-silent loads in flight
	closed    bool
	listeners []func(Snapshot[T])

	ready     chan struct{}
	readyOnce sync.Once
	ticker    clockwork.Ticker
	done      chan struct{}
}

// Get mounts key. A persisted value younger than ttl is served immediately
// and no fetch is issued; otherwise a loading fetch starts in the background.
// In both cases a silent refresh runs every ttl until Close.
//
// Cancelling ctx does not abort fetches; only its values are carried over.
func Get[T any](ctx context.Context, s *Store, key string, fetch Fetcher[T], ttl time.Duration) *Entry[T] {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	e := &Entry[T]{
		store: s,
		key:   key,
		ttl:   ttl,
		fetch: fetch,
		ctx:   context.WithoutCancel(ctx),
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}

	if v, at, ok := e.restore(); ok {
		observability.CacheRequests.WithLabelValues("hit").Inc()
		e.snap = Snapshot[T]{Data: v, HasData: true, StoredAt: at}
		e.markReady()
	} else {
		observability.CacheRequests.WithLabelValues("miss").Inc()
		e.snap.IsLoading = true
		e.loads = 1
		go e.load(modeInitial)
	}

	e.ticker = s.clock.NewTicker(ttl)
	go e.refreshLoop()
	s.track(e)
	return e
}

// restore decodes a fresh persisted value, if any.
func (e *Entry[T]) restore() (T, time.Time, bool) {
	var zero T
	ce, ok := e.store.Peek(e.ctx, e.key)
	if !ok || !ce.Fresh(e.store.clock.Now(), e.ttl) {
		return zero, time.Time{}, false
	}
	var v T
	if err := json.Unmarshal(ce.Value, &v); err != nil {
		e.store.log.Warn().Err(err).Str("cache_key", e.key).Msg("cache: discarding undecodable entry")
		return zero, time.Time{}, false
	}
	return v, ce.StoredAt, true
}

func (e *Entry[T]) refreshLoop() {
	for {
		select {
		case <-e.done:
			return
		case <-e.ticker.Chan():
			go e.load(modeSilent)
		}
	}
}

// load runs the fetcher once. Results of the last fetch to complete win;
// each result is persisted, applied and announced before the next commits.
func (e *Entry[T]) load(m mode) {
	v, err := e.fetch(e.ctx)
	observeFetch(m, err)

	e.commit.Lock()
	defer e.commit.Unlock()
	now := e.store.clock.Now()
	if err != nil {
		e.store.log.Error().Err(err).Str("cache_key", e.key).Str("mode", m.String()).Msg("cache: fetch failed")
	} else {
		// Persisting happens even after unmount.
		e.store.persist(e.ctx, e.key, v, now)
	}

	e.mu.Lock()
	if m != modeSilent {
		e.loads--
	}
	if e.closed {
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.snap.Err = err
	} else {
		e.snap.Data = v
		e.snap.HasData = true
		e.snap.Err = nil
		e.snap.StoredAt = now
	}
	e.snap.IsLoading = e.loads > 0
	snap := e.snap
	ls := append([]func(Snapshot[T]){}, e.listeners...)
	e.mu.Unlock()

	for _, fn := range ls {
		fn(snap)
	}
	e.markReady()
}

func (e *Entry[T]) markReady() { e.readyOnce.Do(func() { close(e.ready) }) }

// Key returns the cache key the entry is mounted on.
func (e *Entry[T]) Key() string { return e.key }

// Snapshot returns the current state.
func (e *Entry[T]) Snapshot() Snapshot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// Ready is closed once the entry holds a settled result (data or error) and
// the listeners have seen it.
func (e *Entry[T]) Ready() <-chan struct{} { return e.ready }

// OnChange registers fn to be called after every applied fetch result.
func (e *Entry[T]) OnChange(fn func(Snapshot[T])) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// Refetch runs a loading (non-silent) fetch and blocks until it settles.
func (e *Entry[T]) Refetch() Snapshot[T] {
	e.mu.Lock()
	if e.closed {
		snap := e.snap
		e.mu.Unlock()
		return snap
	}
	e.loads++
	e.snap.IsLoading = true
	e.mu.Unlock()

	e.load(modeRefetch)
	return e.Snapshot()
}

// Close unmounts the entry: the refresh timer stops and results of fetches
// still in flight are persisted but no longer applied.
func (e *Entry[T]) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.ticker.Stop()
	close(e.done)
	e.markReady()
	e.store.untrack(e)
}
