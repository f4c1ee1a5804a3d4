package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type memStorage struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStorage() *memStorage { return &memStorage{m: map[string]string{}} }

func (s *memStorage) GetItem(_ context.Context, k string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	return v, ok, nil
}

func (s *memStorage) SetItem(_ context.Context, k, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = v
	return nil
}

func (s *memStorage) RemoveItem(_ context.Context, k string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, k)
	return nil
}

func (s *memStorage) get(k string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[k]
}

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func waitReady[T any](t *testing.T, e *Entry[T]) {
	t.Helper()
	select {
	case <-e.Ready():
	case <-time.After(2 * time.Second):
		t.Fatalf("entry %q never became ready", e.Key())
	}
}

// counter returns a fetcher yielding the current value of *val and counting calls.
func counter(val *atomic.Value, calls *atomic.Int32) Fetcher[[]string] {
	return func(context.Context) ([]string, error) {
		calls.Add(1)
		return val.Load().([]string), nil
	}
}

func TestScenarioA_FreshHitThenSilentRefresh(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	st := newMemStorage()
	s := NewStore(st, WithClock(clk))
	defer s.Close()

	var val atomic.Value
	var calls atomic.Int32
	val.Store([]string{"101", "102"})
	ttl := 120 * time.Second

	// t=0: miss, loading fetch.
	a := Get(context.Background(), s, KeyRooms(), counter(&val, &calls), ttl)
	waitReady(t, a)
	snap := a.Snapshot()
	if !snap.HasData || snap.IsLoading || len(snap.Data) != 2 || calls.Load() != 1 {
		t.Fatalf("initial snapshot unexpected: %+v calls=%d", snap, calls.Load())
	}

	var sawLoading atomic.Bool
	a.OnChange(func(s Snapshot[[]string]) {
		if s.IsLoading {
			sawLoading.Store(true)
		}
	})

	// t=60s: a second mount is served from storage without fetching.
	clk.Advance(60 * time.Second)
	b := Get(context.Background(), s, KeyRooms(), counter(&val, &calls), ttl)
	if snap := b.Snapshot(); !snap.HasData || snap.IsLoading || len(snap.Data) != 2 {
		t.Fatalf("fresh hit should populate synchronously: %+v", snap)
	}
	select {
	case <-b.Ready():
	default:
		t.Fatalf("fresh hit should be ready immediately")
	}
	b.Close()
	if calls.Load() != 1 {
		t.Fatalf("fresh hit must not fetch; calls=%d", calls.Load())
	}

	// t=130s: the refresh at t=120s has replaced the data silently.
	val.Store([]string{"101", "102", "103"})
	clk.Advance(70 * time.Second)
	eventually(t, func() bool { return len(a.Snapshot().Data) == 3 })
	if calls.Load() != 2 {
		t.Fatalf("expected exactly one silent refresh; calls=%d", calls.Load())
	}
	if a.Snapshot().IsLoading || sawLoading.Load() {
		t.Fatalf("silent refresh must never report loading")
	}
	if st.get(timestampKey(KeyRooms())) != strconv.FormatInt(t0.Add(130*time.Second).UnixMilli(), 10) {
		t.Fatalf("timestamp not persisted at refresh time: %q", st.get(timestampKey(KeyRooms())))
	}
}

func TestGet_PersistsJSONAndTimestamp(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	st := newMemStorage()
	s := NewStore(st, WithClock(clk))
	defer s.Close()

	e := Get(context.Background(), s, "k", func(context.Context) (map[string]int, error) {
		return map[string]int{"a": 1}, nil
	}, time.Minute)
	waitReady(t, e)

	if got := st.get("k"); got != `{"a":1}` {
		t.Fatalf("persisted value = %q", got)
	}
	if got := st.get("k_timestamp"); got != strconv.FormatInt(t0.UnixMilli(), 10) {
		t.Fatalf("persisted timestamp = %q", got)
	}
	ce, ok := s.Peek(context.Background(), "k")
	if !ok || !ce.StoredAt.Equal(t0) {
		t.Fatalf("Peek = %+v, %v", ce, ok)
	}
}

func TestGet_StaleOrUndecodableEntryFetches(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	st := newMemStorage()
	s := NewStore(st, WithClock(clk))
	defer s.Close()

	var calls atomic.Int32
	fetch := func(context.Context) (int, error) { calls.Add(1); return 7, nil }

	// Exactly ttl old is stale.
	_ = st.SetItem(context.Background(), "n", "3")
	_ = st.SetItem(context.Background(), "n_timestamp", strconv.FormatInt(t0.Add(-time.Minute).UnixMilli(), 10))
	e := Get(context.Background(), s, "n", fetch, time.Minute)
	if !e.Snapshot().IsLoading {
		t.Fatalf("stale entry should start loading")
	}
	waitReady(t, e)
	if e.Snapshot().Data != 7 {
		t.Fatalf("data = %d; want 7", e.Snapshot().Data)
	}

	_ = st.SetItem(context.Background(), "bad", "{not json")
	_ = st.SetItem(context.Background(), "bad_timestamp", strconv.FormatInt(t0.UnixMilli(), 10))
	e2 := Get(context.Background(), s, "bad", fetch, time.Minute)
	waitReady(t, e2)
	if e2.Snapshot().Data != 7 || calls.Load() != 2 {
		t.Fatalf("undecodable entry should be refetched; calls=%d", calls.Load())
	}
}

func TestRefetch_ErrorKeepsLastGoodData(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	s := NewStore(newMemStorage(), WithClock(clk))
	defer s.Close()

	boom := errors.New("boom")
	var fail atomic.Bool
	e := Get(context.Background(), s, "x", func(context.Context) (string, error) {
		if fail.Load() {
			return "", boom
		}
		return "good", nil
	}, time.Minute)
	waitReady(t, e)

	fail.Store(true)
	snap := e.Refetch()
	if !errors.Is(snap.Err, boom) || snap.Data != "good" || !snap.HasData || snap.IsLoading {
		t.Fatalf("snapshot after failed refetch unexpected: %+v", snap)
	}

	fail.Store(false)
	if snap := e.Refetch(); snap.Err != nil || snap.Data != "good" {
		t.Fatalf("successful refetch should clear the error: %+v", snap)
	}
}

func TestInitialFetchError_NotReturnedButRecorded(t *testing.T) {
	s := NewStore(newMemStorage(), WithClock(clockwork.NewFakeClockAt(t0)))
	defer s.Close()

	e := Get(context.Background(), s, "x", func(context.Context) (int, error) {
		return 0, errors.New("down")
	}, time.Minute)
	waitReady(t, e)
	snap := e.Snapshot()
	if snap.Err == nil || snap.HasData || snap.IsLoading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestLastCompletedFetchWins(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	st := newMemStorage()
	s := NewStore(st, WithClock(clk))
	defer s.Close()

	gates := make(chan chan string, 3)
	e := Get(context.Background(), s, "k", func(context.Context) (string, error) {
		g := make(chan string)
		gates <- g
		return <-g, nil
	}, time.Hour)

	initial := <-gates
	initial <- "initial"
	waitReady(t, e)

	done := make(chan struct{}, 2)
	go func() { e.Refetch(); done <- struct{}{} }()
	first := <-gates
	go func() { e.Refetch(); done <- struct{}{} }()
	second := <-gates

	second <- "second"
	<-done
	if e.Snapshot().Data != "second" || !e.Snapshot().IsLoading {
		t.Fatalf("after second completes: %+v", e.Snapshot())
	}
	first <- "first"
	<-done
	if snap := e.Snapshot(); snap.Data != "first" || snap.IsLoading {
		t.Fatalf("the last fetch to complete must win: %+v", snap)
	}
	if st.get("k") != `"first"` {
		t.Fatalf("persisted = %q", st.get("k"))
	}
}

// stallStorage blocks the first timestamp write made after arm is set.
type stallStorage struct {
	*memStorage
	arm     atomic.Bool
	stalled chan struct{}
	release chan struct{}
}

func (s *stallStorage) SetItem(ctx context.Context, k, v string) error {
	if k == timestampKey("k") && s.arm.CompareAndSwap(true, false) {
		close(s.stalled)
		<-s.release
	}
	return s.memStorage.SetItem(ctx, k, v)
}

func TestOverlappingFetches_PersistAndApplyTogether(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	st := &stallStorage{memStorage: newMemStorage(), stalled: make(chan struct{}), release: make(chan struct{})}
	s := NewStore(st, WithClock(clk))
	defer s.Close()

	gates := make(chan chan string, 3)
	e := Get(context.Background(), s, "k", func(context.Context) (string, error) {
		g := make(chan string)
		gates <- g
		return <-g, nil
	}, time.Hour)
	(<-gates) <- "initial"
	waitReady(t, e)

	st.arm.Store(true)
	done := make(chan struct{}, 2)
	go func() { e.Refetch(); done <- struct{}{} }()
	(<-gates) <- "A"
	<-st.stalled

	go func() { e.Refetch(); done <- struct{}{} }()
	(<-gates) <- "B"
	close(st.release)
	<-done
	<-done

	snap := e.Snapshot()
	if snap.Data != "B" || st.get("k") != `"B"` {
		t.Fatalf("memory=%q persisted=%q; want both to hold B", snap.Data, st.get("k"))
	}
	if ts := st.get(timestampKey("k")); ts != strconv.FormatInt(snap.StoredAt.UnixMilli(), 10) {
		t.Fatalf("persisted timestamp %s does not match snapshot %v", ts, snap.StoredAt)
	}
}

func TestClose_StopsApplyingButStillPersists(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	st := newMemStorage()
	s := NewStore(st, WithClock(clk))

	release := make(chan struct{})
	var calls atomic.Int32
	e := Get(context.Background(), s, "k", func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}, time.Minute)

	e.Close()
	close(release)
	eventually(t, func() bool { return st.get("k") == "42" })
	if snap := e.Snapshot(); snap.HasData {
		t.Fatalf("unmounted entry must not apply results: %+v", snap)
	}

	// No refresh after unmount.
	clk.Advance(5 * time.Minute)
	time.Sleep(10 * time.Millisecond)
	if calls.Load() != 1 {
		t.Fatalf("refresh ran after Close; calls=%d", calls.Load())
	}
	e.Close() // idempotent
}

func TestStore_CloseUnmountsAll_AndInvalidate(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	st := newMemStorage()
	s := NewStore(st, WithClock(clk), WithDefaultTTL(time.Second))

	e := Get(context.Background(), s, "k", func(context.Context) (int, error) { return 1, nil }, 0)
	waitReady(t, e)
	if e.ttl != time.Second {
		t.Fatalf("default ttl not applied: %v", e.ttl)
	}
	s.Close()
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if !closed {
		t.Fatalf("Store.Close should unmount entries")
	}

	if err := s.Invalidate(context.Background(), "k"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := s.Peek(context.Background(), "k"); ok {
		t.Fatalf("slot should be gone after Invalidate")
	}
}

func TestKeysAreDeterministic(t *testing.T) {
	if KeyRoomTickets("101") != KeyRoomTickets("101") || KeyRoomTickets("101") == KeyRoomTickets("102") {
		t.Fatalf("room keys not deterministic")
	}
	if KeyTickets("", "") != "tickets:all" || KeyTickets("2024-01-01", "2024-01-31") != "tickets:all:2024-01-01:2024-01-31" {
		t.Fatalf("range keys unexpected")
	}
	if KeyTickets("a", "") == KeyTickets("", "a") {
		t.Fatalf("range key collision")
	}
}
