package notify

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tbourn/rental-console/internal/domain"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type stubFeed struct {
	mu    sync.Mutex
	items []domain.NotificationItem
	err   error
	calls int
}

func (f *stubFeed) set(err error, items ...domain.NotificationItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items, f.err = items, err
}

func (f *stubFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *stubFeed) FetchActivities(context.Context) ([]domain.NotificationItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.NotificationItem(nil), f.items...), nil
}

type stubToaster struct {
	mu       sync.Mutex
	messages []string
	ttl      time.Duration
}

func (s *stubToaster) PushFor(msg string, kind domain.ToastKind, d time.Duration) domain.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.ttl = d
	return domain.Toast{Message: msg, Kind: kind}
}

func (s *stubToaster) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

type memStorage struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *memStorage) GetItem(_ context.Context, k string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	return v, ok, nil
}

func (s *memStorage) SetItem(_ context.Context, k, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]string{}
	}
	s.m[k] = v
	return nil
}

type stubNav struct{ room, ticket string }

func (n *stubNav) Jump(room, ticket string) error {
	n.room, n.ticket = room, ticket
	return nil
}

type fixture struct {
	p      *Poller
	feed   *stubFeed
	toasts *stubToaster
	store  *memStorage
	nav    *stubNav
	clk    *clockwork.FakeClock
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		feed:   &stubFeed{},
		toasts: &stubToaster{},
		store:  &memStorage{},
		nav:    &stubNav{},
		clk:    clockwork.NewFakeClockAt(t0),
	}
	cfg.Clock = f.clk
	if cfg.User.Username == "" {
		cfg.User = domain.User{Username: "alice", Role: "frontdesk"}
	}
	f.p = NewPoller(f.feed, f.toasts, f.store, f.nav, cfg)
	return f
}

func item(id string, at time.Time, user string) domain.NotificationItem {
	return domain.NotificationItem{ID: id, Apartment: "204", TicketID: "T-" + id, TicketType: "Visit", Action: "status changed", Username: user, CreatedTime: at}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPoll_NoToastForHistoricalActivity(t *testing.T) {
	f := newFixture(t, Config{})
	f.feed.set(nil, item("1", t0.Add(-time.Hour), "bob"), item("2", t0.Add(-time.Minute), "bob"))

	if err := f.p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n := f.toasts.count(); n != 0 {
		t.Fatalf("first poll of old items raised %d toasts", n)
	}
	if got := f.p.Items(); len(got) != 2 || got[0].ID != "2" {
		t.Fatalf("items should be listed newest first: %+v", got)
	}
}

func TestPoll_ToastsNewActivityOnce(t *testing.T) {
	f := newFixture(t, Config{ToastTTL: 5 * time.Second})
	f.feed.set(nil, item("old", t0.Add(-time.Hour), "bob"))
	_ = f.p.Poll(context.Background())

	f.feed.set(nil, item("old", t0.Add(-time.Hour), "bob"), item("new", t0.Add(30*time.Second), "bob"))
	_ = f.p.Poll(context.Background())
	_ = f.p.Poll(context.Background())

	if n := f.toasts.count(); n != 1 {
		t.Fatalf("toasts = %d; want exactly one", n)
	}
	if got := f.toasts.messages[0]; got != "Apt 204 · Visit T-new · Status Changed" {
		t.Fatalf("message = %q", got)
	}
	if f.toasts.ttl != 5*time.Second {
		t.Fatalf("toast ttl = %v", f.toasts.ttl)
	}
}

func TestPoll_DuplicateIDsListedAndToastedOnce(t *testing.T) {
	f := newFixture(t, Config{})
	dup := item("n1", t0.Add(time.Minute), "bob")
	f.feed.set(nil, dup, item("n2", t0.Add(-time.Minute), "bob"), dup)

	if err := f.p.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got := f.p.Items(); len(got) != 2 || got[0].ID != "n1" || got[1].ID != "n2" {
		t.Fatalf("items = %+v; want n1 once, then n2", got)
	}
	if n := f.toasts.count(); n != 1 {
		t.Fatalf("toasts = %d; want 1", n)
	}
}

func TestPoll_FiltersSelfAuthored(t *testing.T) {
	f := newFixture(t, Config{})
	f.feed.set(nil, item("mine", t0.Add(time.Second), " Alice "), item("theirs", t0.Add(2*time.Second), "bob"))
	_ = f.p.Poll(context.Background())

	if got := f.p.Items(); len(got) != 1 || got[0].ID != "theirs" {
		t.Fatalf("self-authored item not filtered: %+v", got)
	}
	if f.toasts.count() != 1 {
		t.Fatalf("toasts = %d", f.toasts.count())
	}
}

func TestPoll_RoleNotEligibleListsWithoutToast(t *testing.T) {
	f := newFixture(t, Config{ToastRoles: []string{"manager"}})
	f.feed.set(nil, item("1", t0.Add(time.Second), "bob"))
	_ = f.p.Poll(context.Background())
	if f.toasts.count() != 0 || len(f.p.Items()) != 1 {
		t.Fatalf("toasts=%d items=%d", f.toasts.count(), len(f.p.Items()))
	}
}

func TestPoll_FailureKeepsState(t *testing.T) {
	f := newFixture(t, Config{})
	f.feed.set(nil, item("1", t0.Add(-time.Minute), "bob"))
	_ = f.p.Poll(context.Background())

	f.feed.set(errors.New("502"))
	if err := f.p.Poll(context.Background()); err == nil {
		t.Fatalf("expected the fetch error to be reported")
	}
	if got := f.p.Items(); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("failed poll changed items: %+v", got)
	}
}

func TestPoll_LimitKeepsNewest(t *testing.T) {
	f := newFixture(t, Config{Limit: 2})
	f.feed.set(nil, item("a", t0.Add(-3*time.Minute), "x"), item("b", t0.Add(-1*time.Minute), "x"), item("c", t0.Add(-2*time.Minute), "x"))
	_ = f.p.Poll(context.Background())
	got := f.p.Items()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("items = %+v", got)
	}
}

func TestUnread_WatermarkIndependentOfToasts(t *testing.T) {
	f := newFixture(t, Config{})
	f.feed.set(nil, item("1", t0.Add(-time.Minute), "bob"))
	_ = f.p.Poll(context.Background())

	if !f.p.HasUnread() {
		t.Fatalf("old items are unread until the panel is opened")
	}

	f.clk.Advance(time.Minute)
	f.p.OpenPanel(context.Background())
	if f.p.HasUnread() {
		t.Fatalf("opening the panel should clear the indicator")
	}
	raw, ok, _ := f.store.GetItem(context.Background(), KeyLastRead)
	if !ok || raw != strconv.FormatInt(t0.Add(time.Minute).UnixMilli(), 10) {
		t.Fatalf("watermark = %q %v", raw, ok)
	}

	// A new poller over the same durable storage picks the watermark up.
	g := NewPoller(f.feed, f.toasts, f.store, f.nav, Config{Clock: f.clk})
	if err := g.LoadWatermark(context.Background()); err != nil {
		t.Fatalf("LoadWatermark: %v", err)
	}
	_ = g.Poll(context.Background())
	if g.HasUnread() {
		t.Fatalf("persisted watermark was not honoured")
	}
}

func TestLoadWatermark_Invalid(t *testing.T) {
	f := newFixture(t, Config{})
	_ = f.store.SetItem(context.Background(), KeyLastRead, "soon")
	if err := f.p.LoadWatermark(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSelect_JumpsToItem(t *testing.T) {
	f := newFixture(t, Config{})
	f.feed.set(nil, item("7", t0.Add(-time.Minute), "bob"))
	_ = f.p.Poll(context.Background())

	if err := f.p.Select("7"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if f.nav.room != "204" || f.nav.ticket != "T-7" {
		t.Fatalf("jump = %+v", f.nav)
	}
	if err := f.p.Select("missing"); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("want ErrUnknownItem, got %v", err)
	}
}

func TestRun_CadenceFollowsPanel(t *testing.T) {
	f := newFixture(t, Config{FastInterval: 10 * time.Second, SlowInterval: 60 * time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { f.p.Run(ctx); close(done) }()
	defer func() { cancel(); <-done }()

	wait := func() {
		t.Helper()
		wctx, wcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer wcancel()
		if err := f.clk.BlockUntilContext(wctx, 1); err != nil {
			t.Fatalf("poll timer not armed: %v", err)
		}
	}

	wait()
	if f.feed.count() != 1 {
		t.Fatalf("Run should poll immediately, calls = %d", f.feed.count())
	}

	f.clk.Advance(59 * time.Second)
	if f.feed.count() != 1 {
		t.Fatalf("slow cadence fired early")
	}
	f.clk.Advance(time.Second)
	eventually(t, func() bool { return f.feed.count() == 2 })

	f.p.OpenPanel(context.Background())
	eventually(t, func() bool { return f.feed.count() == 3 })
	wait()
	if f.p.Interval() != 10*time.Second {
		t.Fatalf("interval = %v", f.p.Interval())
	}
	f.clk.Advance(10 * time.Second)
	eventually(t, func() bool { return f.feed.count() == 4 })
}
