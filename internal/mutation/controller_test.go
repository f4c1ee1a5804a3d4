package mutation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tbourn/rental-console/internal/domain"
)

type stubToaster struct {
	mu     sync.Mutex
	toasts []domain.Toast
}

func (s *stubToaster) PushFor(msg string, kind domain.ToastKind, d time.Duration) domain.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.Toast{ID: "t", Message: msg, Kind: kind}
	s.toasts = append(s.toasts, t)
	return t
}

func (s *stubToaster) kinds() []domain.ToastKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ToastKind
	for _, t := range s.toasts {
		out = append(out, t.Kind)
	}
	return out
}

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func ticketID(t domain.Ticket) string { return t.ID }

func newTicketController(t *testing.T, window time.Duration, seed ...domain.Ticket) (*Controller[domain.Ticket], *stubToaster, *clockwork.FakeClock) {
	t.Helper()
	clk := clockwork.NewFakeClockAt(t0)
	items := NewCollection(ticketID)
	items.Replace(seed)
	toasts := &stubToaster{}
	return NewController(items, toasts, Config{Clock: clk, Debounce: window}), toasts, clk
}

func setStatus(s string) func(domain.Ticket) domain.Ticket {
	return func(t domain.Ticket) domain.Ticket { t.Status = s; return t }
}

func TestScenarioB_RollbackOnRejectedWrite(t *testing.T) {
	c, toasts, _ := newTicketController(t, 500*time.Millisecond, domain.Ticket{ID: "T1", Status: "Open"})

	var sawOptimistic bool
	boom := errors.New("503")
	_, err := c.Mutate(context.Background(), Mutation[domain.Ticket]{
		Op:       "status",
		TargetID: "T1",
		Apply:    setStatus("Closed"),
		Write: func(_ context.Context, next domain.Ticket) error {
			cur, _ := c.Items().Get("T1")
			sawOptimistic = cur.Status == "Closed" && next.Status == "Closed"
			return boom
		},
		FailureMessage: "Failed to update status",
	})

	var me *Error
	if !errors.As(err, &me) || !errors.Is(err, boom) || me.TargetID != "T1" || me.Op != "status" {
		t.Fatalf("expected *Error wrapping boom, got %v", err)
	}
	if !sawOptimistic {
		t.Fatalf("local state should be optimistic while the write is in flight")
	}
	if got, _ := c.Items().Get("T1"); got.Status != "Open" {
		t.Fatalf("status after rollback = %q; want Open", got.Status)
	}
	if k := toasts.kinds(); len(k) != 1 || k[0] != domain.ToastError {
		t.Fatalf("expected exactly one error toast, got %v", k)
	}
}

func TestMutate_SuccessRunsSideEffectsBestEffort(t *testing.T) {
	c, toasts, _ := newTicketController(t, 0, domain.Ticket{ID: "T2", ParkingStatus: ""})

	var logged, reconciled bool
	next, err := c.Mutate(context.Background(), Mutation[domain.Ticket]{
		Op:       "parking",
		TargetID: "T2",
		Apply:    func(t domain.Ticket) domain.Ticket { t.ParkingStatus = "In"; return t },
		Write:    func(context.Context, domain.Ticket) error { return nil },
		SideEffects: []SideEffect[domain.Ticket]{
			func(context.Context, domain.Ticket) error { return errors.New("log down") },
			func(context.Context, domain.Ticket) error { logged = true; return nil },
		},
		SuccessMessage: "Vehicle checked in",
		Reconcile:      func(context.Context) { reconciled = true },
	})
	if err != nil {
		t.Fatalf("side-effect failure must not fail the mutation: %v", err)
	}
	if next.ParkingStatus != "In" || !logged || !reconciled {
		t.Fatalf("next=%+v logged=%v reconciled=%v", next, logged, reconciled)
	}
	if got, _ := c.Items().Get("T2"); got.ParkingStatus != "In" {
		t.Fatalf("side-effect failure rolled back the record: %+v", got)
	}
	if k := toasts.kinds(); len(k) != 1 || k[0] != domain.ToastSuccess {
		t.Fatalf("toasts = %v", k)
	}
}

func TestMutate_DebounceSuppressesDuplicates(t *testing.T) {
	c, _, clk := newTicketController(t, 500*time.Millisecond, domain.Ticket{ID: "T3", Status: "Open"})
	var writes int
	m := Mutation[domain.Ticket]{
		Op: "status", TargetID: "T3", Apply: setStatus("Approved"),
		Write: func(context.Context, domain.Ticket) error { writes++; return nil },
	}

	if _, err := c.Mutate(context.Background(), m); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	clk.Advance(200 * time.Millisecond)
	if _, err := c.Mutate(context.Background(), m); !errors.Is(err, ErrSuppressed) {
		t.Fatalf("second trigger inside window: want ErrSuppressed, got %v", err)
	}
	// Different target is independent.
	c.Items().Prepend(domain.Ticket{ID: "T4"})
	m4 := m
	m4.TargetID = "T4"
	if _, err := c.Mutate(context.Background(), m4); err != nil {
		t.Fatalf("other target: %v", err)
	}
	clk.Advance(400 * time.Millisecond)
	if _, err := c.Mutate(context.Background(), m); err != nil {
		t.Fatalf("after window: %v", err)
	}
	if writes != 3 {
		t.Fatalf("writes = %d; want 3", writes)
	}
}

func TestMutate_DebounceOnlyIdenticalPayloads(t *testing.T) {
	c, _, clk := newTicketController(t, 500*time.Millisecond, domain.Ticket{ID: "T5", Status: "Open"})
	status := func(s string) Mutation[domain.Ticket] {
		return Mutation[domain.Ticket]{
			Op: "status", TargetID: "T5", Payload: s, Apply: setStatus(s),
			Write: func(context.Context, domain.Ticket) error { return nil },
		}
	}

	if _, err := c.Mutate(context.Background(), status("Closed")); err != nil {
		t.Fatalf("close: %v", err)
	}
	clk.Advance(100 * time.Millisecond)
	if _, err := c.Mutate(context.Background(), status("Open")); err != nil {
		t.Fatalf("reopen inside the window is a different edit: %v", err)
	}
	if _, err := c.Mutate(context.Background(), status("Open")); !errors.Is(err, ErrSuppressed) {
		t.Fatalf("repeated reopen: want ErrSuppressed, got %v", err)
	}
	if got, _ := c.Items().Get("T5"); got.Status != "Open" {
		t.Fatalf("status = %q; want Open", got.Status)
	}
}

func TestMutate_RollbackKeepsRecordReplacedDuringWrite(t *testing.T) {
	c, toasts, _ := newTicketController(t, 0, domain.Ticket{ID: "T6", Status: "Open", Priority: "Low"})

	_, err := c.Mutate(context.Background(), Mutation[domain.Ticket]{
		Op: "status", TargetID: "T6", Apply: setStatus("Closed"),
		Write: func(context.Context, domain.Ticket) error {
			// A refresh lands while the write is in flight.
			c.Items().Replace([]domain.Ticket{{ID: "T6", Status: "Approved", Priority: "High"}})
			return errors.New("timeout")
		},
	})
	var me *Error
	if !errors.As(err, &me) {
		t.Fatalf("err = %v; want *Error", err)
	}
	if got, _ := c.Items().Get("T6"); got.Status != "Approved" || got.Priority != "High" {
		t.Fatalf("newer record overwritten by the pre-edit snapshot: %+v", got)
	}
	if k := toasts.kinds(); len(k) != 1 || k[0] != domain.ToastError {
		t.Fatalf("toasts = %v", k)
	}
}

func TestMutate_UnknownTarget(t *testing.T) {
	c, toasts, _ := newTicketController(t, 0)
	_, err := c.Mutate(context.Background(), Mutation[domain.Ticket]{
		Op: "status", TargetID: "nope", Apply: setStatus("Closed"),
		Write: func(context.Context, domain.Ticket) error { t.Fatal("write must not run"); return nil },
	})
	if !errors.Is(err, ErrNotFound) || len(toasts.kinds()) != 0 {
		t.Fatalf("err=%v toasts=%v", err, toasts.kinds())
	}
}

func withID(t domain.Ticket, id string) domain.Ticket { t.ID = id; return t }

func TestCreate_InterimReplacedByConfirmed(t *testing.T) {
	c, toasts, _ := newTicketController(t, 0, domain.Ticket{ID: "T1"})

	var interim string
	got, err := c.Create(context.Background(), Creation[domain.Ticket]{
		Op:     "create",
		Draft:  domain.Ticket{Title: "Plumber"},
		WithID: withID,
		Write: func(_ context.Context, d domain.Ticket) (domain.Ticket, error) {
			interim = d.ID
			if first := c.Items().Items()[0]; first.ID != interim {
				t.Errorf("draft should be visible first under its interim id, got %q", first.ID)
			}
			d.ID, d.TeableID = "T-42", "rec42"
			return d, nil
		},
		SuccessMessage: "Ticket created",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(interim, "tmp-") || got.ID != "T-42" {
		t.Fatalf("interim=%q got=%+v", interim, got)
	}
	items := c.Items().Items()
	if len(items) != 2 || items[0].ID != "T-42" || items[1].ID != "T1" {
		t.Fatalf("items = %+v", items)
	}
	if _, ok := c.Items().Get(interim); ok {
		t.Fatalf("interim record should be gone")
	}
	if k := toasts.kinds(); len(k) != 1 || k[0] != domain.ToastSuccess {
		t.Fatalf("toasts = %v", k)
	}
}

func TestCreate_FailureRemovesInterim(t *testing.T) {
	c, toasts, _ := newTicketController(t, 0, domain.Ticket{ID: "T1"})
	_, err := c.Create(context.Background(), Creation[domain.Ticket]{
		Op: "create", Draft: domain.Ticket{Title: "x"}, WithID: withID,
		Write: func(context.Context, domain.Ticket) (domain.Ticket, error) {
			return domain.Ticket{}, errors.New("400")
		},
	})
	var me *Error
	if !errors.As(err, &me) || !strings.HasPrefix(me.TargetID, "tmp-") {
		t.Fatalf("err = %v", err)
	}
	if items := c.Items().Items(); len(items) != 1 || items[0].ID != "T1" {
		t.Fatalf("interim not removed: %+v", items)
	}
	if k := toasts.kinds(); len(k) != 1 || k[0] != domain.ToastError {
		t.Fatalf("toasts = %v", k)
	}
}

func TestCreate_ConfirmedAfterRefreshDroppedInterim(t *testing.T) {
	c, _, _ := newTicketController(t, 0)
	_, err := c.Create(context.Background(), Creation[domain.Ticket]{
		Op: "create", Draft: domain.Ticket{}, WithID: withID,
		Write: func(_ context.Context, d domain.Ticket) (domain.Ticket, error) {
			// A refresh lands mid-flight and already contains the new record.
			c.Items().Replace([]domain.Ticket{{ID: "T-9"}})
			d.ID = "T-9"
			return d, nil
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n := c.Items().Len(); n != 1 {
		t.Fatalf("confirmed record duplicated: %+v", c.Items().Items())
	}
}

func TestRollbackRoundTripIdentity(t *testing.T) {
	orig := domain.Ticket{ID: "T5", Status: "Open", Priority: "High", Agent: "a", CheckIn: "x"}
	patches := []func(domain.Ticket) domain.Ticket{
		setStatus("Closed"),
		func(t domain.Ticket) domain.Ticket { t.Priority = "Low"; t.Agent = ""; return t },
		func(t domain.Ticket) domain.Ticket { return domain.Ticket{ID: t.ID} },
	}
	for i, p := range patches {
		c, _, _ := newTicketController(t, 0, orig)
		_, _ = c.Mutate(context.Background(), Mutation[domain.Ticket]{
			Op: "p", TargetID: "T5", Apply: p,
			Write: func(context.Context, domain.Ticket) error { return errors.New("x") },
		})
		if got, _ := c.Items().Get("T5"); got != orig {
			t.Fatalf("patch %d: after rollback %+v; want %+v", i, got, orig)
		}
	}
}
