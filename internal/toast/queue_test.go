package toast

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tbourn/rental-console/internal/domain"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// eventually polls cond; clock callbacks run on their own goroutines.
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

func TestQueue_FIFOAndExpiry(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	q := NewQueue(clk, 5*time.Second)
	defer q.Close()

	a := q.Push("first", domain.ToastInfo)
	clk.Advance(2 * time.Second)
	b := q.Push("second", domain.ToastError)

	if !strings.HasPrefix(a.ID, "toast-") || a.ID == b.ID {
		t.Fatalf("ids unexpected: %q %q", a.ID, b.ID)
	}
	if !a.ExpiresAt.Equal(t0.Add(5 * time.Second)) {
		t.Fatalf("expiresAt = %v", a.ExpiresAt)
	}
	got := q.List()
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("list not FIFO: %+v", got)
	}

	clk.Advance(3 * time.Second) // t=5s: first expires
	eventually(t, func() bool { return q.Len() == 1 })
	if got := q.List(); got[0].ID != b.ID {
		t.Fatalf("after first expiry: %+v", got)
	}

	clk.Advance(2 * time.Second) // t=7s: second expires
	eventually(t, func() bool { return q.Len() == 0 })
}

func TestQueue_DismissAndPushFor(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	q := NewQueue(clk, 5*time.Second)
	defer q.Close()

	a := q.PushFor("saved", domain.ToastSuccess, 3*time.Second)
	b := q.Push("other", domain.ToastInfo)
	if !q.Dismiss(a.ID) {
		t.Fatalf("Dismiss should report presence")
	}
	if q.Dismiss(a.ID) {
		t.Fatalf("second Dismiss should report absence")
	}
	if got := q.List(); len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("list after dismiss: %+v", got)
	}

	clk.Advance(3 * time.Second)
	time.Sleep(10 * time.Millisecond)
	if q.Len() != 1 {
		t.Fatalf("stopped timer must not remove anything else")
	}
}

func TestQueue_ZeroLifetimeAndClose(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	q := NewQueue(clk, 5*time.Second)

	q.PushFor("gone", domain.ToastInfo, 0)
	eventually(t, func() bool { return q.Len() == 0 })

	q.Push("x", domain.ToastInfo)
	q.Close()
	if q.Len() != 0 {
		t.Fatalf("Close should drop toasts")
	}
	q.Push("after close", domain.ToastInfo)
	if q.Len() != 0 {
		t.Fatalf("Push after Close should be ignored")
	}
}
