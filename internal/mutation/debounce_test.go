package mutation

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestDebouncer_Window(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	d := NewDebouncer(500*time.Millisecond, clk)

	if !d.Allow("k") {
		t.Fatalf("first call should pass")
	}
	if d.Allow("k") {
		t.Fatalf("immediate repeat should be suppressed")
	}
	clk.Advance(499 * time.Millisecond)
	if d.Allow("k") {
		t.Fatalf("repeat inside the window should be suppressed")
	}
	clk.Advance(time.Millisecond)
	if !d.Allow("k") {
		t.Fatalf("repeat after the window should pass")
	}
	if !d.Allow("other") {
		t.Fatalf("keys must be independent")
	}
}

func TestDebouncer_ZeroWindowAllowsAll(t *testing.T) {
	d := NewDebouncer(0, nil)
	for i := 0; i < 3; i++ {
		if !d.Allow("k") {
			t.Fatalf("zero window must not suppress")
		}
	}
}

func TestDebouncer_EvictsIdleKeys(t *testing.T) {
	clk := clockwork.NewFakeClockAt(t0)
	d := NewDebouncer(time.Second, clk)
	d.Allow("idle")
	clk.Advance(2 * time.Second)
	for i := 0; i < 1000; i++ {
		d.Allow("busy")
	}
	d.mu.Lock()
	_, ok := d.triggers["idle"]
	d.mu.Unlock()
	if ok {
		t.Fatalf("idle key should have been evicted")
	}
}
