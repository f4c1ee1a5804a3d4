package mutation

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

type trigger struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Debouncer suppresses repeats of the same trigger key inside a window. Each
// key gets a one-token bucket refilled once per window.
//
// This type is safe for concurrent use.
type Debouncer struct {
	window time.Duration
	clock  clockwork.Clock

	mu       sync.Mutex
	triggers map[string]*trigger
	lookups  uint64
}

// NewDebouncer returns a Debouncer. A window <= 0 allows everything.
func NewDebouncer(window time.Duration, clock clockwork.Clock) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{window: window, clock: clock, triggers: make(map[string]*trigger)}
}

// Allow reports whether key may fire now, consuming its token if so.
func (d *Debouncer) Allow(key string) bool {
	if d.window <= 0 {
		return true
	}
	now := d.clock.Now()

	d.mu.Lock()
	// Drop idle keys every so often so the map stays bounded.
	d.lookups++
	if d.lookups >= 1000 {
		for k, t := range d.triggers {
			if now.Sub(t.lastSeen) >= d.window {
				delete(d.triggers, k)
			}
		}
		d.lookups = 0
	}

	t, ok := d.triggers[key]
	if !ok {
		t = &trigger{limiter: rate.NewLimiter(rate.Every(d.window), 1)}
		d.triggers[key] = t
	}
	t.lastSeen = now
	lim := t.limiter
	d.mu.Unlock()

	return lim.AllowN(now, 1)
}
