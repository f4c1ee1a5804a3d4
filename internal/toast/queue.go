// Package toast holds the per-session queue of short-lived user messages.
package toast

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/observability"
)

// Queue keeps toasts in insertion order and removes each one when its
// lifetime ends. Safe for concurrent use.
type Queue struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu     sync.Mutex
	items  []domain.Toast
	timers map[string]clockwork.Timer
	closed bool
}

// NewQueue returns a queue whose toasts live for ttl unless pushed with an
// explicit lifetime.
func NewQueue(clock clockwork.Clock, ttl time.Duration) *Queue {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Queue{clock: clock, ttl: ttl, timers: make(map[string]clockwork.Timer)}
}

// Push enqueues a toast with the queue's default lifetime.
func (q *Queue) Push(message string, kind domain.ToastKind) domain.Toast {
	return q.PushFor(message, kind, q.ttl)
}

// PushFor enqueues a toast that removes itself after d.
func (q *Queue) PushFor(message string, kind domain.ToastKind, d time.Duration) domain.Toast {
	now := q.clock.Now()
	t := domain.Toast{
		ID:        "toast-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8],
		Message:   message,
		Kind:      kind,
		ExpiresAt: now.Add(d),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return t
	}
	q.items = append(q.items, t)
	q.mu.Unlock()

	// A zero lifetime can fire before the timer is recorded below.
	timer := q.clock.AfterFunc(d, func() { q.remove(t.ID) })

	q.mu.Lock()
	if q.has(t.ID) {
		q.timers[t.ID] = timer
	}
	q.mu.Unlock()

	observability.Toasts.WithLabelValues(string(kind)).Inc()
	return t
}

// Dismiss removes a toast before it expires. It reports whether id was present.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if tm, ok := q.timers[id]; ok {
		tm.Stop()
	}
	return q.removeLocked(id)
}

// List returns the active toasts, oldest first.
func (q *Queue) List() []domain.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Toast(nil), q.items...)
}

// Len returns the number of active toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops every pending removal and drops all toasts.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, tm := range q.timers {
		tm.Stop()
	}
	q.timers = map[string]clockwork.Timer{}
	q.items = nil
	q.closed = true
}

func (q *Queue) remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(id)
}

func (q *Queue) removeLocked(id string) bool {
	delete(q.timers, id)
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) has(id string) bool {
	for _, t := range q.items {
		if t.ID == id {
			return true
		}
	}
	return false
}
