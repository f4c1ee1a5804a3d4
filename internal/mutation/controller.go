// Package mutation applies edits to in-memory collections optimistically:
// the local record changes first, the remote write follows, and a failed
// write restores the record captured before the edit.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/observability"
)

var (
	// ErrSuppressed is returned when a duplicate trigger arrives inside the
	// debounce window. Nothing was changed.
	ErrSuppressed = errors.New("mutation: duplicate trigger suppressed")

	// ErrNotFound is returned when the target record is not in the collection.
	ErrNotFound = errors.New("mutation: target not found")
)

// Error is a failed remote write. The local record has already been rolled
// back when it is returned.
type Error struct {
	Op       string
	TargetID string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("mutation %s on %s: %v", e.Op, e.TargetID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Toaster shows user-visible results.
type Toaster interface {
	PushFor(message string, kind domain.ToastKind, d time.Duration) domain.Toast
}

// SideEffect is a best-effort write that accompanies a mutation (audit or
// parking log). Its failure is logged and otherwise ignored.
type SideEffect[T any] func(ctx context.Context, next T) error

// Mutation describes one optimistic edit of an existing record.
type Mutation[T any] struct {
	Op       string
	TargetID string
	// Payload identifies what the edit sets. Only triggers with the same
	// Op, TargetID and Payload count as duplicates.
	Payload string
	Apply   func(T) T
	Write   func(ctx context.Context, next T) error

	SideEffects    []SideEffect[T]
	SuccessMessage string // empty = no success toast
	FailureMessage string

	// Reconcile runs after a successful write, e.g. to reload server-computed fields.
	Reconcile func(ctx context.Context)
}

// Creation describes one optimistic insert.
type Creation[T any] struct {
	Op     string
	Draft  T
	WithID func(T, string) T
	// Write persists the draft and returns the record as confirmed by the store.
	Write func(ctx context.Context, draft T) (T, error)

	SideEffects    []SideEffect[T]
	SuccessMessage string
	FailureMessage string
}

// Config tunes a Controller. Zero values pick defaults.
type Config struct {
	Clock    clockwork.Clock
	Logger   *zerolog.Logger
	Debounce time.Duration // duplicate-trigger window
	ToastTTL time.Duration
}

// Controller runs optimistic mutations against one collection.
type Controller[T any] struct {
	items    *Collection[T]
	toasts   Toaster
	debounce *Debouncer
	clock    clockwork.Clock
	log      zerolog.Logger
	toastTTL time.Duration
}

// NewController wires a controller to items and toasts.
func NewController[T any](items *Collection[T], toasts Toaster, cfg Config) *Controller[T] {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.ToastTTL <= 0 {
		cfg.ToastTTL = 3 * time.Second
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Controller[T]{
		items:    items,
		toasts:   toasts,
		debounce: NewDebouncer(cfg.Debounce, cfg.Clock),
		clock:    cfg.Clock,
		log:      log.With().Str("component", "mutation").Logger(),
		toastTTL: cfg.ToastTTL,
	}
}

// Items returns the collection the controller edits.
func (c *Controller[T]) Items() *Collection[T] { return c.items }

// Mutate applies m.Apply to the target locally, then runs m.Write. On failure
// the record captured before the edit is restored, unless the record was
// replaced in the meantime; an error toast is shown and *Error is returned.
func (c *Controller[T]) Mutate(ctx context.Context, m Mutation[T]) (T, error) {
	var zero T
	if !c.debounce.Allow(m.Op + ":" + m.TargetID + ":" + m.Payload) {
		observability.Mutations.WithLabelValues(m.Op, "suppressed").Inc()
		return zero, ErrSuppressed
	}

	prev, next, ok := c.items.Update(m.TargetID, m.Apply)
	if !ok {
		return zero, ErrNotFound
	}

	if err := m.Write(ctx, next); err != nil {
		restored := false
		c.items.Update(m.TargetID, func(cur T) T {
			if !reflect.DeepEqual(cur, next) {
				return cur
			}
			restored = true
			return prev
		})
		if !restored {
			c.log.Warn().Str("action", m.Op).Str("target_id", m.TargetID).Msg("record changed during write; keeping the newer value")
		}
		c.fail(m.Op, m.TargetID, m.FailureMessage, err)
		return prev, &Error{Op: m.Op, TargetID: m.TargetID, Err: err}
	}

	c.sideEffects(ctx, m.Op, m.TargetID, next, m.SideEffects)
	observability.Mutations.WithLabelValues(m.Op, "applied").Inc()
	if m.SuccessMessage != "" {
		c.toasts.PushFor(m.SuccessMessage, domain.ToastSuccess, c.toastTTL)
	}
	if m.Reconcile != nil {
		m.Reconcile(ctx)
	}
	return next, nil
}

// Create inserts the draft under a synthetic interim id, then runs cr.Write.
// On success the interim record is replaced by the confirmed one; on failure
// it is removed, an error toast is shown and *Error is returned.
func (c *Controller[T]) Create(ctx context.Context, cr Creation[T]) (T, error) {
	var zero T
	if !c.debounce.Allow(cr.Op + ":new") {
		observability.Mutations.WithLabelValues(cr.Op, "suppressed").Inc()
		return zero, ErrSuppressed
	}

	interim := c.InterimID()
	draft := cr.WithID(cr.Draft, interim)
	c.items.Prepend(draft)

	confirmed, err := cr.Write(ctx, draft)
	if err != nil {
		c.items.Remove(interim)
		c.fail(cr.Op, interim, cr.FailureMessage, err)
		return zero, &Error{Op: cr.Op, TargetID: interim, Err: err}
	}

	c.items.Set(interim, confirmed)
	c.sideEffects(ctx, cr.Op, interim, confirmed, cr.SideEffects)
	observability.Mutations.WithLabelValues(cr.Op, "applied").Inc()
	if cr.SuccessMessage != "" {
		c.toasts.PushFor(cr.SuccessMessage, domain.ToastSuccess, c.toastTTL)
	}
	return confirmed, nil
}

// InterimID returns a fresh synthetic id for an unconfirmed record.
func (c *Controller[T]) InterimID() string {
	return "tmp-" + strconv.FormatInt(c.clock.Now().UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}

func (c *Controller[T]) fail(op, target, msg string, err error) {
	observability.Mutations.WithLabelValues(op, "rolled_back").Inc()
	c.log.Error().Err(err).Str("action", op).Str("target_id", target).Msg("remote write failed; rolled back")
	if msg == "" {
		msg = "Update failed"
	}
	c.toasts.PushFor(msg, domain.ToastError, c.toastTTL)
}

func (c *Controller[T]) sideEffects(ctx context.Context, op, target string, v T, fns []SideEffect[T]) {
	for _, fn := range fns {
		if err := fn(ctx, v); err != nil {
			c.log.Warn().Err(err).Str("action", op).Str("target_id", target).Msg("side-channel write failed")
		}
	}
}
