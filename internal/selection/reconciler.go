// Package selection keeps the console's room/ticket selection and the URL
// query string in agreement.
//
// The Reconciler is a small state machine with two inputs: external location
// changes (mount, back/forward, jumps) and internal selection changes (user
// clicks). Internal changes push a new history entry; external changes only
// update the state. Both paths compare against the current value first, so
// neither re-triggers the other.
//
//	Idle ──SelectRoom──▶ RoomSelected ──OpenTicket──▶ RoomSelected+TicketOpen
//	  ▲                     │    ▲                        │
//	  └──────ClearRoom──────┘    └──────CloseTicket───────┘
//
// A location that names a room or ticket that has not loaded yet is kept as
// pending and retried on DataChanged. It is only abandoned once the data has
// loaded and the reference still does not resolve.
package selection

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tbourn/rental-console/internal/domain"
)

var (
	ErrUnknownRoom   = errors.New("selection: unknown room")
	ErrUnknownTicket = errors.New("selection: unknown ticket")
	ErrNoRoom        = errors.New("selection: no room selected")
)

// Lookup is the outcome of resolving an id against loaded data.
type Lookup int

const (
	// Loading means the id was not found but its data set is still loading.
	Loading Lookup = iota
	Found
	// Missing means the data set has loaded and the id is not in it.
	Missing
)

func (l Lookup) String() string {
	switch l {
	case Found:
		return "found"
	case Missing:
		return "missing"
	default:
		return "loading"
	}
}

// Resolver answers whether ids exist in the currently loaded data.
type Resolver interface {
	Room(id string) Lookup
	Ticket(roomID, ticketID string) Lookup
}

// Reconciler owns the selection of one console session.
//
// This type is safe for concurrent use. Listeners run outside the lock.
type Reconciler struct {
	history History
	resolve Resolver
	log     zerolog.Logger

	mu        sync.Mutex
	state     domain.SelectionState
	pending   *domain.SelectionState
	listeners []func(prev, next domain.SelectionState)
}

// New returns an idle Reconciler. Call Mount to apply the current location.
func New(history History, resolver Resolver, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		history: history,
		resolve: resolver,
		log:     log.With().Str("component", "selection").Logger(),
	}
}

// OnChange registers fn to run after every state change.
func (r *Reconciler) OnChange(fn func(prev, next domain.SelectionState)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// State returns the current selection.
func (r *Reconciler) State() domain.SelectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Location returns the current history location.
func (r *Reconciler) Location() string { return r.history.Location() }

// Pending returns the location target still waiting for data, if any.
func (r *Reconciler) Pending() (domain.SelectionState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return domain.SelectionState{}, false
	}
	return *r.pending, true
}

// Mount applies the location the history currently shows.
func (r *Reconciler) Mount() { r.External(r.history.Location()) }

// External applies a location change that did not originate from this
// reconciler (initial load, back/forward). It never writes history.
func (r *Reconciler) External(location string) {
	target := Parse(location)

	r.mu.Lock()
	r.pending = nil
	prev := r.state
	next := r.resolveLocked(target)
	r.state = next
	r.mu.Unlock()

	r.emit(prev, next)
}

// Visit records a location the browser moved to on its own (a pasted deep
// link, for example) and applies it.
func (r *Reconciler) Visit(location string) {
	if normalize(location) != r.history.Location() {
		r.history.Push(location)
	}
	r.External(r.history.Location())
}

// Back moves the history one entry back and applies it.
func (r *Reconciler) Back() bool {
	loc, ok := r.history.Back()
	if ok {
		r.External(loc)
	}
	return ok
}

// Forward moves the history one entry forward and applies it.
func (r *Reconciler) Forward() bool {
	loc, ok := r.history.Forward()
	if ok {
		r.External(loc)
	}
	return ok
}

// DataChanged retries a pending location after rooms or tickets reloaded.
func (r *Reconciler) DataChanged() {
	r.mu.Lock()
	if r.pending == nil {
		r.mu.Unlock()
		return
	}
	target := *r.pending
	r.pending = nil
	if Parse(r.history.Location()) != target {
		// The location moved on; whatever it shows now was already applied.
		r.mu.Unlock()
		return
	}
	prev := r.state
	next := r.resolveLocked(target)
	r.state = next
	r.mu.Unlock()

	r.emit(prev, next)
}

// Jump navigates to a room and optionally a ticket from outside the view
// (a notification). The location is written first and then applied, so the
// selection follows the URL even when the data is still loading.
func (r *Reconciler) Jump(roomID, ticketID string) error {
	if roomID == "" {
		return ErrNoRoom
	}
	target := domain.SelectionState{RoomID: roomID, TicketID: ticketID, DialogOpen: ticketID != ""}

	r.mu.Lock()
	r.pushLocked(target)
	r.mu.Unlock()

	r.External(r.history.Location())
	return nil
}

// SelectRoom selects a loaded room and closes any open ticket. An empty id
// clears the selection.
func (r *Reconciler) SelectRoom(id string) error {
	if id == "" {
		r.ClearRoom()
		return nil
	}
	if r.resolve.Room(id) != Found {
		return ErrUnknownRoom
	}
	r.internal(domain.SelectionState{RoomID: id})
	return nil
}

// OpenTicket opens a ticket of the selected room.
func (r *Reconciler) OpenTicket(id string) error {
	room := r.State().RoomID
	if room == "" {
		return ErrNoRoom
	}
	if r.resolve.Ticket(room, id) != Found {
		return ErrUnknownTicket
	}
	r.internal(domain.SelectionState{RoomID: room, TicketID: id, DialogOpen: true})
	return nil
}

// CloseTicket closes the ticket dialog and keeps the room.
func (r *Reconciler) CloseTicket() {
	r.internal(domain.SelectionState{RoomID: r.State().RoomID})
}

// ClearRoom returns to Idle. The ticket parameter goes with the room.
func (r *Reconciler) ClearRoom() {
	r.internal(domain.SelectionState{})
}

func (r *Reconciler) internal(next domain.SelectionState) {
	r.mu.Lock()
	r.pending = nil
	prev := r.state
	r.state = next
	r.pushLocked(next)
	r.mu.Unlock()

	r.emit(prev, next)
}

// pushLocked writes s to history unless the location already shows it.
func (r *Reconciler) pushLocked(s domain.SelectionState) {
	cur := r.history.Location()
	if loc := Format(cur, s); loc != normalize(cur) {
		r.history.Push(loc)
	}
}

// resolveLocked maps a location target to the next state, recording it as
// pending when the data it needs is still loading.
func (r *Reconciler) resolveLocked(target domain.SelectionState) domain.SelectionState {
	if target == r.state {
		return r.state
	}
	if target.RoomID == "" {
		return domain.SelectionState{}
	}

	if target.RoomID != r.state.RoomID {
		switch l := r.resolve.Room(target.RoomID); l {
		case Loading:
			r.deferLocked(target, "room")
			return r.state
		case Missing:
			r.log.Warn().Str("room", target.RoomID).Msg("room in location not found; keeping selection")
			return r.state
		}
	}

	next := domain.SelectionState{RoomID: target.RoomID}
	if target.TicketID == "" {
		return next
	}
	switch r.resolve.Ticket(target.RoomID, target.TicketID) {
	case Found:
		return target
	case Loading:
		r.deferLocked(target, "ticket")
	default:
		r.log.Warn().Str("room", target.RoomID).Str("ticket", target.TicketID).
			Msg("ticket in location not found; dialog stays closed")
	}
	return next
}

func (r *Reconciler) deferLocked(target domain.SelectionState, waitingOn string) {
	t := target
	r.pending = &t
	r.log.Debug().Str("room", target.RoomID).Str("ticket", target.TicketID).
		Str("waiting_on", waitingOn).Msg("selection deferred until data loads")
}

func (r *Reconciler) emit(prev, next domain.SelectionState) {
	if prev == next {
		return
	}
	r.mu.Lock()
	fns := append([]func(prev, next domain.SelectionState){}, r.listeners...)
	r.mu.Unlock()
	for _, fn := range fns {
		fn(prev, next)
	}
}
