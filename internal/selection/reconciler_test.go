package selection

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/rental-console/internal/domain"
)

// stubData is a Resolver over editable room and ticket sets.
type stubData struct {
	mu            sync.Mutex
	roomsLoaded   bool
	rooms         map[string]bool
	ticketsLoaded map[string]bool
	tickets       map[string]map[string]bool
}

func newStubData() *stubData {
	return &stubData{
		rooms:         map[string]bool{},
		ticketsLoaded: map[string]bool{},
		tickets:       map[string]map[string]bool{},
	}
}

func (d *stubData) loadRooms(ids ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roomsLoaded = true
	for _, id := range ids {
		d.rooms[id] = true
	}
}

func (d *stubData) loadTickets(room string, ids ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ticketsLoaded[room] = true
	if d.tickets[room] == nil {
		d.tickets[room] = map[string]bool{}
	}
	for _, id := range ids {
		d.tickets[room][id] = true
	}
}

func (d *stubData) Room(id string) Lookup {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.rooms[id]:
		return Found
	case d.roomsLoaded:
		return Missing
	}
	return Loading
}

func (d *stubData) Ticket(room, id string) Lookup {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.tickets[room][id]:
		return Found
	case d.ticketsLoaded[room]:
		return Missing
	}
	return Loading
}

func newReconciler(location string, data *stubData) (*Reconciler, *MemoryHistory) {
	h := NewMemoryHistory(location)
	return New(h, data, zerolog.Nop()), h
}

func sel(room, ticket string) domain.SelectionState {
	return domain.SelectionState{RoomID: room, TicketID: ticket, DialogOpen: ticket != ""}
}

func TestScenarioC_TicketPushAndBack(t *testing.T) {
	data := newStubData()
	data.loadRooms("101")
	data.loadTickets("101", "T-5")
	r, h := newReconciler("?room=101", data)
	r.Mount()

	if got := r.State(); got != sel("101", "") {
		t.Fatalf("after mount: %+v", got)
	}
	if err := r.OpenTicket("T-5"); err != nil {
		t.Fatalf("OpenTicket: %v", err)
	}
	if loc := h.Location(); loc != "room=101&ticket=T-5" {
		t.Fatalf("location = %q", loc)
	}
	if h.Len() != 2 {
		t.Fatalf("expected a pushed entry, history len = %d", h.Len())
	}

	if !r.Back() {
		t.Fatalf("Back should move")
	}
	if loc := h.Location(); loc != "room=101" {
		t.Fatalf("location after back = %q", loc)
	}
	if got := r.State(); got != sel("101", "") || got.DialogOpen {
		t.Fatalf("dialog should be closed after back: %+v", got)
	}

	if !r.Forward() || r.State() != sel("101", "T-5") {
		t.Fatalf("forward should reopen the ticket: %+v", r.State())
	}
}

func TestScenarioD_JumpWaitsForData(t *testing.T) {
	data := newStubData()
	r, h := newReconciler("", data)
	r.Mount()

	if err := r.Jump("204", "T-7"); err != nil {
		t.Fatalf("Jump: %v", err)
	}
	if loc := h.Location(); loc != "room=204&ticket=T-7" {
		t.Fatalf("jump must write the location first, got %q", loc)
	}
	if got := r.State(); !got.Idle() {
		t.Fatalf("selection must wait for rooms, got %+v", got)
	}
	if p, ok := r.Pending(); !ok || p != sel("204", "T-7") {
		t.Fatalf("pending = %+v %v", p, ok)
	}

	data.loadRooms("101", "204")
	r.DataChanged()
	if got := r.State(); got != sel("204", "") {
		t.Fatalf("room should resolve once rooms load: %+v", got)
	}
	if _, ok := r.Pending(); !ok {
		t.Fatalf("ticket should still be pending")
	}

	data.loadTickets("204", "T-7")
	r.DataChanged()
	if got := r.State(); got != sel("204", "T-7") {
		t.Fatalf("final state = %+v", got)
	}
	if _, ok := r.Pending(); ok {
		t.Fatalf("nothing should be pending")
	}
	if h.Location() != "room=204&ticket=T-7" || h.Len() != 2 {
		t.Fatalf("history changed while resolving: %q len=%d", h.Location(), h.Len())
	}
}

func TestExternal_AbandonsWhenDataLoadedAndMissing(t *testing.T) {
	data := newStubData()
	r, _ := newReconciler("room=999", data)
	r.Mount()
	if _, ok := r.Pending(); !ok {
		t.Fatalf("unknown room should be pending while rooms load")
	}
	data.loadRooms("101")
	r.DataChanged()
	if _, ok := r.Pending(); ok {
		t.Fatalf("pending should be abandoned once rooms loaded")
	}
	if !r.State().Idle() {
		t.Fatalf("state should stay idle: %+v", r.State())
	}
}

func TestDataChanged_DropsPendingWhenLocationMovedOn(t *testing.T) {
	data := newStubData()
	r, h := newReconciler("room=204", data)
	r.Mount()
	h.Push("page=dashboard")
	data.loadRooms("204")
	r.DataChanged()
	if !r.State().Idle() {
		t.Fatalf("stale pending target applied: %+v", r.State())
	}
}

func TestInternal_URLIdempotence(t *testing.T) {
	data := newStubData()
	data.loadRooms("101")
	r, h := newReconciler("", data)

	var changes int
	r.OnChange(func(prev, next domain.SelectionState) { changes++ })

	for i := 0; i < 2; i++ {
		if err := r.SelectRoom("101"); err != nil {
			t.Fatalf("SelectRoom: %v", err)
		}
	}
	if h.Len() != 2 || changes != 1 {
		t.Fatalf("second identical write must be a no-op: len=%d changes=%d", h.Len(), changes)
	}

	// Re-applying the location that is already shown is also a no-op.
	r.External(h.Location())
	if changes != 1 {
		t.Fatalf("external echo re-triggered a change")
	}
}

func TestInternal_ClearRoomDropsTicketInOnePush(t *testing.T) {
	data := newStubData()
	data.loadRooms("101")
	data.loadTickets("101", "T-1")
	r, h := newReconciler("page=guest-management", data)
	_ = r.SelectRoom("101")
	_ = r.OpenTicket("T-1")
	n := h.Len()

	r.ClearRoom()
	if h.Len() != n+1 {
		t.Fatalf("clear should push exactly one entry")
	}
	if loc := h.Location(); loc != "page=guest-management" {
		t.Fatalf("location = %q; unrelated params must survive", loc)
	}
}

func TestInternal_Errors(t *testing.T) {
	data := newStubData()
	data.loadRooms("101")
	data.loadTickets("101")
	r, h := newReconciler("", data)

	if err := r.OpenTicket("T-1"); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("want ErrNoRoom, got %v", err)
	}
	if err := r.SelectRoom("nope"); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("want ErrUnknownRoom, got %v", err)
	}
	_ = r.SelectRoom("101")
	if err := r.OpenTicket("T-404"); !errors.Is(err, ErrUnknownTicket) {
		t.Fatalf("want ErrUnknownTicket, got %v", err)
	}
	if err := r.Jump("", "T-1"); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("want ErrNoRoom, got %v", err)
	}
	if h.Len() != 2 {
		t.Fatalf("failed operations must not push: len=%d", h.Len())
	}
}

func TestVisit_PushesOnlyNewLocations(t *testing.T) {
	data := newStubData()
	data.loadRooms("101")
	r, h := newReconciler("", data)
	r.Visit("?room=101")
	r.Visit("room=101")
	if h.Len() != 2 || r.State() != sel("101", "") {
		t.Fatalf("len=%d state=%+v", h.Len(), r.State())
	}
}
