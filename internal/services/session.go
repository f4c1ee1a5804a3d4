package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/rental-console/internal/cache"
	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/mutation"
	"github.com/tbourn/rental-console/internal/notify"
	"github.com/tbourn/rental-console/internal/repo"
	"github.com/tbourn/rental-console/internal/search"
	"github.com/tbourn/rental-console/internal/selection"
	"github.com/tbourn/rental-console/internal/toast"
)

// View names accepted by Refetch.
const (
	ViewRooms   = "rooms"
	ViewRoom    = "room"
	ViewRange   = "all"
	ViewParking = "parking"
)

// View is a list as served to the browser: the data the operator sees plus
// the cache state behind it.
type View[T any] struct {
	Key       string
	Data      []T
	IsLoading bool
	Err       error
	StoredAt  time.Time
}

// SelectionView is the selection with its URL projection.
type SelectionView struct {
	State    domain.SelectionState
	Location string
	Pending  *domain.SelectionState
}

// ticketView is one mounted ticket list with the controller that edits it.
type ticketView struct {
	key   string
	entry *cache.Entry[[]domain.Ticket]
	ctrl  *mutation.Controller[domain.Ticket]
}

func (v *ticketView) snapshot(q string) View[domain.Ticket] {
	snap := v.entry.Snapshot()
	return View[domain.Ticket]{
		Key:       v.key,
		Data:      search.FilterTickets(v.ctrl.Items().Items(), q),
		IsLoading: snap.IsLoading,
		Err:       snap.Err,
		StoredAt:  snap.StoredAt,
	}
}

func ticketID(t domain.Ticket) string { return t.ID }

// Session is one operator's console: the cached views, the selection, the
// notification poller and the toast queue.
type Session struct {
	ID      string
	User    domain.User
	Created time.Time

	m       *Manager
	log     zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	storage repo.Storage
	cache   *cache.Store
	toasts  *toast.Queue
	history *selection.MemoryHistory
	sel     *selection.Reconciler
	poller  *notify.Poller
	rooms   *cache.Entry[[]domain.Room]

	mu        sync.Mutex
	seen      time.Time
	roomViews map[string]*ticketView
	rangeView *ticketView
	parking   *ticketView
}

// SessionID returns the session id.
func (s *Session) SessionID() string { return s.ID }

func newSession(ctx context.Context, m *Manager, user domain.User, location string) *Session {
	id := uuid.NewString()
	log := m.log.With().Str("session_id", id).Str("user", user.Username).Logger()
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	now := m.clock.Now()

	s := &Session{
		ID:        id,
		User:      user,
		Created:   now,
		m:         m,
		log:       log,
		ctx:       sctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		storage:   m.stores.Session(id),
		toasts:    toast.NewQueue(m.clock, m.opts.Sync.NotifyToastTTL),
		history:   selection.NewMemoryHistory(location),
		seen:      now,
		roomViews: make(map[string]*ticketView),
	}
	s.cache = cache.NewStore(s.storage,
		cache.WithClock(m.clock),
		cache.WithLogger(log),
		cache.WithDefaultTTL(m.opts.Sync.CacheTTL),
	)
	s.sel = selection.New(s.history, resolver{s}, log)
	s.sel.OnChange(s.selectionChanged)

	s.rooms = cache.Get[[]domain.Room](sctx, s.cache, cache.KeyRooms(), m.records.FetchApartmentData, 0)
	s.rooms.OnChange(func(cache.Snapshot[[]domain.Room]) { s.sel.DataChanged() })

	s.poller = notify.NewPoller(m.records, s.toasts, m.stores.Durable(user.Username), s.sel, notify.Config{
		Clock:        m.clock,
		Logger:       log,
		User:         user,
		FastInterval: m.opts.Sync.NotifyFastInterval,
		SlowInterval: m.opts.Sync.NotifySlowInterval,
		ToastTTL:     m.opts.Sync.NotifyToastTTL,
		ToastRoles:   m.opts.Sync.NotifyToastRoles,
		Limit:        m.opts.Sync.NotifyFeedLimit,
	})
	go func() {
		defer close(s.done)
		s.poller.Run(sctx)
	}()

	s.sel.Mount()
	return s
}

func (s *Session) stop() {
	s.cancel()
	<-s.done
	s.cache.Close()
	s.toasts.Close()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.seen = s.m.clock.Now()
	s.mu.Unlock()
}

func (s *Session) lastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

// newTicketView mounts key and mirrors every applied load into the
// controller's collection.
func (s *Session) newTicketView(key string, fetch cache.Fetcher[[]domain.Ticket]) *ticketView {
	entry := cache.Get(s.ctx, s.cache, key, fetch, 0)
	lg := s.log
	ctrl := mutation.NewController(mutation.NewCollection(ticketID), s.toasts, mutation.Config{
		Clock:    s.m.clock,
		Logger:   &lg,
		Debounce: s.m.opts.Sync.MutationDebounce,
		ToastTTL: s.m.opts.Sync.MutationToastTTL,
	})
	entry.OnChange(func(snap cache.Snapshot[[]domain.Ticket]) {
		if snap.Err == nil {
			ctrl.Items().Replace(snap.Data)
		}
		s.sel.DataChanged()
	})
	if snap := entry.Snapshot(); snap.HasData {
		ctrl.Items().Replace(snap.Data)
	}
	return &ticketView{key: key, entry: entry, ctrl: ctrl}
}

// roomView returns the mounted ticket list of room, mounting it if needed.
func (s *Session) roomView(room string) *ticketView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.roomViews[room]; ok {
		return v
	}
	apt := s.apartmentID(room)
	v := s.newTicketView(cache.KeyRoomTickets(room), func(ctx context.Context) ([]domain.Ticket, error) {
		ts, err := s.m.records.FetchTicketsByRoom(ctx, apt)
		for i := range ts {
			if ts[i].ApartmentNumber == "" {
				ts[i].ApartmentNumber = room
			}
		}
		return ts, err
	})
	s.roomViews[room] = v
	return v
}

// selectionChanged keeps exactly the selected room's ticket list mounted.
func (s *Session) selectionChanged(prev, next domain.SelectionState) {
	if prev.RoomID == next.RoomID {
		return
	}
	if next.RoomID != "" {
		s.roomView(next.RoomID)
	}
	s.mu.Lock()
	for room, v := range s.roomViews {
		if room != next.RoomID {
			v.entry.Close()
			delete(s.roomViews, room)
		}
	}
	s.mu.Unlock()
	// The list may have been served from a fresh persisted copy.
	s.sel.DataChanged()
}

// apartmentID maps a room display id to the id ticket lookups use.
func (s *Session) apartmentID(room string) string {
	for _, r := range s.rooms.Snapshot().Data {
		if r.ID == room && r.ApartmentID != "" {
			return r.ApartmentID
		}
	}
	return room
}

func wait(ctx context.Context, ready <-chan struct{}) {
	select {
	case <-ready:
	case <-ctx.Done():
	}
}

// Rooms returns the room list. With mine set only rooms managed by the
// session user are listed. With block set it waits for the first result.
func (s *Session) Rooms(ctx context.Context, mine, block bool) View[domain.Room] {
	if block {
		wait(ctx, s.rooms.Ready())
	}
	snap := s.rooms.Snapshot()
	data := snap.Data
	if mine {
		data = make([]domain.Room, 0, len(snap.Data))
		for _, r := range snap.Data {
			if domain.SameUser(r.Manager, s.User.Username) {
				data = append(data, r)
			}
		}
	}
	return View[domain.Room]{Key: s.rooms.Key(), Data: data, IsLoading: snap.IsLoading, Err: snap.Err, StoredAt: snap.StoredAt}
}

// RoomTickets returns the tickets of room, or of the selected room when room
// is empty, filtered by q.
func (s *Session) RoomTickets(ctx context.Context, room, q string, block bool) (View[domain.Ticket], error) {
	if room == "" {
		room = s.sel.State().RoomID
	}
	if room == "" {
		return View[domain.Ticket]{}, selection.ErrNoRoom
	}
	v := s.roomView(room)
	if block {
		wait(ctx, v.entry.Ready())
	}
	return v.snapshot(q), nil
}

// Tickets returns every ticket created in [start, end] (both optional).
// Only the most recent range stays mounted.
func (s *Session) Tickets(ctx context.Context, start, end, q string, block bool) View[domain.Ticket] {
	v := s.rangeTickets(start, end)
	if block {
		wait(ctx, v.entry.Ready())
	}
	return v.snapshot(q)
}

func (s *Session) rangeTickets(start, end string) *ticketView {
	key := cache.KeyTickets(start, end)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rangeView != nil && s.rangeView.key == key {
		return s.rangeView
	}
	if s.rangeView != nil {
		s.rangeView.entry.Close()
	}
	s.rangeView = s.newTicketView(key, func(ctx context.Context) ([]domain.Ticket, error) {
		return s.m.records.FetchTickets(ctx, start, end)
	})
	return s.rangeView
}

// Parking returns the parking board: parking tickets merged with owner and
// management parking, newest first.
func (s *Session) Parking(ctx context.Context, q string, block bool) View[domain.Ticket] {
	v := s.parkingView()
	if block {
		wait(ctx, v.entry.Ready())
	}
	return v.snapshot(q)
}

func (s *Session) parkingView() *ticketView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.parking == nil {
		s.parking = s.newTicketView(cache.KeyParking(), s.fetchParking)
	}
	return s.parking
}

func (s *Session) fetchParking(ctx context.Context) ([]domain.Ticket, error) {
	var guests, owners []domain.Ticket
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		guests, err = s.m.records.FetchParkingTickets(gctx)
		return err
	})
	g.Go(func() (err error) {
		owners, err = s.m.records.FetchOwnerManagementParking(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(guests)+len(owners))
	out := make([]domain.Ticket, 0, len(guests)+len(owners))
	for _, t := range append(guests, owners...) {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out, nil
}

// ParkingHistory returns the parking log of a ticket. It is read through on
// every call and never cached.
func (s *Session) ParkingHistory(ctx context.Context, ticketID string) ([]domain.ParkingLogEntry, error) {
	_, t, ok := s.findTicket(ticketID)
	if !ok {
		return nil, ErrTicketNotFound
	}
	return s.m.records.FetchParkingHistory(ctx, t.ID, t.Type, t.Title)
}

// Refetch runs a loading refetch of a view and waits for it. Read the view
// afterwards for the result.
func (s *Session) Refetch(ctx context.Context, view, room, start, end string) error {
	switch strings.ToLower(view) {
	case ViewRooms:
		s.rooms.Refetch()
	case ViewRoom, "":
		if room == "" {
			room = s.sel.State().RoomID
		}
		if room == "" {
			return selection.ErrNoRoom
		}
		s.roomView(room).entry.Refetch()
	case ViewRange:
		s.rangeTickets(start, end).entry.Refetch()
	case ViewParking:
		s.parkingView().entry.Refetch()
	default:
		return ErrInvalidView
	}
	return nil
}

// ---------------------------------------------------------------------------
// Selection

// Selection returns the current selection.
func (s *Session) Selection() SelectionView {
	out := SelectionView{State: s.sel.State(), Location: s.sel.Location()}
	if p, ok := s.sel.Pending(); ok {
		out.Pending = &p
	}
	return out
}

// Select applies a selection made by the operator. An empty room clears the
// selection; an empty ticket closes the dialog. Opening a ticket in another
// room waits for that room's tickets to load.
func (s *Session) Select(ctx context.Context, room, ticket string) (SelectionView, error) {
	if room == "" {
		s.sel.ClearRoom()
		return s.Selection(), nil
	}
	if s.sel.State().RoomID != room {
		wait(ctx, s.rooms.Ready())
		if err := s.sel.SelectRoom(room); err != nil {
			return s.Selection(), err
		}
	}
	if ticket == "" {
		if s.sel.State().TicketID != "" {
			s.sel.CloseTicket()
		}
		return s.Selection(), nil
	}
	wait(ctx, s.roomView(room).entry.Ready())
	err := s.sel.OpenTicket(ticket)
	return s.Selection(), err
}

// Navigate replays a browser navigation: "back", "forward", or a location
// the browser moved to.
func (s *Session) Navigate(direction, location string) (SelectionView, bool) {
	moved := true
	switch strings.ToLower(direction) {
	case "back":
		moved = s.sel.Back()
	case "forward":
		moved = s.sel.Forward()
	default:
		s.sel.Visit(location)
	}
	return s.Selection(), moved
}

// ---------------------------------------------------------------------------
// Notifications and toasts

// Notifications returns the activity feed and the unread indicator.
func (s *Session) Notifications() ([]domain.NotificationItem, bool) {
	return s.poller.Items(), s.poller.HasUnread()
}

// SetPanel opens or closes the notification panel.
func (s *Session) SetPanel(ctx context.Context, open bool) {
	if open {
		s.poller.OpenPanel(ctx)
		return
	}
	s.poller.ClosePanel()
}

// SelectNotification jumps to the room and ticket of a feed item.
func (s *Session) SelectNotification(id string) (SelectionView, error) {
	err := s.poller.Select(id)
	return s.Selection(), err
}

// Toasts returns the visible toasts, oldest first.
func (s *Session) Toasts() []domain.Toast { return s.toasts.List() }

// DismissToast removes a toast before it expires.
func (s *Session) DismissToast(id string) bool { return s.toasts.Dismiss(id) }

// resolver answers selection lookups from the session's loaded data.
type resolver struct{ s *Session }

func (r resolver) Room(id string) selection.Lookup {
	snap := r.s.rooms.Snapshot()
	for _, room := range snap.Data {
		if room.ID == id {
			return selection.Found
		}
	}
	if snap.HasData && !snap.IsLoading {
		return selection.Missing
	}
	return selection.Loading
}

func (r resolver) Ticket(room, id string) selection.Lookup {
	r.s.mu.Lock()
	v := r.s.roomViews[room]
	r.s.mu.Unlock()
	if v == nil {
		return selection.Loading
	}
	if _, ok := v.ctrl.Items().Get(id); ok {
		return selection.Found
	}
	if snap := v.entry.Snapshot(); snap.HasData && !snap.IsLoading {
		return selection.Missing
	}
	return selection.Loading
}
