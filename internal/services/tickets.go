package services

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/mutation"
	"github.com/tbourn/rental-console/internal/recordstore"
	"github.com/tbourn/rental-console/internal/repo"
	"github.com/tbourn/rental-console/internal/selection"
	"github.com/tbourn/rental-console/internal/sysutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Guest status actions.
const (
	GuestIn  = "in"
	GuestOut = "out"
)

// NewTicket is the input of a ticket creation. Room defaults to the selected
// room.
type NewTicket struct {
	Room      string
	Type      string
	Title     string
	Purpose   string
	Priority  string
	Arrival   string
	Departure string
	Occupancy string
	Agent     string
	Parking   string
}

// views returns every mounted ticket list.
func (s *Session) views() []*ticketView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ticketView, 0, len(s.roomViews)+2)
	for _, v := range s.roomViews {
		out = append(out, v)
	}
	if s.parking != nil {
		out = append(out, s.parking)
	}
	if s.rangeView != nil {
		out = append(out, s.rangeView)
	}
	return out
}

// findTicket looks a ticket up in the mounted lists: the selected room first,
// then the parking board, then the date-range list.
func (s *Session) findTicket(id string) (*ticketView, domain.Ticket, bool) {
	for _, v := range s.views() {
		if t, ok := v.ctrl.Items().Get(id); ok {
			return v, t, true
		}
	}
	return nil, domain.Ticket{}, false
}

// mirror copies a confirmed edit into the other lists holding the ticket.
func (s *Session) mirror(owner *ticketView, id string, apply func(domain.Ticket) domain.Ticket) {
	for _, v := range s.views() {
		if v != owner {
			v.ctrl.Items().Update(id, apply)
		}
	}
}

// writable resolves a ticket that can be written to the record store.
func (s *Session) writable(id string) (*ticketView, domain.Ticket, error) {
	v, t, ok := s.findTicket(id)
	if !ok {
		return nil, t, ErrTicketNotFound
	}
	if t.TeableID == "" {
		return nil, t, ErrTicketPending
	}
	return v, t, nil
}

func (s *Session) updateRequest(t domain.Ticket, patch domain.TicketPatch) recordstore.UpdateRequest {
	return recordstore.UpdateRequest{
		Fields:          patch,
		ApartmentNumber: t.ApartmentNumber,
		TicketType:      t.Type,
		TicketID:        t.ID,
		Username:        s.User.Username,
	}
}

// guestFields returns the linked-record fields a patch touches.
func guestFields(p domain.TicketPatch) map[string]any {
	f := map[string]any{}
	if p.Arrival != nil {
		f["Arrival"] = *p.Arrival
	}
	if p.Departure != nil {
		f["Departure"] = *p.Departure
	}
	if p.Occupancy != nil {
		f["Occupancy"] = *p.Occupancy
	}
	if p.Agent != nil {
		f["Agent"] = *p.Agent
	}
	return f
}

// PatchTicket applies patch to a ticket optimistically and writes it to the
// record store. On failure the ticket is restored and *mutation.Error is
// returned. Guest fields are mirrored to the linked guest record on a
// best-effort basis.
func (s *Session) PatchTicket(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error) {
	tr := otel.Tracer("services/Tickets")
	ctx, span := tr.Start(ctx, "PatchTicket",
		trace.WithAttributes(attribute.String("session.id", s.ID), attribute.String("ticket.id", id)),
	)
	defer span.End()

	if patch.Empty() {
		return domain.Ticket{}, ErrInvalidPatch
	}
	v, t, err := s.writable(id)
	if err != nil {
		return t, err
	}

	op := "update"
	if patch.Status != nil {
		op = "status"
	}
	m := mutation.Mutation[domain.Ticket]{
		Op:       op,
		TargetID: id,
		Payload:  patch.Fingerprint(),
		Apply:    patch.Apply,
		Write: func(ctx context.Context, next domain.Ticket) error {
			return s.m.records.UpdateTicket(ctx, t.TeableID, s.updateRequest(t, patch))
		},
		SuccessMessage: "Ticket updated successfully",
		FailureMessage: "Failed to update ticket",
	}
	if f := guestFields(patch); len(f) > 0 && t.Type != domain.TypeMaintenance {
		m.SideEffects = append(m.SideEffects, func(ctx context.Context, next domain.Ticket) error {
			return s.m.records.UpdateLinkedRecord(ctx, next.TeableID, next.Type, f)
		})
	}

	next, err := v.ctrl.Mutate(ctx, m)
	if err != nil {
		return next, err
	}
	s.mirror(v, id, patch.Apply)
	return next, nil
}

// SetParking moves a ticket's vehicle in or out. The movement is appended to
// the parking log on a best-effort basis.
func (s *Session) SetParking(ctx context.Context, id, action string) (domain.Ticket, error) {
	tr := otel.Tracer("services/Tickets")
	ctx, span := tr.Start(ctx, "SetParking",
		trace.WithAttributes(attribute.String("ticket.id", id), attribute.String("parking.action", action)),
	)
	defer span.End()

	switch {
	case strings.EqualFold(action, domain.ParkingIn):
		action = domain.ParkingIn
	case strings.EqualFold(action, domain.ParkingOut):
		action = domain.ParkingOut
	default:
		return domain.Ticket{}, ErrInvalidAction
	}
	v, t, err := s.writable(id)
	if err != nil {
		return t, err
	}

	patch := domain.TicketPatch{ParkingStatus: &action}
	next, err := v.ctrl.Mutate(ctx, mutation.Mutation[domain.Ticket]{
		Op:       "parking",
		TargetID: id,
		Payload:  action,
		Apply:    patch.Apply,
		Write: func(ctx context.Context, _ domain.Ticket) error {
			return s.m.records.UpdateTicket(ctx, t.TeableID, s.updateRequest(t, patch))
		},
		SideEffects: []mutation.SideEffect[domain.Ticket]{
			func(ctx context.Context, next domain.Ticket) error {
				return s.m.records.CreateParkingLog(ctx, domain.ParkingLogEntry{
					TicketID:   next.ID,
					TicketType: next.Type,
					Title:      next.Title,
					Apartment:  next.ApartmentNumber,
					Action:     action,
					Username:   s.User.Username,
					Time:       s.m.clock.Now().UTC(),
				})
			},
		},
		SuccessMessage: "Parking status updated to " + action,
		FailureMessage: "Failed to update parking status",
	})
	if err != nil {
		return next, err
	}
	s.mirror(v, id, patch.Apply)
	return next, nil
}

// GuestStatus stamps the check-in or check-out time of a ticket. The stamp
// shows immediately; the ticket list is then reloaded so the server's
// timestamp replaces the local one.
func (s *Session) GuestStatus(ctx context.Context, id, status string) (domain.Ticket, error) {
	tr := otel.Tracer("services/Tickets")
	ctx, span := tr.Start(ctx, "GuestStatus",
		trace.WithAttributes(attribute.String("ticket.id", id), attribute.String("guest.status", status)),
	)
	defer span.End()

	status = strings.ToLower(strings.TrimSpace(status))
	now := s.m.clock.Now().UTC().Format(time.RFC3339)
	var patch domain.TicketPatch
	switch status {
	case GuestIn:
		patch.CheckIn = &now
	case GuestOut:
		patch.CheckOut = &now
	default:
		return domain.Ticket{}, ErrInvalidAction
	}
	v, t, err := s.writable(id)
	if err != nil {
		return t, err
	}

	next, err := v.ctrl.Mutate(ctx, mutation.Mutation[domain.Ticket]{
		Op:       "guest_" + status,
		TargetID: id,
		Apply:    patch.Apply,
		Write: func(ctx context.Context, _ domain.Ticket) error {
			return s.m.records.UpdateGuestStatus(ctx, t.TeableID, status, t.Type)
		},
		SuccessMessage: guestMessage(status),
		FailureMessage: "Failed to update guest status",
		Reconcile:      func(context.Context) { v.entry.Refetch() },
	})
	if err != nil {
		return next, err
	}
	if cur, ok := v.ctrl.Items().Get(id); ok {
		next = cur
	}
	s.mirror(v, id, patch.Apply)
	return next, nil
}

func guestMessage(status string) string {
	if status == GuestIn {
		return "Checked in successfully"
	}
	return "Checked out successfully"
}

// Attach uploads a file to the ticket's linked record.
func (s *Session) Attach(ctx context.Context, id, name string, file io.Reader) error {
	tr := otel.Tracer("services/Tickets")
	ctx, span := tr.Start(ctx, "Attach",
		trace.WithAttributes(attribute.String("ticket.id", id), attribute.String("file.name", name)),
	)
	defer span.End()

	_, t, err := s.writable(id)
	if err != nil {
		return err
	}
	if err := s.m.records.UploadAttachment(ctx, name, file, t.TeableID, t.Type); err != nil {
		s.toasts.PushFor("Failed to upload attachment", domain.ToastError, s.m.opts.Sync.MutationToastTTL)
		return err
	}
	s.toasts.PushFor("Attachment uploaded", domain.ToastSuccess, s.m.opts.Sync.MutationToastTTL)
	return nil
}

func (s *Session) replayKey(key string) repo.ReplayKey {
	return repo.ReplayKey{UserID: s.User.Username, SessionID: s.ID, Key: key}
}

// CreateTicket creates a ticket in the given (or selected) room. The draft is
// listed under an interim id until the record store confirms it.
//
// A non-empty key makes the call idempotent per (user, session, key): a
// repeated call returns the ticket created by the first one and replay=true.
func (s *Session) CreateTicket(ctx context.Context, key string, in NewTicket) (t domain.Ticket, replay bool, err error) {
	tr := otel.Tracer("services/Tickets")
	ctx, span := tr.Start(ctx, "CreateTicket",
		trace.WithAttributes(attribute.String("session.id", s.ID), attribute.Bool("idempotent", key != "")),
	)
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.TrimSpace(in.Type)
	if in.Title == "" || in.Type == "" {
		return t, false, ErrInvalidPatch
	}
	room := sysutil.FirstNonEmpty(in.Room, s.sel.State().RoomID)
	if room == "" {
		return t, false, selection.ErrNoRoom
	}

	db := s.m.opts.DB
	if key != "" && db != nil {
		rec, err := repo.GetIdempotency(ctx, db, s.replayKey(key), s.m.clock.Now())
		if err == nil {
			if _, prev, ok := s.findTicket(rec.TicketID); ok {
				return prev, true, nil
			}
			return domain.Ticket{ID: rec.TicketID, ApartmentNumber: room}, true, nil
		}
	}

	v := s.roomView(room)
	apt := s.apartmentID(room)
	draft := domain.Ticket{
		Type:            in.Type,
		Title:           in.Title,
		Status:          domain.StatusOpen,
		Priority:        in.Priority,
		Description:     in.Purpose,
		Created:         s.m.clock.Now().UTC(),
		Arrival:         in.Arrival,
		Departure:       in.Departure,
		Occupancy:       in.Occupancy,
		Agent:           in.Agent,
		Parking:         in.Parking,
		ApartmentID:     apt,
		ApartmentNumber: room,
	}

	t, err = v.ctrl.Create(ctx, mutation.Creation[domain.Ticket]{
		Op:    "create",
		Draft: draft,
		WithID: func(t domain.Ticket, id string) domain.Ticket {
			t.ID = id
			return t
		},
		Write: func(ctx context.Context, d domain.Ticket) (domain.Ticket, error) {
			c, err := s.m.records.CreateTicket(ctx, recordstore.CreateRequest{
				ApartmentID: apt,
				Type:        d.Type,
				Title:       d.Title,
				Purpose:     d.Description,
				Priority:    d.Priority,
				Arrival:     d.Arrival,
				Departure:   d.Departure,
				Occupancy:   d.Occupancy,
				Agent:       d.Agent,
				Parking:     d.Parking,
				Username:    s.User.Username,
			})
			if err != nil {
				return c, err
			}
			c.ID = sysutil.FirstNonEmpty(c.ID, c.TeableID, d.ID)
			if c.ApartmentNumber == "" {
				c.ApartmentNumber = room
			}
			if c.Created.IsZero() {
				c.Created = d.Created
			}
			return c, nil
		},
		SuccessMessage: "Ticket created successfully",
		FailureMessage: "Failed to create ticket",
	})
	if err != nil {
		return t, false, err
	}

	if key != "" && db != nil {
		if _, err := repo.CreateIdempotency(ctx, db, s.replayKey(key), t.ID, http.StatusCreated, s.m.clock.Now(), s.m.opts.IdempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", key).Msg("record idempotency key")
		}
	}
	return t, false, nil
}
