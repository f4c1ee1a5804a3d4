package selection

import (
	"net/url"
	"strings"

	"github.com/tbourn/rental-console/internal/domain"
)

// Query parameter names owned by the reconciler.
const (
	ParamRoom   = "room"
	ParamTicket = "ticket"
)

// Parse reads the selection from a query string. A leading "?" is allowed.
// A ticket without a room is not a valid selection and is dropped.
func Parse(location string) domain.SelectionState {
	q, _ := url.ParseQuery(strings.TrimPrefix(location, "?"))
	s := domain.SelectionState{RoomID: strings.TrimSpace(q.Get(ParamRoom))}
	if s.RoomID == "" {
		return domain.SelectionState{}
	}
	if t := strings.TrimSpace(q.Get(ParamTicket)); t != "" {
		s.TicketID = t
		s.DialogOpen = true
	}
	return s
}

// Format writes s into location, keeping any parameters the reconciler does
// not own (such as "page"). The result has no leading "?" and is empty for
// an idle selection with no other parameters.
func Format(location string, s domain.SelectionState) string {
	q, _ := url.ParseQuery(strings.TrimPrefix(location, "?"))
	q.Del(ParamRoom)
	q.Del(ParamTicket)
	if s.RoomID != "" {
		q.Set(ParamRoom, s.RoomID)
		if s.TicketID != "" {
			q.Set(ParamTicket, s.TicketID)
		}
	}
	return q.Encode()
}

// normalize canonicalizes a location so equal selections compare equal.
func normalize(location string) string {
	q, _ := url.ParseQuery(strings.TrimPrefix(location, "?"))
	return q.Encode()
}
