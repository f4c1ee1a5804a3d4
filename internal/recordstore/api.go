package recordstore

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/tbourn/rental-console/internal/domain"
)

type recordsResponse struct {
	Records []Record `json:"records"`
}

// itemsResponse tolerates both list envelopes used by the proxy.
type itemsResponse struct {
	Tickets []map[string]any `json:"tickets"`
	Records []map[string]any `json:"records"`
}

func (r itemsResponse) items() []map[string]any {
	if len(r.Tickets) > 0 {
		return r.Tickets
	}
	return r.Records
}

func (r itemsResponse) tickets() []domain.Ticket {
	items := r.items()
	out := make([]domain.Ticket, 0, len(items))
	for _, it := range items {
		id, f := bag(it)
		out = append(out, TicketFromFields(id, f))
	}
	return out
}

// FetchApartmentData lists every apartment as a Room.
func (c *Client) FetchApartmentData(ctx context.Context) ([]domain.Room, error) {
	var resp recordsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/apartments/", nil, nil, &resp); err != nil {
		return nil, err
	}
	rooms := make([]domain.Room, 0, len(resp.Records))
	for _, r := range resp.Records {
		rooms = append(rooms, RoomFromRecord(r))
	}
	return rooms, nil
}

// FetchTickets lists tickets, optionally limited to [start, end] (YYYY-MM-DD).
func (c *Client) FetchTickets(ctx context.Context, start, end string) ([]domain.Ticket, error) {
	q := url.Values{}
	if start != "" {
		q.Set("start_date", start)
	}
	if end != "" {
		q.Set("end_date", end)
	}
	return c.fetchTickets(ctx, "/tickets/", q)
}

// FetchTicketsByRoom lists a room's tickets, newest first.
func (c *Client) FetchTicketsByRoom(ctx context.Context, apartmentID string) ([]domain.Ticket, error) {
	ts, err := c.fetchTickets(ctx, "/tickets/", url.Values{"apartment_id": {apartmentID}})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Created.After(ts[j].Created) })
	return ts, nil
}

// FetchParkingTickets lists tickets that carry a parking request.
func (c *Client) FetchParkingTickets(ctx context.Context) ([]domain.Ticket, error) {
	return c.fetchTickets(ctx, "/parking-tickets/", nil)
}

// FetchOwnerManagementParking lists Owner and Management tickets with parking.
func (c *Client) FetchOwnerManagementParking(ctx context.Context) ([]domain.Ticket, error) {
	return c.fetchTickets(ctx, "/owner-management-parking/", nil)
}

func (c *Client) fetchTickets(ctx context.Context, path string, q url.Values) ([]domain.Ticket, error) {
	var resp itemsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.tickets(), nil
}

// FetchParkingHistory lists the parking log of one ticket.
func (c *Client) FetchParkingHistory(ctx context.Context, ticketID, ticketType, title string) ([]domain.ParkingLogEntry, error) {
	q := url.Values{"ticket_id": {ticketID}, "type": {ticketType}, "title": {title}}
	var resp itemsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/parking-history/", q, nil, &resp); err != nil {
		return nil, err
	}
	items := resp.items()
	out := make([]domain.ParkingLogEntry, 0, len(items))
	for _, it := range items {
		_, f := bag(it)
		out = append(out, ParkingLogFromFields(f))
	}
	return out, nil
}

// UpdateRequest is the body of a ticket update.
type UpdateRequest struct {
	Fields          domain.TicketPatch `json:"fields"`
	ApartmentNumber string             `json:"apartment_number,omitempty"`
	TicketType      string             `json:"ticket_type,omitempty"`
	TicketID        string             `json:"ticket_id,omitempty"`
	Username        string             `json:"username,omitempty"`
}

// UpdateTicket patches the remote ticket teableID.
func (c *Client) UpdateTicket(ctx context.Context, teableID string, req UpdateRequest) error {
	return c.doJSON(ctx, http.MethodPatch, "/tickets/"+url.PathEscape(teableID)+"/", nil, req, nil)
}

// CreateRequest is the body of a ticket creation.
type CreateRequest struct {
	ApartmentID string `json:"apartment_id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Purpose     string `json:"purpose,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Arrival     string `json:"arrival,omitempty"`
	Departure   string `json:"departure,omitempty"`
	Occupancy   string `json:"occupancy,omitempty"`
	Agent       string `json:"agent,omitempty"`
	Parking     string `json:"parking,omitempty"`
	Username    string `json:"username,omitempty"`
}

// CreateTicket creates a ticket and returns it as confirmed by the store.
func (c *Client) CreateTicket(ctx context.Context, req CreateRequest) (domain.Ticket, error) {
	var raw map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/tickets/create/", nil, req, &raw); err != nil {
		return domain.Ticket{}, err
	}
	// The created record may be wrapped ({"records":[...]}) or returned bare.
	if recs, ok := raw["records"].([]any); ok && len(recs) > 0 {
		if first, ok := recs[0].(map[string]any); ok {
			raw = first
		}
	}
	id, f := bag(raw)
	return TicketFromFields(id, f), nil
}

// UpdateLinkedRecord patches a linked guest/visit/maintenance record.
func (c *Client) UpdateLinkedRecord(ctx context.Context, recordID, ticketType string, fields map[string]any) error {
	body := map[string]any{"record_id": recordID, "ticket_type": ticketType, "fields": fields}
	return c.doJSON(ctx, http.MethodPatch, "/linked-records/", nil, body, nil)
}

// UpdateGuestStatus stamps the check-in ("in") or check-out ("out") time of a
// linked record.
func (c *Client) UpdateGuestStatus(ctx context.Context, recordID, status, ticketType string) error {
	body := map[string]string{"record_id": recordID, "status": status, "ticket_type": ticketType}
	return c.doJSON(ctx, http.MethodPost, "/update-guest-status/", nil, body, nil)
}

// UploadAttachment uploads file to the linked record.
func (c *Client) UploadAttachment(ctx context.Context, name string, file io.Reader, recordID, ticketType string) error {
	fields := map[string]string{"record_id": recordID, "ticket_type": ticketType}
	return c.postMultipart(ctx, "/upload-attachment/", "file", name, file, fields, nil)
}

// CreateParkingLog appends an entry to the parking log.
func (c *Client) CreateParkingLog(ctx context.Context, entry domain.ParkingLogEntry) error {
	return c.doJSON(ctx, http.MethodPost, "/parking-logs/", nil, entry, nil)
}

// FetchActivities returns the ticket activity feed.
func (c *Client) FetchActivities(ctx context.Context) ([]domain.NotificationItem, error) {
	var resp struct {
		Activities []activity `json:"activities"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/ticket-activities/", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.NotificationItem, 0, len(resp.Activities))
	for _, a := range resp.Activities {
		out = append(out, a.item())
	}
	return out, nil
}
