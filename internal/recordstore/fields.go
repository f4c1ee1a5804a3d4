package recordstore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/rental-console/internal/domain"
)

// Record field names as returned by the record store. Several carry a
// trailing space; they are kept verbatim and matched exactly first.
const (
	FieldApartmentNumber = "Apartment Number "
	FieldApartmentID     = "Apartment ID"
	FieldFloor           = "Floor"
	FieldOwner           = "Owner"
	FieldCategory        = "Category"
	FieldManagedBy       = "Managed by"
	FieldOccupancy       = "Occupancy"
	FieldParkingAllowed  = "Parking Allowed"

	FieldTicketID      = "ID "
	FieldTicketType    = "Ticket Type"
	FieldTitle         = "Title"
	FieldStatus        = "Status "
	FieldPriority      = "Priority"
	FieldCreatedTime   = "Created Time "
	FieldPurpose       = "Purpose"
	FieldArrival       = "Arrival"
	FieldDeparture     = "Departure"
	FieldAgent         = "Agent"
	FieldParkingStatus = "Parking Status"
	FieldCheckIn       = "Check in Date "
	FieldCheckOut      = "Check out Date "
	FieldTicketApt     = "Apartment ID "

	FieldAction   = "Action"
	FieldTime     = "Time"
	FieldUsername = "Username"
)

// Record is a remote record: an internal id plus a free-form field bag.
type Record struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Fields is a record's field bag.
type Fields map[string]any

// Lookup returns the value stored under name. An exact match wins; otherwise
// keys are compared with surrounding whitespace trimmed, ignoring case.
func (f Fields) Lookup(name string) (any, bool) {
	if v, ok := f[name]; ok {
		return v, true
	}
	want := strings.TrimSpace(name)
	for k, v := range f {
		if strings.EqualFold(strings.TrimSpace(k), want) {
			return v, true
		}
	}
	return nil, false
}

// String returns the first present, non-empty value among names rendered as
// text. Numbers drop a zero fraction, linked-record lists are joined by ", ".
func (f Fields) String(names ...string) string {
	for _, n := range names {
		v, ok := f.Lookup(n)
		if !ok || v == nil {
			continue
		}
		if s := text(v); s != "" {
			return s
		}
	}
	return ""
}

// Time parses the first present value among names as a timestamp.
func (f Fields) Time(names ...string) time.Time {
	return parseTime(f.String(names...))
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		// linked record: {"id": "...", "title": "..."}
		if s, ok := t["title"].(string); ok {
			return strings.TrimSpace(s)
		}
		if s, ok := t["name"].(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := text(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts ISO-8601 variants and epoch milliseconds. Unparseable
// input yields the zero time.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// bag normalizes a list item into (remote id, field bag). Items are either
// raw records {"id", "fields"} or already-flattened objects.
func bag(item map[string]any) (string, Fields) {
	if inner, ok := item["fields"].(map[string]any); ok {
		id, _ := item["id"].(string)
		return id, Fields(inner)
	}
	f := Fields(item)
	return f.String("teableId", "teable_id", "recordId"), f
}

// RoomFromRecord maps an apartment record to a Room.
func RoomFromRecord(r Record) domain.Room {
	f := r.Fields
	id := f.String(FieldApartmentNumber)
	if id == "" {
		id = "Room-" + r.ID
	}
	category := f.String(FieldCategory)
	if category == "" {
		category = "Unknown"
	}
	occ := f.String(FieldOccupancy)
	if occ == "" {
		occ = "0 / 3"
	}
	parking := f.String(FieldParkingAllowed)
	if parking == "" {
		parking = "No"
	}
	return domain.Room{
		ID:          id,
		ApartmentID: f.String(FieldApartmentID),
		RecordID:    r.ID,
		Floor:       f.String(FieldFloor),
		Category:    category,
		Owner:       f.String(FieldOwner),
		Manager:     f.String(FieldManagedBy),
		Lease:       leaseOf(category),
		Occupancy:   occ,
		Parking:     parking,
	}
}

func leaseOf(category string) string {
	switch {
	case strings.Contains(category, "Short"):
		return "Short-term"
	case strings.Contains(category, "Long"):
		return "Long-term"
	default:
		return "Owner"
	}
}

// TicketFromFields maps a ticket item (raw or flattened) to a Ticket.
func TicketFromFields(teableID string, f Fields) domain.Ticket {
	t := domain.Ticket{
		ID:              f.String("id", FieldTicketID),
		TeableID:        teableID,
		Type:            f.String("type", FieldTicketType),
		Title:           f.String("title", FieldTitle),
		Status:          f.String("status", FieldStatus),
		Priority:        f.String("priority", FieldPriority),
		Description:     f.String("description", FieldPurpose),
		Created:         f.Time("created", FieldCreatedTime),
		Arrival:         f.String("arrival", FieldArrival),
		Departure:       f.String("departure", FieldDeparture),
		Occupancy:       f.String("occupancy", FieldOccupancy),
		Agent:           f.String("agent", FieldAgent),
		Parking:         f.String("parking", FieldParkingAllowed),
		ParkingStatus:   f.String("parkingStatus", "parking_status", FieldParkingStatus),
		CheckIn:         f.String("checkIn", "check_in", FieldCheckIn),
		CheckOut:        f.String("checkOut", "check_out", FieldCheckOut),
		ApartmentID:     f.String("apartmentId", "apartment_id", FieldTicketApt),
		ApartmentNumber: f.String("apartmentNumber", "apartment_number", FieldApartmentNumber),
	}
	if t.Type == "" {
		t.Type = "Unknown"
	}
	if t.Title == "" {
		t.Title = "No Title"
	}
	if t.Status == "" {
		t.Status = domain.StatusOpen
	}
	if t.Priority == "" {
		t.Priority = "Low"
	}
	return t
}

// ParkingLogFromFields maps a parking history item.
func ParkingLogFromFields(f Fields) domain.ParkingLogEntry {
	return domain.ParkingLogEntry{
		TicketID:   f.String("ticketId", "ticket_id", FieldTicketID),
		TicketType: f.String("ticketType", "ticket_type", FieldTicketType),
		Title:      f.String("title", FieldTitle),
		Apartment:  f.String("apartment", FieldApartmentNumber),
		Action:     f.String("action", FieldAction),
		Username:   f.String("username", FieldUsername),
		Time:       f.Time("time", FieldTime, "createdTime", FieldCreatedTime),
	}
}

// activity is the wire shape of one feed entry.
type activity struct {
	ID          any    `json:"id"`
	Status      string `json:"status"`
	Apartment   any    `json:"apartment"`
	Action      string `json:"action"`
	TicketType  string `json:"ticketType"`
	TicketID    any    `json:"ticketId"`
	Username    string `json:"username"`
	CreatedTime any    `json:"createdTime"`
}

func (a activity) item() domain.NotificationItem {
	return domain.NotificationItem{
		ID:          text(a.ID),
		Status:      a.Status,
		Apartment:   text(a.Apartment),
		Action:      a.Action,
		TicketType:  a.TicketType,
		TicketID:    text(a.TicketID),
		Username:    strings.TrimSpace(a.Username),
		CreatedTime: parseTime(text(a.CreatedTime)),
	}
}
