// Package domain defines the records the console works with (rooms, tickets,
// activity notifications, toasts, view selection) and the persistence models
// mapped with GORM. These types are shared across the record-store client,
// the synchronization components and the HTTP layer.
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Ticket statuses accepted by the record store.
const (
	StatusOpen        = "Open"
	StatusUnderReview = "Under Review"
	StatusApproved    = "Approved"
	StatusClosed      = "Closed"
)

// Ticket types.
const (
	TypeInOut       = "In/Out"
	TypeVisit       = "Visit"
	TypeMaintenance = "Maintenance"
	TypeOwner       = "Owner"
	TypeManagement  = "Management"
)

// Room is a rental unit as shown in the console.
//
// Fields:
//   - ID: display id (apartment number such as "101"); used in the URL.
//   - ApartmentID: internal apartment id used by ticket lookups.
//   - RecordID: remote record id.
type Room struct {
	ID          string `json:"id"`
	ApartmentID string `json:"apartment_id"`
	RecordID    string `json:"record_id"`
	Floor       string `json:"floor,omitempty"`
	Category    string `json:"category,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Manager     string `json:"manager,omitempty"`
	Lease       string `json:"lease,omitempty"`
	Occupancy   string `json:"occupancy,omitempty"`
	Parking     string `json:"parking,omitempty"`
}

// Ticket is a guest in/out, maintenance, visit or parking request.
//
// ID is the human-facing id ("T-5") used in the URL, TeableID is the remote
// record id used for writes. Tickets are values: every update produces a new
// Ticket that replaces the old one wherever it is held.
type Ticket struct {
	ID              string    `json:"id"`
	TeableID        string    `json:"teable_id,omitempty"`
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority,omitempty"`
	Description     string    `json:"description,omitempty"`
	Created         time.Time `json:"created"`
	Arrival         string    `json:"arrival,omitempty"`
	Departure       string    `json:"departure,omitempty"`
	Occupancy       string    `json:"occupancy,omitempty"`
	Agent           string    `json:"agent,omitempty"`
	Parking         string    `json:"parking,omitempty"`
	ParkingStatus   string    `json:"parking_status,omitempty"`
	CheckIn         string    `json:"check_in,omitempty"`
	CheckOut        string    `json:"check_out,omitempty"`
	ApartmentID     string    `json:"apartment_id,omitempty"`
	ApartmentNumber string    `json:"apartment_number,omitempty"`
}

// TicketPatch is a partial ticket update. Nil fields are left untouched.
type TicketPatch struct {
	Status        *string `json:"status,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Arrival       *string `json:"arrival,omitempty"`
	Departure     *string `json:"departure,omitempty"`
	Occupancy     *string `json:"occupancy,omitempty"`
	Agent         *string `json:"agent,omitempty"`
	ParkingStatus *string `json:"parking_status,omitempty"`
	CheckIn       *string `json:"check_in,omitempty"`
	CheckOut      *string `json:"check_out,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return p.Status == nil && p.Priority == nil && p.Title == nil &&
		p.Description == nil && p.Arrival == nil && p.Departure == nil &&
		p.Occupancy == nil && p.Agent == nil && p.ParkingStatus == nil &&
		p.CheckIn == nil && p.CheckOut == nil
}

// Fingerprint is a stable text form of the fields the patch sets.
func (p TicketPatch) Fingerprint() string {
	b, _ := json.Marshal(p)
	return string(b)
}

// Apply returns a copy of t with the patch merged in. t itself is not modified.
func (p TicketPatch) Apply(t Ticket) Ticket {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&t.Status, p.Status)
	set(&t.Priority, p.Priority)
	set(&t.Title, p.Title)
	set(&t.Description, p.Description)
	set(&t.Arrival, p.Arrival)
	set(&t.Departure, p.Departure)
	set(&t.Occupancy, p.Occupancy)
	set(&t.Agent, p.Agent)
	set(&t.ParkingStatus, p.ParkingStatus)
	set(&t.CheckIn, p.CheckIn)
	set(&t.CheckOut, p.CheckOut)
	return t
}

// NotificationItem is one entry of the ticket activity feed.
type NotificationItem struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Apartment   string    `json:"apartment"`
	Action      string    `json:"action"`
	TicketType  string    `json:"ticket_type"`
	TicketID    string    `json:"ticket_id"`
	Username    string    `json:"username,omitempty"`
	CreatedTime time.Time `json:"created_time"`
}

// ToastKind selects how a toast is presented.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "blue"
)

// Toast is a short-lived user message. It is never persisted.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      ToastKind `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SelectionState is the view selection mirrored into the URL query string.
// TicketID is only meaningful while RoomID is set.
type SelectionState struct {
	RoomID     string `json:"room_id"`
	TicketID   string `json:"ticket_id"`
	DialogOpen bool   `json:"dialog_open"`
}

// Idle reports whether nothing is selected.
func (s SelectionState) Idle() bool { return s.RoomID == "" }

// CacheEntry is one persisted cache slot. Value holds the JSON encoding of the
// cached data.
type CacheEntry struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) < ttl
}

// User identifies the operator of a console session.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SameUser compares usernames ignoring case and surrounding whitespace.
func SameUser(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// Parking log actions.
const (
	ParkingIn  = "In"
	ParkingOut = "Out"
)

// ParkingLogEntry records one vehicle movement for a ticket. Writing it is
// best-effort; the ticket's ParkingStatus is the source of truth.
type ParkingLogEntry struct {
	TicketID   string    `json:"ticket_id"`
	TicketType string    `json:"ticket_type"`
	Title      string    `json:"title,omitempty"`
	Apartment  string    `json:"apartment,omitempty"`
	Action     string    `json:"action"`
	Username   string    `json:"username,omitempty"`
	Time       time.Time `json:"time"`
}
