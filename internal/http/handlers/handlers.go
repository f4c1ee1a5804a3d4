package handlers

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/http/middleware"
	"github.com/tbourn/rental-console/internal/services"
	"github.com/tbourn/rental-console/internal/utils"
)

// Sessions opens, resolves and ends console sessions.
//
// Implementations must be safe for concurrent use.
type Sessions interface {
	Open(ctx context.Context, user domain.User, location string) (Session, error)
	Get(id string) (Session, error)
	End(ctx context.Context, id string) error
}

// Session is one operator's console as the handlers use it.
// *services.Session implements it.
type Session interface {
	SessionID() string

	Rooms(ctx context.Context, mine, block bool) services.View[domain.Room]
	RoomTickets(ctx context.Context, room, q string, block bool) (services.View[domain.Ticket], error)
	Tickets(ctx context.Context, start, end, q string, block bool) services.View[domain.Ticket]
	Parking(ctx context.Context, q string, block bool) services.View[domain.Ticket]
	ParkingHistory(ctx context.Context, ticketID string) ([]domain.ParkingLogEntry, error)
	Refetch(ctx context.Context, view, room, start, end string) error

	PatchTicket(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error)
	SetParking(ctx context.Context, id, action string) (domain.Ticket, error)
	GuestStatus(ctx context.Context, id, status string) (domain.Ticket, error)
	Attach(ctx context.Context, id, name string, file io.Reader) error
	CreateTicket(ctx context.Context, key string, in services.NewTicket) (domain.Ticket, bool, error)

	Selection() services.SelectionView
	Select(ctx context.Context, room, ticket string) (services.SelectionView, error)
	Navigate(direction, location string) (services.SelectionView, bool)

	Notifications() ([]domain.NotificationItem, bool)
	SetPanel(ctx context.Context, open bool)
	SelectNotification(id string) (services.SelectionView, error)
	Toasts() []domain.Toast
	DismissToast(id string) bool
}

// Handlers groups the console endpoints.
type Handlers struct {
	sessions Sessions
	// wait bounds how long a ?wait=true read blocks for the first load.
	wait time.Duration
}

// New returns Handlers bound to sessions.
func New(sessions Sessions) *Handlers {
	return &Handlers{sessions: sessions, wait: 10 * time.Second}
}

// session resolves the :sid route parameter or writes 404.
func (h *Handlers) session(c *gin.Context) (Session, bool) {
	s, err := h.sessions.Get(c.Param(middleware.SessionParam))
	if err != nil {
		failErr(c, err)
		return nil, false
	}
	return s, true
}

// blocking returns the request context bounded by the wait timeout when the
// caller asked to wait for data.
func (h *Handlers) blocking(c *gin.Context) (context.Context, bool, context.CancelFunc) {
	block, _ := strconv.ParseBool(c.Query("wait"))
	if !block {
		return c.Request.Context(), false, func() {}
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.wait)
	return ctx, true, cancel
}

//
// DTOs
//

// OpenSessionRequest starts a console session. Location is the query string
// the browser was opened with, e.g. "?room=101&ticket=T-5".
type OpenSessionRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Role     string `json:"role" example:"fdo"`
	Location string `json:"location" example:"?room=101"`
}

// SelectionResponse is the current selection and its URL projection.
// Pending is the location target still waiting for data.
type SelectionResponse struct {
	State    domain.SelectionState  `json:"state"`
	Location string                 `json:"location" example:"?room=101&ticket=T-5"`
	Pending  *domain.SelectionState `json:"pending,omitempty"`
}

func selectionResponse(v services.SelectionView) SelectionResponse {
	return SelectionResponse{State: v.State, Location: v.Location, Pending: v.Pending}
}

// OpenSessionResponse is returned when a session starts.
type OpenSessionResponse struct {
	SessionID string            `json:"session_id" example:"6f1c2c8e-6f3a-4f57-9d39-4c1e8d1b7a11"`
	Selection SelectionResponse `json:"selection"`
}

// RoomsResponse is the cached room list.
type RoomsResponse struct {
	Key       string        `json:"key" example:"rooms"`
	Data      []domain.Room `json:"data"`
	IsLoading bool          `json:"is_loading"`
	Error     string        `json:"error,omitempty"`
	StoredAt  *time.Time    `json:"stored_at,omitempty"`
}

// TicketsResponse is a cached ticket list with optimistic edits applied.
type TicketsResponse struct {
	Key       string          `json:"key" example:"tickets:room:101"`
	Data      []domain.Ticket `json:"data"`
	IsLoading bool            `json:"is_loading"`
	Error     string          `json:"error,omitempty"`
	StoredAt  *time.Time      `json:"stored_at,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func storedAt(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func roomsResponse(v services.View[domain.Room]) RoomsResponse {
	data := v.Data
	if data == nil {
		data = []domain.Room{}
	}
	return RoomsResponse{Key: v.Key, Data: data, IsLoading: v.IsLoading, Error: errString(v.Err), StoredAt: storedAt(v.StoredAt)}
}

func ticketsResponse(v services.View[domain.Ticket]) TicketsResponse {
	data := v.Data
	if data == nil {
		data = []domain.Ticket{}
	}
	return TicketsResponse{Key: v.Key, Data: data, IsLoading: v.IsLoading, Error: errString(v.Err), StoredAt: storedAt(v.StoredAt)}
}

// RefetchRequest names the view to reload. View is one of rooms, room, all
// or parking; room defaults to the selected room.
type RefetchRequest struct {
	View  string `json:"view" binding:"required" example:"room"`
	Room  string `json:"room" example:"101"`
	Start string `json:"start" example:"2024-06-01"`
	End   string `json:"end" example:"2024-06-30"`
}

// CreateTicketRequest creates a ticket in Room (default: the selected room).
type CreateTicketRequest struct {
	Room      string `json:"room" example:"101"`
	Type      string `json:"type" binding:"required" example:"Maintenance"`
	Title     string `json:"title" binding:"required" example:"Leaking tap"`
	Purpose   string `json:"purpose" example:"Kitchen sink"`
	Priority  string `json:"priority" example:"High"`
	Arrival   string `json:"arrival" example:"2024-06-02"`
	Departure string `json:"departure" example:"2024-06-05"`
	Occupancy string `json:"occupancy" example:"2"`
	Agent     string `json:"agent" example:"Airbnb"`
	Parking   string `json:"parking" example:"P-12"`
}

// ParkingRequest moves a vehicle In or Out.
type ParkingRequest struct {
	Action string `json:"action" binding:"required" example:"In"`
}

// GuestStatusRequest stamps check-in ("in") or check-out ("out").
type GuestStatusRequest struct {
	Status string `json:"status" binding:"required" example:"in"`
}

// SelectRequest changes the selection. An empty room returns to idle; an
// empty ticket closes the dialog.
type SelectRequest struct {
	Room   string `json:"room" example:"101"`
	Ticket string `json:"ticket" example:"T-5"`
}

// NavigationRequest replays a browser navigation: direction back or forward,
// or the location the browser moved to.
type NavigationRequest struct {
	Direction string `json:"direction" example:"back"`
	Location  string `json:"location" example:"?room=204"`
}

// NavigationResponse reports the selection after a navigation. Moved is false
// when there was no history entry in that direction.
type NavigationResponse struct {
	Selection SelectionResponse `json:"selection"`
	Moved     bool              `json:"moved"`
}

// PanelRequest opens or closes the notification panel.
type PanelRequest struct {
	Open *bool `json:"open" binding:"required"`
}

// NotificationsResponse is a page of the activity feed with the unread
// indicator.
type NotificationsResponse struct {
	Items      []domain.NotificationItem `json:"items"`
	HasUnread  bool                      `json:"has_unread"`
	Pagination Pagination                `json:"pagination"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// ToastsResponse lists the visible toasts, oldest first.
type ToastsResponse struct {
	Toasts []domain.Toast `json:"toasts"`
}

func trim(s string) string { return strings.TrimSpace(s) }

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// Mount registers the console endpoints on api.
func (h *Handlers) Mount(api *gin.RouterGroup) {
	api.POST("/sessions", h.OpenSession)

	s := api.Group("/sessions/:" + middleware.SessionParam)
	{
		s.DELETE("", h.EndSession)

		// Selection
		s.GET("/selection", h.GetSelection)
		s.PUT("/selection", h.PutSelection)
		s.POST("/navigation", h.Navigate)

		// Cached views
		s.GET("/rooms", h.ListRooms)
		s.GET("/tickets", h.ListRoomTickets)
		s.GET("/tickets/all", h.ListTickets)
		s.GET("/parking", h.ListParking)
		s.GET("/tickets/:tid/parking-history", h.ParkingHistory)
		s.POST("/refetch", h.Refetch)

		// Mutations
		s.POST("/tickets", h.CreateTicket)
		s.PATCH("/tickets/:tid", h.PatchTicket)
		s.POST("/tickets/:tid/parking", h.SetParking)
		s.POST("/tickets/:tid/guest-status", h.GuestStatus)
		s.POST("/tickets/:tid/attachments", h.UploadAttachment)

		// Notifications
		s.GET("/notifications", h.ListNotifications)
		s.POST("/notifications/panel", h.SetPanel)
		s.POST("/notifications/:nid/select", h.SelectNotification)
		s.GET("/toasts", h.ListToasts)
		s.DELETE("/toasts/:id", h.DismissToast)
	}
}
