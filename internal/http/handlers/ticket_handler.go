// Ticket mutation endpoints. Every mutation is optimistic: the session's views
// show the change at once and roll it back if the record store rejects it.
// The outcome is also reported as a toast.
package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/http/middleware"
	"github.com/tbourn/rental-console/internal/services"
)

// CreateTicket godoc
// @ID          createTicket
// @Summary     Create a ticket
// @Description Lists the draft under an interim id until the record store confirms it. An Idempotency-Key makes retries return the first result with 200.
// @Tags        Tickets
// @Accept      json
// @Produce     json
// @Param       sid              path    string                        true   "Session ID"
// @Param       Idempotency-Key  header  string                        false  "Retry key"
// @Param       body             body    handlers.CreateTicketRequest  true   "New ticket"
// @Success     201  {object}  domain.Ticket
// @Success     200  {object}  domain.Ticket  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Failure     409  {object}  handlers.ErrorResponse  "No room selected or duplicate trigger"
// @Failure     502  {object}  handlers.ErrorResponse  "Record store rejected the ticket"
// @Router      /sessions/{sid}/tickets [post]
func (h *Handlers) CreateTicket(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	t, replay, err := s.CreateTicket(c.Request.Context(), key, services.NewTicket{
		Room:      trim(req.Room),
		Type:      trim(req.Type),
		Title:     trim(req.Title),
		Purpose:   req.Purpose,
		Priority:  trim(req.Priority),
		Arrival:   trim(req.Arrival),
		Departure: trim(req.Departure),
		Occupancy: trim(req.Occupancy),
		Agent:     trim(req.Agent),
		Parking:   trim(req.Parking),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	if replay {
		ok(c, http.StatusOK, t)
		return
	}
	ok(c, http.StatusCreated, t)
}

// PatchTicket godoc
// @ID          patchTicket
// @Summary     Update a ticket
// @Description Applies a partial update optimistically. Guest fields are mirrored to the linked record.
// @Tags        Tickets
// @Accept      json
// @Produce     json
// @Param       sid   path      string              true  "Session ID"
// @Param       tid   path      string              true  "Ticket ID"
// @Param       body  body      domain.TicketPatch  true  "Fields to change"
// @Success     200   {object}  domain.Ticket
// @Failure     400   {object}  handlers.ErrorResponse  "Empty patch"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown session or ticket"
// @Failure     409   {object}  handlers.ErrorResponse  "Ticket not confirmed yet or duplicate trigger"
// @Failure     502   {object}  handlers.ErrorResponse  "Record store rejected the update"
// @Router      /sessions/{sid}/tickets/{tid} [patch]
func (h *Handlers) PatchTicket(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	var patch domain.TicketPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	t, err := s.PatchTicket(c.Request.Context(), c.Param("tid"), patch)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// SetParking godoc
// @ID          setParking
// @Summary     Move a vehicle in or out
// @Description Updates the parking status optimistically and records the movement in the parking log.
// @Tags        Tickets
// @Accept      json
// @Produce     json
// @Param       sid   path      string                   true  "Session ID"
// @Param       tid   path      string                   true  "Ticket ID"
// @Param       body  body      handlers.ParkingRequest  true  "In or Out"
// @Success     200   {object}  domain.Ticket
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid action"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown session or ticket"
// @Failure     409   {object}  handlers.ErrorResponse  "Ticket not confirmed yet or duplicate trigger"
// @Failure     502   {object}  handlers.ErrorResponse  "Record store rejected the update"
// @Router      /sessions/{sid}/tickets/{tid}/parking [post]
func (h *Handlers) SetParking(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	var req ParkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	t, err := s.SetParking(c.Request.Context(), c.Param("tid"), trim(req.Action))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// GuestStatus godoc
// @ID          guestStatus
// @Summary     Check a guest in or out
// @Description Stamps the check-in or check-out time, then reloads the room's tickets to pick up server-side changes.
// @Tags        Tickets
// @Accept      json
// @Produce     json
// @Param       sid   path      string                       true  "Session ID"
// @Param       tid   path      string                       true  "Ticket ID"
// @Param       body  body      handlers.GuestStatusRequest  true  "in or out"
// @Success     200   {object}  domain.Ticket
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid status"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown session or ticket"
// @Failure     409   {object}  handlers.ErrorResponse  "Ticket not confirmed yet or duplicate trigger"
// @Failure     502   {object}  handlers.ErrorResponse  "Record store rejected the update"
// @Router      /sessions/{sid}/tickets/{tid}/guest-status [post]
func (h *Handlers) GuestStatus(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	var req GuestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	t, err := s.GuestStatus(c.Request.Context(), c.Param("tid"), trim(req.Status))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// UploadAttachment godoc
// @ID          uploadAttachment
// @Summary     Attach a file to a ticket
// @Description Uploads a file to the ticket's record (multipart field "file").
// @Tags        Tickets
// @Accept      mpfd
// @Param       sid   path      string  true  "Session ID"
// @Param       tid   path      string  true  "Ticket ID"
// @Param       file  formData  file    true  "Attachment"
// @Success     204   "No Content"
// @Failure     400   {object}  handlers.ErrorResponse  "Missing file"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown session or ticket"
// @Failure     409   {object}  handlers.ErrorResponse  "Ticket not confirmed yet"
// @Failure     502   {object}  handlers.ErrorResponse  "Upload failed"
// @Router      /sessions/{sid}/tickets/{tid}/attachments [post]
func (h *Handlers) UploadAttachment(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field \"file\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable file")
		return
	}
	defer f.Close()

	if err := s.Attach(c.Request.Context(), c.Param("tid"), filepath.Base(fh.Filename), f); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
