// Cached view endpoints. Each returns the cache snapshot as-is (data,
// is_loading, error, stored_at) with a weak ETag; ?wait=true blocks until the
// first load of a cold key completes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListRooms godoc
// @ID          listRooms
// @Summary     Room list
// @Description Returns the cached room list. With mine=true only rooms managed by the session's operator are returned.
// @Tags        Views
// @Produce     json
// @Param       sid            path    string  true   "Session ID"
// @Param       mine           query   bool    false  "Only rooms I manage"
// @Param       wait           query   bool    false  "Block until the first load completes"
// @Param       If-None-Match  header  string  false  "Weak ETag from a previous response"
// @Success     200  {object}  handlers.RoomsResponse
// @Success     304  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid}/rooms [get]
func (h *Handlers) ListRooms(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	ctx, block, cancel := h.blocking(c)
	defer cancel()
	mine := c.Query("mine") == "true" || c.Query("mine") == "1"

	v := s.Rooms(ctx, mine, block)
	if notModified(c, weakETag(v.Key, v.StoredAt, v.Data)) {
		return
	}
	ok(c, http.StatusOK, roomsResponse(v))
}

// ListRoomTickets godoc
// @ID          listRoomTickets
// @Summary     Tickets of a room
// @Description Returns the cached tickets of a room (default: the selected room), newest first, with pending optimistic edits applied. q ranks tickets by text relevance.
// @Tags        Views
// @Produce     json
// @Param       sid            path    string  true   "Session ID"
// @Param       room           query   string  false  "Room number (default: selected room)"
// @Param       q              query   string  false  "Text search"
// @Param       wait           query   bool    false  "Block until the first load completes"
// @Param       If-None-Match  header  string  false  "Weak ETag from a previous response"
// @Success     200  {object}  handlers.TicketsResponse
// @Success     304  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Failure     409  {object}  handlers.ErrorResponse  "No room selected"
// @Router      /sessions/{sid}/tickets [get]
func (h *Handlers) ListRoomTickets(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	ctx, block, cancel := h.blocking(c)
	defer cancel()

	v, err := s.RoomTickets(ctx, trim(c.Query("room")), trim(c.Query("q")), block)
	if err != nil {
		failErr(c, err)
		return
	}
	if notModified(c, weakETag(v.Key, v.StoredAt, v.Data)) {
		return
	}
	ok(c, http.StatusOK, ticketsResponse(v))
}

// ListTickets godoc
// @ID          listTickets
// @Summary     Tickets across rooms
// @Description Returns the cached global ticket list, optionally bounded by a created date range. The range is part of the cache key.
// @Tags        Views
// @Produce     json
// @Param       sid            path    string  true   "Session ID"
// @Param       start          query   string  false  "Range start (YYYY-MM-DD)"
// @Param       end            query   string  false  "Range end (YYYY-MM-DD)"
// @Param       q              query   string  false  "Text search"
// @Param       wait           query   bool    false  "Block until the first load completes"
// @Param       If-None-Match  header  string  false  "Weak ETag from a previous response"
// @Success     200  {object}  handlers.TicketsResponse
// @Success     304  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid}/tickets/all [get]
func (h *Handlers) ListTickets(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	ctx, block, cancel := h.blocking(c)
	defer cancel()

	v := s.Tickets(ctx, trim(c.Query("start")), trim(c.Query("end")), trim(c.Query("q")), block)
	if notModified(c, weakETag(v.Key, v.StoredAt, v.Data)) {
		return
	}
	ok(c, http.StatusOK, ticketsResponse(v))
}

// ListParking godoc
// @ID          listParking
// @Summary     Parking board
// @Description Returns parking tickets merged with owner and management parking, newest first.
// @Tags        Views
// @Produce     json
// @Param       sid            path    string  true   "Session ID"
// @Param       q              query   string  false  "Text search"
// @Param       wait           query   bool    false  "Block until the first load completes"
// @Param       If-None-Match  header  string  false  "Weak ETag from a previous response"
// @Success     200  {object}  handlers.TicketsResponse
// @Success     304  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid}/parking [get]
func (h *Handlers) ListParking(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	ctx, block, cancel := h.blocking(c)
	defer cancel()

	v := s.Parking(ctx, trim(c.Query("q")), block)
	if notModified(c, weakETag(v.Key, v.StoredAt, v.Data)) {
		return
	}
	ok(c, http.StatusOK, ticketsResponse(v))
}

// ParkingHistory godoc
// @ID          parkingHistory
// @Summary     Parking log of a ticket
// @Description Reads the vehicle movements recorded for a ticket. Not cached.
// @Tags        Views
// @Produce     json
// @Param       sid  path  string  true  "Session ID"
// @Param       tid  path  string  true  "Ticket ID"
// @Success     200  {array}   domain.ParkingLogEntry
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session or ticket"
// @Failure     502  {object}  handlers.ErrorResponse  "Record store failure"
// @Router      /sessions/{sid}/tickets/{tid}/parking-history [get]
func (h *Handlers) ParkingHistory(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	logs, err := s.ParkingHistory(c.Request.Context(), c.Param("tid"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, logs)
}

// Refetch godoc
// @ID          refetch
// @Summary     Reload a view
// @Description Starts a non-silent reload of a view; is_loading is true until it completes. Cached data stays visible meanwhile.
// @Tags        Views
// @Accept      json
// @Param       sid   path  string                   true  "Session ID"
// @Param       body  body  handlers.RefetchRequest  true  "View to reload"
// @Success     202  "Accepted"
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown view"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Failure     409  {object}  handlers.ErrorResponse  "No room selected"
// @Router      /sessions/{sid}/refetch [post]
func (h *Handlers) Refetch(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	var req RefetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := s.Refetch(c.Request.Context(), trim(req.View), trim(req.Room), trim(req.Start), trim(req.End)); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
