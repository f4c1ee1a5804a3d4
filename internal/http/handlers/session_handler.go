// Session and selection endpoints:
//   - POST   /sessions                    (open)
//   - DELETE /sessions/{sid}              (end)
//   - GET    /sessions/{sid}/selection    (current selection)
//   - PUT    /sessions/{sid}/selection    (internal selection change)
//   - POST   /sessions/{sid}/navigation   (browser back/forward or URL change)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rental-console/internal/domain"
)

// OpenSession godoc
// @ID          openSession
// @Summary     Open a console session
// @Description Starts a console session for the operator. Location is the query string the page was opened with; a deep link is applied once the referenced data has loaded.
// @Tags        Sessions
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.OpenSessionRequest  true  "Operator and initial location"
// @Success     201   {object}  handlers.OpenSessionResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sessions [post]
func (h *Handlers) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	user := domain.User{Username: trim(req.Username), Role: trim(req.Role)}
	s, err := h.sessions.Open(c.Request.Context(), user, trim(req.Location))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, OpenSessionResponse{
		SessionID: s.SessionID(),
		Selection: selectionResponse(s.Selection()),
	})
}

// EndSession godoc
// @ID          endSession
// @Summary     End a console session
// @Description Stops the session's timers and clears its session-scoped storage. The read watermark is kept.
// @Tags        Sessions
// @Param       sid  path  string  true  "Session ID"
// @Success     204  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid} [delete]
func (h *Handlers) EndSession(c *gin.Context) {
	if err := h.sessions.End(c.Request.Context(), c.Param("sid")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// GetSelection godoc
// @ID          getSelection
// @Summary     Current selection
// @Description Returns the selected room and ticket, their URL projection and any location target still waiting for data.
// @Tags        Selection
// @Produce     json
// @Param       sid  path      string  true  "Session ID"
// @Success     200  {object}  handlers.SelectionResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid}/selection [get]
func (h *Handlers) GetSelection(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, selectionResponse(s.Selection()))
}

// PutSelection godoc
// @ID          putSelection
// @Summary     Change the selection
// @Description Selects a room and optionally opens one of its tickets. The new state is pushed to the session history.
// @Tags        Selection
// @Accept      json
// @Produce     json
// @Param       sid   path      string                   true  "Session ID"
// @Param       body  body      handlers.SelectRequest   true  "Room and ticket"
// @Success     200   {object}  handlers.SelectionResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown session, room or ticket"
// @Router      /sessions/{sid}/selection [put]
func (h *Handlers) PutSelection(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	v, err := s.Select(c.Request.Context(), trim(req.Room), trim(req.Ticket))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, selectionResponse(v))
}

// Navigate godoc
// @ID          navigate
// @Summary     Replay a browser navigation
// @Description Applies back/forward or a new location to the selection. URL-originated changes never write history.
// @Tags        Selection
// @Accept      json
// @Produce     json
// @Param       sid   path      string                      true  "Session ID"
// @Param       body  body      handlers.NavigationRequest  true  "Direction or location"
// @Success     200   {object}  handlers.NavigationResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid}/navigation [post]
func (h *Handlers) Navigate(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	var req NavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	dir := strings.ToLower(trim(req.Direction))
	switch dir {
	case "", "back", "forward":
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "direction must be back or forward")
		return
	}
	if dir == "" && req.Location == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "direction or location is required")
		return
	}
	v, moved := s.Navigate(dir, trim(req.Location))
	ok(c, http.StatusOK, NavigationResponse{Selection: selectionResponse(v), Moved: moved})
}
