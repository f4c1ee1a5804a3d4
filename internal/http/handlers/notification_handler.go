// Notification and toast endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rental-console/internal/domain"
	"github.com/tbourn/rental-console/internal/utils"
)

// ListNotifications godoc
// @ID          listNotifications
// @Summary     Activity feed
// @Description Returns a page of the ticket activity feed, newest first, and whether anything arrived since the panel was last opened.
// @Tags        Notifications
// @Produce     json
// @Param       sid        path   string  true   "Session ID"
// @Param       page       query  int     false  "Page (default 1)"
// @Param       page_size  query  int     false  "Page size (default 20, max 100)"
// @Success     200  {object}  handlers.NotificationsResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid}/notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	page, size := clampPagination(c)
	items, unread := s.Notifications()
	p := utils.Paginate(items, page, size)
	ok(c, http.StatusOK, NotificationsResponse{
		Items:     p.Items,
		HasUnread: unread,
		Pagination: Pagination{
			Page:       page,
			PageSize:   size,
			Total:      p.Total,
			TotalPages: p.TotalPages,
			HasNext:    p.HasNext,
		},
	})
}

// SetPanel godoc
// @ID          setNotificationPanel
// @Summary     Open or close the notification panel
// @Description Opening polls at once, switches to the fast cadence and marks the feed read. Closing returns to the slow cadence.
// @Tags        Notifications
// @Accept      json
// @Param       sid   path  string                 true  "Session ID"
// @Param       body  body  handlers.PanelRequest  true  "Panel state"
// @Success     204  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid}/notifications/panel [post]
func (h *Handlers) SetPanel(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	var req PanelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "open is required")
		return
	}
	s.SetPanel(c.Request.Context(), *req.Open)
	noContent(c)
}

// SelectNotification godoc
// @ID          selectNotification
// @Summary     Jump to a notification's ticket
// @Description Navigates to the room and ticket of a feed item. The location is written first; the selection follows once the data is loaded.
// @Tags        Notifications
// @Produce     json
// @Param       sid  path      string  true  "Session ID"
// @Param       nid  path      string  true  "Notification ID"
// @Success     200  {object}  handlers.SelectionResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session or notification"
// @Router      /sessions/{sid}/notifications/{nid}/select [post]
func (h *Handlers) SelectNotification(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	v, err := s.SelectNotification(c.Param("nid"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, selectionResponse(v))
}

// ListToasts godoc
// @ID          listToasts
// @Summary     Visible toasts
// @Tags        Notifications
// @Produce     json
// @Param       sid  path      string  true  "Session ID"
// @Success     200  {object}  handlers.ToastsResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session"
// @Router      /sessions/{sid}/toasts [get]
func (h *Handlers) ListToasts(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	toasts := s.Toasts()
	if toasts == nil {
		toasts = []domain.Toast{}
	}
	ok(c, http.StatusOK, ToastsResponse{Toasts: toasts})
}

// DismissToast godoc
// @ID          dismissToast
// @Summary     Dismiss a toast
// @Tags        Notifications
// @Param       sid  path  string  true  "Session ID"
// @Param       id   path  string  true  "Toast ID"
// @Success     204  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown session or toast"
// @Router      /sessions/{sid}/toasts/{id} [delete]
func (h *Handlers) DismissToast(c *gin.Context) {
	s, found := h.session(c)
	if !found {
		return
	}
	if !s.DismissToast(c.Param("id")) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "toast not found")
		return
	}
	noContent(c)
}
