// Package handlers implements the console HTTP API on top of console
// sessions.
//
// Every error response carries a stable snake_case code from this file;
// clients branch on the code, the message is for display.
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "ticket_pending",
//	  "message": "ticket is not confirmed yet"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rental-console/internal/mutation"
	"github.com/tbourn/rental-console/internal/notify"
	"github.com/tbourn/rental-console/internal/recordstore"
	"github.com/tbourn/rental-console/internal/selection"
	"github.com/tbourn/rental-console/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Console-specific:
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeTicketPending   = "ticket_pending"
	ErrCodeNoRoomSelected  = "no_room_selected"
	ErrCodeDuplicate       = "duplicate_trigger"
	ErrCodeMutationFailed  = "mutation_failed"
	ErrCodeUpstream        = "upstream_failed"
)

// failErr maps a service error onto the error envelope.
func failErr(c *gin.Context, err error) {
	var (
		merr *mutation.Error
		serr *recordstore.StatusError
	)
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		fail(c, http.StatusNotFound, ErrCodeSessionNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidUser),
		errors.Is(err, services.ErrInvalidPatch),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrInvalidView):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, notify.ErrUnknownItem),
		errors.Is(err, selection.ErrUnknownRoom),
		errors.Is(err, selection.ErrUnknownTicket):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrTicketPending):
		fail(c, http.StatusConflict, ErrCodeTicketPending, err.Error())
	case errors.Is(err, selection.ErrNoRoom):
		fail(c, http.StatusConflict, ErrCodeNoRoomSelected, err.Error())
	case errors.Is(err, mutation.ErrSuppressed):
		fail(c, http.StatusConflict, ErrCodeDuplicate, err.Error())
	case errors.As(err, &merr):
		fail(c, http.StatusBadGateway, ErrCodeMutationFailed, merr.Error())
	case errors.As(err, &serr):
		fail(c, http.StatusBadGateway, ErrCodeUpstream, serr.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
