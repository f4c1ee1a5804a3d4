// Package services defines the console session layer: it owns the console
// sessions and wires the cache, mutation, selection and notification
// components of each session to the record store.
//
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrSessionNotFound indicates that the session id is unknown or the
	// session has ended.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidUser is returned when a session is opened without a username.
	ErrInvalidUser = errors.New("username is required")

	// ErrInvalidPatch is returned for a ticket patch that changes nothing.
	ErrInvalidPatch = errors.New("patch changes nothing")

	// ErrInvalidAction is returned for an unknown parking or guest action.
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidView is returned when a refetch names an unknown view.
	ErrInvalidView = errors.New("unknown view")

	// ErrTicketNotFound indicates the ticket is in none of the mounted views.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketPending is returned for writes to a ticket whose creation has
	// not been confirmed by the record store yet.
	ErrTicketPending = errors.New("ticket is not confirmed yet")
)
