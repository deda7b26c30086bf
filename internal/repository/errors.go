// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting SQL driver errors. For example,
// ErrAlreadyResolved indicates that a negotiation has already reached
// a terminal state and cannot be responded to again.
package repository

import "errors"

// ErrNotFound is returned when a referenced row (user, booking or
// negotiation) does not exist. Handlers should translate this into an
// HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidNegotiation is returned when a negotiation cannot be
// initiated because its booking reference is stale: the named responder
// does not currently own the booking, or requester and responder are the
// same user. Nothing is written in this case.
var ErrInvalidNegotiation = errors.New("invalid negotiation")

// ErrAlreadyResolved is returned when responding to a negotiation that
// is no longer pending. The stored status is left untouched; a second
// response is rejected rather than silently re-applied.
var ErrAlreadyResolved = errors.New("negotiation already resolved")
