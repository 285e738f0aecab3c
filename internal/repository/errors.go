// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to read a reservation owned by someone else, while
// ErrVenueNotFound signals a lookup miss on the venues table.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrVenueNotFound is returned when a venue lookup finds no row.
var ErrVenueNotFound = errors.New("venue not found")

// ErrBroadcastNotFound is returned when a broadcast lookup finds no row.
var ErrBroadcastNotFound = errors.New("broadcast not found")

// ErrBroadcastSent is returned when an operation requires a draft or
// scheduled broadcast but the row has already been sent. Targeting is
// immutable after sending. Handlers should translate this into 409.
var ErrBroadcastSent = errors.New("broadcast already sent")
