// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is successfully
// confirmed. It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
// EventID is a UUID filled in by the publisher for deduplication.
type ReservationConfirmedEvent struct {
	EventID            string `json:"event_id"`
	ReservationID      uint64 `json:"reservation_id"`
	UserID             uint64 `json:"user_id"`
	VenueID            uint64 `json:"venue_id"`
	VenueName          string `json:"venue_name"`
	VenueKind          string `json:"venue_kind"`
	Quantity           int    `json:"quantity"`
	ConfirmationNumber string `json:"confirmation_number"`
	ConfirmedAt        string `json:"confirmed_at"`
}
