package model

import "time"

// Venue kinds stored in venues.kind. The kind selects the confirmation
// number prefix stamped on reservations (see utils.KindPrefix).
const (
	KindEvent      = "EVENT"
	KindLodging    = "LODGING"
	KindRestaurant = "RESTAURANT"
	KindConcierge  = "CONCIERGE"
	KindFleet      = "FLEET"
)

// LevelAll marks a venue as bookable by any authenticated account
// regardless of membership level. Stored in venues.required_level
// alongside LevelMember and LevelInvestor.
const LevelAll = "ALL"

// Venue represents a bookable resource with finite capacity: a scheduled
// event, a lodging unit, a restaurant sitting, a concierge slot or a
// fleet item. It mirrors the `venues` table.
//
// Capacity is nil when the venue is unlimited. CurrentUtilization is the
// sum of quantities across active reservations; it is mutated only
// through the booking ledger's conditional update so that it can never
// exceed Capacity, even under concurrent requests.
//
// RequiredTier is empty unless RequiredLevel is INVESTOR and the venue
// is restricted to a minimum tier.
type Venue struct {
	ID                 uint64    // venues.id
	Name               string    // venues.name
	Kind               string    // venues.kind
	Description        string    // venues.description
	Capacity           *uint32   // venues.capacity (NULL = unlimited)
	CurrentUtilization uint32    // venues.current_utilization
	RequiredLevel      string    // venues.required_level (ALL, MEMBER, INVESTOR)
	RequiredTier       string    // venues.required_tier (empty when NULL)
	IsActive           bool      // venues.is_active
	CreatedAt          time.Time // venues.created_at
	UpdatedAt          time.Time // venues.updated_at
}
