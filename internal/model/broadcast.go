package model

import "time"

// Broadcast target types stored in broadcasts.target_type. The tier
// values (GOLD, PLATINUM, DIAMOND) intentionally reuse the investor
// tier constants: a tier-targeted broadcast matches that tier exactly
// and does not cascade to higher tiers.
const (
	TargetAll       = "ALL"
	TargetMembers   = "MEMBERS"
	TargetInvestors = "INVESTORS"
	TargetSpecific  = "SPECIFIC"
)

// Broadcast statuses. Targeting becomes immutable once SENT.
const (
	BroadcastDraft     = "DRAFT"
	BroadcastScheduled = "SCHEDULED"
	BroadcastSent      = "SENT"
)

// Broadcast is an admin-authored notification aimed at a segment of
// users. It mirrors the `broadcasts` table; TargetUserIDs comes from
// the broadcast_targets join table and is populated only when
// TargetType is SPECIFIC.
//
// Per-user read state lives in the broadcast_reads join table and is
// append-only: a user's read row is written at most once.
type Broadcast struct {
	ID            uint64     // broadcasts.id
	Title         string     // broadcasts.title
	Body          string     // broadcasts.body
	TargetType    string     // broadcasts.target_type
	TargetUserIDs []uint64   // broadcast_targets.user_id rows
	Status        string     // broadcasts.status
	CreatedAt     time.Time  // broadcasts.created_at
	SentAt        *time.Time // broadcasts.sent_at (nullable)
}
