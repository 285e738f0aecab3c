package model

import "time"

// Access levels stored in users.access_level. GUEST accounts exist for
// invited visitors who have not purchased a membership; MEMBER is the
// default for self-registration; INVESTOR unlocks tier-gated venues.
const (
	LevelGuest    = "GUEST"
	LevelMember   = "MEMBER"
	LevelInvestor = "INVESTOR"
)

// Investor tiers stored in users.investor_tier. The column is NULL for
// non-investors. Tiers are ranked GOLD < PLATINUM < DIAMOND for venue
// admission; broadcast targeting matches them exactly (see internal/access).
const (
	TierGold     = "GOLD"
	TierPlatinum = "PLATINUM"
	TierDiamond  = "DIAMOND"
)

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column. The json tags are omitted
// because these structs are used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// InvestorTier is empty for GUEST and MEMBER accounts. Promotion to
// investor sets AccessLevel and InvestorTier together in one statement
// so the pair can never be observed half-updated.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	AccessLevel  string    // users.access_level
	InvestorTier string    // users.investor_tier (empty when NULL)
	IsAdmin      bool      // users.is_admin
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation. The plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
