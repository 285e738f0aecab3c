// Package access decides what a user's membership level and investor
// tier entitle them to. It is pure: no storage, no side effects.
// Unknown enum values always fail closed.
package access

import "github.com/solmara/resort-reservation/internal/model"

// Identity is the verified (user, level, tier, active) tuple extracted
// from the access token by the JWT middleware. Downstream code trusts
// it as-is.
type Identity struct {
	UserID       uint64
	AccessLevel  string
	InvestorTier string
	IsActive     bool
}

// TierRank maps an investor tier to its position in the GOLD <
// PLATINUM < DIAMOND ordering. Unknown tiers (including the empty
// string) rank 0, below every real tier.
func TierRank(tier string) int {
	switch tier {
	case model.TierGold:
		return 1
	case model.TierPlatinum:
		return 2
	case model.TierDiamond:
		return 3
	default:
		return 0
	}
}

// CanAccess reports whether the identity may use a resource gated by
// requiredLevel and, for investor-gated resources, requiredTier.
//
// Tier comparison here is RANKED: a diamond investor clears a
// gold-gated venue. Broadcast targeting uses the flat rule in
// MatchesBroadcastTarget instead; the two are intentionally different
// and must not be unified.
func CanAccess(id Identity, requiredLevel, requiredTier string) bool {
	switch requiredLevel {
	case model.LevelAll, "":
		return true
	case model.LevelMember:
		return id.IsActive && (id.AccessLevel == model.LevelMember || id.AccessLevel == model.LevelInvestor)
	case model.LevelInvestor:
		if !id.IsActive || id.AccessLevel != model.LevelInvestor {
			return false
		}
		if requiredTier == "" {
			return true
		}
		want := TierRank(requiredTier)
		if want == 0 {
			// unknown required tier, fail closed
			return false
		}
		return TierRank(id.InvestorTier) >= want
	default:
		return false
	}
}

// MatchesBroadcastTarget reports whether a broadcast is visible to the
// identity. Tier targets match EXACTLY: a GOLD broadcast is not shown
// to platinum or diamond investors, and vice versa. This mirrors
// long-standing product behavior and deliberately diverges from the
// ranked comparison used by CanAccess.
func MatchesBroadcastTarget(id Identity, b model.Broadcast) bool {
	switch b.TargetType {
	case model.TargetAll:
		return true
	case model.TargetMembers:
		return id.AccessLevel == model.LevelMember || id.AccessLevel == model.LevelInvestor
	case model.TargetInvestors:
		return id.AccessLevel == model.LevelInvestor
	case model.TierGold, model.TierPlatinum, model.TierDiamond:
		return id.AccessLevel == model.LevelInvestor && id.InvestorTier == b.TargetType
	case model.TargetSpecific:
		for _, uid := range b.TargetUserIDs {
			if uid == id.UserID {
				return true
			}
		}
		return false
	default:
		return false
	}
}
