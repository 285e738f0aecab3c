package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solmara/resort-reservation/internal/model"
)

func investor(tier string) Identity {
	return Identity{UserID: 1, AccessLevel: model.LevelInvestor, InvestorTier: tier, IsActive: true}
}

func TestCanAccessLevels(t *testing.T) {
	tests := []struct {
		name          string
		id            Identity
		requiredLevel string
		requiredTier  string
		want          bool
	}{
		{
			name:          "all level admits guests",
			id:            Identity{UserID: 1, AccessLevel: model.LevelGuest, IsActive: true},
			requiredLevel: model.LevelAll,
			want:          true,
		},
		{
			name:          "empty level treated as public",
			id:            Identity{UserID: 1, AccessLevel: model.LevelGuest, IsActive: true},
			requiredLevel: "",
			want:          true,
		},
		{
			name:          "member level admits members",
			id:            Identity{UserID: 1, AccessLevel: model.LevelMember, IsActive: true},
			requiredLevel: model.LevelMember,
			want:          true,
		},
		{
			name:          "member level admits investors",
			id:            investor(model.TierGold),
			requiredLevel: model.LevelMember,
			want:          true,
		},
		{
			name:          "member level rejects guests",
			id:            Identity{UserID: 1, AccessLevel: model.LevelGuest, IsActive: true},
			requiredLevel: model.LevelMember,
			want:          false,
		},
		{
			name:          "inactive member rejected",
			id:            Identity{UserID: 1, AccessLevel: model.LevelMember, IsActive: false},
			requiredLevel: model.LevelMember,
			want:          false,
		},
		{
			name:          "investor level rejects members",
			id:            Identity{UserID: 1, AccessLevel: model.LevelMember, IsActive: true},
			requiredLevel: model.LevelInvestor,
			want:          false,
		},
		{
			name:          "investor level without tier admits any investor",
			id:            investor(model.TierGold),
			requiredLevel: model.LevelInvestor,
			want:          true,
		},
		{
			name:          "inactive investor rejected",
			id:            Identity{UserID: 1, AccessLevel: model.LevelInvestor, InvestorTier: model.TierDiamond, IsActive: false},
			requiredLevel: model.LevelInvestor,
			want:          false,
		},
		{
			name:          "unknown required level fails closed",
			id:            investor(model.TierDiamond),
			requiredLevel: "VIP",
			want:          false,
		},
		{
			name:          "unknown required tier fails closed",
			id:            investor(model.TierDiamond),
			requiredLevel: model.LevelInvestor,
			requiredTier:  "RUBY",
			want:          false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.id, tt.requiredLevel, tt.requiredTier))
		})
	}
}

// Tier admission is ranked: holding a higher tier always clears a lower
// requirement, never the other way round.
func TestCanAccessTierMonotonicity(t *testing.T) {
	tiers := []string{model.TierGold, model.TierPlatinum, model.TierDiamond}
	for i, held := range tiers {
		for j, required := range tiers {
			got := CanAccess(investor(held), model.LevelInvestor, required)
			assert.Equal(t, i >= j, got, "held=%s required=%s", held, required)
		}
	}
}

func TestMatchesBroadcastTarget(t *testing.T) {
	member := Identity{UserID: 7, AccessLevel: model.LevelMember, IsActive: true}
	guest := Identity{UserID: 8, AccessLevel: model.LevelGuest, IsActive: true}

	tests := []struct {
		name string
		id   Identity
		b    model.Broadcast
		want bool
	}{
		{"all matches everyone", guest, model.Broadcast{TargetType: model.TargetAll}, true},
		{"members matches member", member, model.Broadcast{TargetType: model.TargetMembers}, true},
		{"members matches investor", investor(model.TierGold), model.Broadcast{TargetType: model.TargetMembers}, true},
		{"members rejects guest", guest, model.Broadcast{TargetType: model.TargetMembers}, false},
		{"investors rejects member", member, model.Broadcast{TargetType: model.TargetInvestors}, false},
		{"investors matches investor", investor(model.TierPlatinum), model.Broadcast{TargetType: model.TargetInvestors}, true},
		{"specific matches listed user", member, model.Broadcast{TargetType: model.TargetSpecific, TargetUserIDs: []uint64{3, 7}}, true},
		{"specific rejects unlisted user", member, model.Broadcast{TargetType: model.TargetSpecific, TargetUserIDs: []uint64{3}}, false},
		{"unknown target fails closed", member, model.Broadcast{TargetType: "EVERYONE"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesBroadcastTarget(tt.id, tt.b))
		})
	}
}

// Tier-targeted broadcasts are a flat match: a GOLD broadcast reaches
// gold investors only, not platinum or diamond, and never members.
func TestMatchesBroadcastTargetTierIsFlat(t *testing.T) {
	b := model.Broadcast{TargetType: model.TierGold}

	assert.True(t, MatchesBroadcastTarget(investor(model.TierGold), b))
	assert.False(t, MatchesBroadcastTarget(investor(model.TierPlatinum), b))
	assert.False(t, MatchesBroadcastTarget(investor(model.TierDiamond), b))
	assert.False(t, MatchesBroadcastTarget(Identity{UserID: 2, AccessLevel: model.LevelMember, IsActive: true}, b))
}
