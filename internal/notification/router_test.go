package notification

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmara/resort-reservation/internal/access"
	"github.com/solmara/resort-reservation/internal/model"
)

// memBroadcasts is an in-memory Store for router tests.
type memBroadcasts struct {
	broadcasts []model.Broadcast
	reads      map[uint64]map[uint64]time.Time // userID -> broadcastID -> readAt
}

func newMemBroadcasts(bs ...model.Broadcast) *memBroadcasts {
	return &memBroadcasts{broadcasts: bs, reads: make(map[uint64]map[uint64]time.Time)}
}

func (s *memBroadcasts) SentBroadcasts(context.Context) ([]model.Broadcast, error) {
	out := make([]model.Broadcast, 0, len(s.broadcasts))
	for _, b := range s.broadcasts {
		if b.Status == model.BroadcastSent {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(*out[j].SentAt) })
	return out, nil
}

func (s *memBroadcasts) SentBroadcast(_ context.Context, id uint64) (*model.Broadcast, error) {
	for _, b := range s.broadcasts {
		if b.ID == id && b.Status == model.BroadcastSent {
			cp := b
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memBroadcasts) ReadTimes(_ context.Context, userID uint64) (map[uint64]time.Time, error) {
	out := make(map[uint64]time.Time, len(s.reads[userID]))
	for id, at := range s.reads[userID] {
		out[id] = at
	}
	return out, nil
}

func (s *memBroadcasts) MarkRead(_ context.Context, userID, broadcastID uint64, at time.Time) error {
	if s.reads[userID] == nil {
		s.reads[userID] = make(map[uint64]time.Time)
	}
	if _, ok := s.reads[userID][broadcastID]; !ok {
		s.reads[userID][broadcastID] = at
	}
	return nil
}

func sentAt(offset time.Duration) *time.Time {
	t := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC).Add(offset)
	return &t
}

func sent(id uint64, target string, offset time.Duration) model.Broadcast {
	return model.Broadcast{
		ID:         id,
		Title:      "update",
		TargetType: target,
		Status:     model.BroadcastSent,
		SentAt:     sentAt(offset),
	}
}

func goldInvestor(uid uint64) access.Identity {
	return access.Identity{UserID: uid, AccessLevel: model.LevelInvestor, InvestorTier: model.TierGold, IsActive: true}
}

func TestListForFiltersAndOrders(t *testing.T) {
	store := newMemBroadcasts(
		sent(1, model.TargetAll, 0),
		sent(2, model.TierGold, time.Hour),
		sent(3, model.TierDiamond, 2*time.Hour),
		sent(4, model.TargetInvestors, 3*time.Hour),
		model.Broadcast{ID: 5, TargetType: model.TargetAll, Status: model.BroadcastDraft},
	)
	r := NewRouter(store)
	ctx := context.Background()

	items, err := r.ListFor(ctx, goldInvestor(10))
	require.NoError(t, err)

	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Broadcast.ID)
	}
	// newest first; diamond-targeted and draft rows excluded
	assert.Equal(t, []uint64{4, 2, 1}, ids)
}

func TestListForTierMatchIsFlat(t *testing.T) {
	store := newMemBroadcasts(sent(1, model.TierGold, 0))
	r := NewRouter(store)
	ctx := context.Background()

	items, err := r.ListFor(ctx, goldInvestor(1))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	platinum := access.Identity{UserID: 2, AccessLevel: model.LevelInvestor, InvestorTier: model.TierPlatinum, IsActive: true}
	items, err = r.ListFor(ctx, platinum)
	require.NoError(t, err)
	assert.Empty(t, items)

	member := access.Identity{UserID: 3, AccessLevel: model.LevelMember, IsActive: true}
	items, err = r.ListFor(ctx, member)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	store := newMemBroadcasts(
		sent(1, model.TargetAll, 0),
		sent(2, model.TargetAll, time.Hour),
	)
	r := NewRouter(store)
	ctx := context.Background()
	user := goldInvestor(42)

	n, err := r.UnreadCountFor(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.MarkRead(ctx, user, 1))
	first := store.reads[42][1]

	// re-marking is a no-op, not an error, and keeps the original receipt
	require.NoError(t, r.MarkRead(ctx, user, 1))
	assert.Equal(t, first, store.reads[42][1])

	n, err = r.UnreadCountFor(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := r.ListFor(ctx, user)
	require.NoError(t, err)
	for _, it := range items {
		if it.Broadcast.ID == 1 {
			assert.True(t, it.Read)
			require.NotNil(t, it.ReadAt)
		} else {
			assert.False(t, it.Read)
			assert.Nil(t, it.ReadAt)
		}
	}
}

func TestMarkReadInvisibleBroadcast(t *testing.T) {
	store := newMemBroadcasts(
		sent(1, model.TierDiamond, 0),
		model.Broadcast{ID: 2, TargetType: model.TargetAll, Status: model.BroadcastDraft},
	)
	r := NewRouter(store)
	ctx := context.Background()

	// invisible, unsent and missing broadcasts all look the same
	assert.ErrorIs(t, r.MarkRead(ctx, goldInvestor(1), 1), ErrNotFound)
	assert.ErrorIs(t, r.MarkRead(ctx, goldInvestor(1), 2), ErrNotFound)
	assert.ErrorIs(t, r.MarkRead(ctx, goldInvestor(1), 99), ErrNotFound)
}
