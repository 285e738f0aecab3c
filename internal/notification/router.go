// Package notification resolves which sent broadcasts a user should
// see, tracks per-user read state and computes unread counts.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/solmara/resort-reservation/internal/access"
	"github.com/solmara/resort-reservation/internal/model"
)

// ErrNotFound is returned when a broadcast does not exist, has not been
// sent, or is not visible to the requesting user. Invisible broadcasts
// are indistinguishable from missing ones on purpose.
var ErrNotFound = errors.New("broadcast not found")

// Store is the persistence boundary of the router. The MySQL
// implementation lives in internal/repository.
type Store interface {
	// SentBroadcasts returns all SENT broadcasts ordered newest first,
	// with target user ids populated for SPECIFIC rows.
	SentBroadcasts(ctx context.Context) ([]model.Broadcast, error)

	// SentBroadcast returns a single SENT broadcast by id, or nil.
	SentBroadcast(ctx context.Context, id uint64) (*model.Broadcast, error)

	// ReadTimes returns the user's read timestamps keyed by broadcast id.
	ReadTimes(ctx context.Context, userID uint64) (map[uint64]time.Time, error)

	// MarkRead records that the user read the broadcast at the given
	// instant. Implementations must be idempotent: re-marking an
	// already-read broadcast leaves the original timestamp untouched.
	MarkRead(ctx context.Context, userID, broadcastID uint64, at time.Time) error
}

// Item is a broadcast annotated with the requesting user's read state.
type Item struct {
	Broadcast model.Broadcast
	Read      bool
	ReadAt    *time.Time
}

// Router filters stored broadcasts down to the ones a user's access
// profile matches. Targeting decisions are delegated to
// access.MatchesBroadcastTarget, which applies the flat tier rule.
type Router struct {
	store Store
}

// NewRouter constructs a Router over the given store.
func NewRouter(store Store) *Router {
	if store == nil {
		panic("nil store passed to NewRouter")
	}
	return &Router{store: store}
}

// ListFor returns the sent broadcasts visible to the identity, newest
// first, each annotated with whether the user has read it.
func (r *Router) ListFor(ctx context.Context, id access.Identity) ([]Item, error) {
	broadcasts, err := r.store.SentBroadcasts(ctx)
	if err != nil {
		return nil, err
	}
	reads, err := r.store.ReadTimes(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(broadcasts))
	for _, b := range broadcasts {
		if !access.MatchesBroadcastTarget(id, b) {
			continue
		}
		item := Item{Broadcast: b}
		if at, ok := reads[b.ID]; ok {
			item.Read = true
			t := at
			item.ReadAt = &t
		}
		items = append(items, item)
	}
	return items, nil
}

// UnreadCountFor returns how many visible sent broadcasts the user has
// not read yet.
func (r *Router) UnreadCountFor(ctx context.Context, id access.Identity) (int, error) {
	items, err := r.ListFor(ctx, id)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

// MarkRead records the identity's read receipt for a broadcast. Marking
// an already-read broadcast is a no-op success. Broadcasts that do not
// exist, are unsent, or are invisible to the user yield ErrNotFound.
func (r *Router) MarkRead(ctx context.Context, id access.Identity, broadcastID uint64) error {
	b, err := r.store.SentBroadcast(ctx, broadcastID)
	if err != nil {
		return err
	}
	if b == nil || !access.MatchesBroadcastTarget(id, *b) {
		return ErrNotFound
	}
	return r.store.MarkRead(ctx, id.UserID, broadcastID, time.Now().UTC())
}
