package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/solmara/resort-reservation/internal/model"
)

// BroadcastRepo provides persistence for broadcasts, their SPECIFIC
// target lists and per-user read receipts. It implements
// notification.Store for the router and exposes the admin write side.
type BroadcastRepo struct{ db *sql.DB }

func NewBroadcastRepo(db *sql.DB) *BroadcastRepo { return &BroadcastRepo{db: db} }

// Create inserts a draft broadcast plus its target user rows (SPECIFIC
// only) in one transaction and populates the generated ID.
func (r *BroadcastRepo) Create(ctx context.Context, b *model.Broadcast) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO broadcasts (title, body, target_type, status) VALUES (?,?,?,?)",
		b.Title, b.Body, b.TargetType, model.BroadcastDraft)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BroadcastDraft
	if b.TargetType == model.TargetSpecific && len(b.TargetUserIDs) > 0 {
		query := "INSERT INTO broadcast_targets (broadcast_id, user_id) VALUES "
		args := make([]any, 0, len(b.TargetUserIDs)*2)
		for i, uid := range b.TargetUserIDs {
			if i > 0 {
				query += ","
			}
			query += "(?,?)"
			args = append(args, b.ID, uid)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Send transitions a draft or scheduled broadcast to SENT. Targeting is
// immutable afterwards; sending an already-sent broadcast returns
// ErrBroadcastSent.
func (r *BroadcastRepo) Send(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE broadcasts SET status=?, sent_at=UTC_TIMESTAMP() WHERE id=? AND status IN (?,?)",
		model.BroadcastSent, id, model.BroadcastDraft, model.BroadcastScheduled)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var status string
		err := r.db.QueryRowContext(ctx, "SELECT status FROM broadcasts WHERE id=?", id).Scan(&status)
		if err == sql.ErrNoRows {
			return ErrBroadcastNotFound
		}
		if err != nil {
			return err
		}
		return ErrBroadcastSent
	}
	return nil
}

const broadcastColumns = "id, title, body, target_type, status, created_at, sent_at"

func scanBroadcast(scan func(dest ...any) error) (model.Broadcast, error) {
	var (
		b      model.Broadcast
		sentAt sql.NullTime
	)
	err := scan(&b.ID, &b.Title, &b.Body, &b.TargetType, &b.Status, &b.CreatedAt, &sentAt)
	if err != nil {
		return model.Broadcast{}, err
	}
	if sentAt.Valid {
		at := sentAt.Time
		b.SentAt = &at
	}
	return b, nil
}

// ListAll returns every broadcast regardless of status, newest first.
// Admin only.
func (r *BroadcastRepo) ListAll(ctx context.Context) ([]model.Broadcast, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+broadcastColumns+" FROM broadcasts ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Broadcast
	for rows.Next() {
		b, err := scanBroadcast(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SentBroadcasts returns all SENT broadcasts newest first, with target
// user ids attached to SPECIFIC rows.
func (r *BroadcastRepo) SentBroadcasts(ctx context.Context) ([]model.Broadcast, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+broadcastColumns+" FROM broadcasts WHERE status=? ORDER BY sent_at DESC, id DESC",
		model.BroadcastSent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Broadcast
	for rows.Next() {
		b, err := scanBroadcast(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].TargetType == model.TargetSpecific {
			ids, err := r.targetUserIDs(ctx, out[i].ID)
			if err != nil {
				return nil, err
			}
			out[i].TargetUserIDs = ids
		}
	}
	return out, nil
}

// SentBroadcast returns a single SENT broadcast, or nil when it does
// not exist or has not been sent.
func (r *BroadcastRepo) SentBroadcast(ctx context.Context, id uint64) (*model.Broadcast, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+broadcastColumns+" FROM broadcasts WHERE id=? AND status=? LIMIT 1",
		id, model.BroadcastSent)
	b, err := scanBroadcast(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if b.TargetType == model.TargetSpecific {
		ids, err := r.targetUserIDs(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.TargetUserIDs = ids
	}
	return &b, nil
}

func (r *BroadcastRepo) targetUserIDs(ctx context.Context, broadcastID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM broadcast_targets WHERE broadcast_id=?", broadcastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReadTimes returns the user's read receipts keyed by broadcast id.
func (r *BroadcastRepo) ReadTimes(ctx context.Context, userID uint64) (map[uint64]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT broadcast_id, read_at FROM broadcast_reads WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64]time.Time)
	for rows.Next() {
		var (
			id uint64
			at time.Time
		)
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		out[id] = at
	}
	return out, rows.Err()
}

// MarkRead appends a read receipt. INSERT IGNORE over the (broadcast_id,
// user_id) primary key makes re-marking a no-op, keeping the original
// timestamp.
func (r *BroadcastRepo) MarkRead(ctx context.Context, userID, broadcastID uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO broadcast_reads (broadcast_id, user_id, read_at) VALUES (?,?,?)",
		broadcastID, userID, at.UTC().Format("2006-01-02 15:04:05"))
	return err
}
