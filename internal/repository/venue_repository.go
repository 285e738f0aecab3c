package repository

import (
	"context"
	"database/sql"

	"github.com/solmara/resort-reservation/internal/model"
)

// VenueRepo provides CRUD operations for venues. Utilization is NOT
// writable through this repository; the only code path allowed to touch
// venues.current_utilization is the booking store's conditional update.
type VenueRepo struct{ db *sql.DB }

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = "id, name, kind, description, capacity, current_utilization, required_level, required_tier, is_active, created_at, updated_at"

func scanVenue(scan func(dest ...any) error) (model.Venue, error) {
	var (
		v        model.Venue
		capacity sql.NullInt64
		tier     sql.NullString
	)
	err := scan(&v.ID, &v.Name, &v.Kind, &v.Description, &capacity, &v.CurrentUtilization,
		&v.RequiredLevel, &tier, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return model.Venue{}, err
	}
	if capacity.Valid {
		c := uint32(capacity.Int64)
		v.Capacity = &c
	}
	if tier.Valid {
		v.RequiredTier = tier.String
	}
	return v, nil
}

// Create inserts a venue and populates its generated ID.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	var capacity any
	if v.Capacity != nil {
		capacity = *v.Capacity
	}
	var tier any
	if v.RequiredTier != "" {
		tier = v.RequiredTier
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (name, kind, description, capacity, required_level, required_tier) VALUES (?,?,?,?,?,?)`,
		v.Name, v.Kind, v.Description, capacity, v.RequiredLevel, tier)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID returns a venue by id. Returns ErrVenueNotFound on a miss.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+venueColumns+" FROM venues WHERE id=? LIMIT 1", id)
	v, err := scanVenue(row.Scan)
	if err == sql.ErrNoRows {
		return model.Venue{}, ErrVenueNotFound
	}
	return v, err
}

// ListActive returns all active venues, newest first. Used by the
// public browse endpoints.
func (r *VenueRepo) ListActive(ctx context.Context) ([]model.Venue, error) {
	return r.list(ctx, "SELECT "+venueColumns+" FROM venues WHERE is_active=1 ORDER BY id DESC")
}

// ListAll returns every venue including deactivated ones. Admin only.
func (r *VenueRepo) ListAll(ctx context.Context) ([]model.Venue, error) {
	return r.list(ctx, "SELECT "+venueColumns+" FROM venues ORDER BY id DESC")
}

func (r *VenueRepo) list(ctx context.Context, query string) ([]model.Venue, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Venue
	for rows.Next() {
		v, err := scanVenue(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a venue. Capacity may be
// raised below current utilization without breaking the invariant:
// existing reservations stand, and new bookings are rejected until
// cancellations bring the counter back under the new limit.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	var capacity any
	if v.Capacity != nil {
		capacity = *v.Capacity
	}
	var tier any
	if v.RequiredTier != "" {
		tier = v.RequiredTier
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET name=?, kind=?, description=?, capacity=?, required_level=?, required_tier=?, is_active=? WHERE id=?`,
		v.Name, v.Kind, v.Description, capacity, v.RequiredLevel, tier, v.IsActive, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// could also be an update with identical values; confirm existence
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM venues WHERE id=?", v.ID).Scan(&one); err == sql.ErrNoRows {
			return ErrVenueNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Deactivate hides a venue from browsing and booking without deleting
// its reservation history.
func (r *VenueRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE venues SET is_active=0 WHERE id=? AND is_active=1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM venues WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrVenueNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
