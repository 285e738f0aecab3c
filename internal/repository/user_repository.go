package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/solmara/resort-reservation/internal/model"
	"github.com/solmara/resort-reservation/internal/utils"
)

// UserRepo provides data access to the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// ErrInvalidTier is returned by Promote for unknown tier values.
var ErrInvalidTier = errors.New("invalid investor tier")

// Create inserts a user with the default MEMBER level and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, access_level) VALUES (?,?,?)",
		email, hash, model.LevelMember)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "id, email, password_hash, access_level, investor_tier, is_admin, is_active, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u    model.User
		tier sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.AccessLevel, &tier,
		&u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if tier.Valid {
		u.InvestorTier = tier.String
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Promote upgrades a user to investor at the given tier. Level and tier
// are written in a single statement so the pair is never observed
// half-updated. Accounts are never downgraded automatically; repeated
// promotions simply adjust the tier.
func (r *UserRepo) Promote(ctx context.Context, id uint64, tier string) error {
	switch tier {
	case model.TierGold, model.TierPlatinum, model.TierDiamond:
	default:
		return ErrInvalidTier
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET access_level=?, investor_tier=? WHERE id=?",
		model.LevelInvestor, tier, id)
	return err
}

// SetActive toggles the is_active flag. Inactive accounts keep their
// data but fail every gated admission check.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", active, id)
	return err
}
