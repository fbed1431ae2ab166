package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"warnetbook/internal/apperr"
	"warnetbook/internal/db"
)

var (
	ErrAlreadyMember = apperr.Conflict("already a member of this venue")
	ErrVenueNotFound = apperr.NotFound("venue not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID, venueID int) (*Membership, error) {
	query := `
		INSERT INTO memberships (user_id, venue_id)
		VALUES ($1, $2)
		RETURNING id, user_id, venue_id, created_at
	`

	var m Membership
	err := db.Conn(ctx, r.db).GetContext(ctx, &m, query, userID, venueID)
	switch {
	case db.IsUniqueViolation(err):
		return nil, ErrAlreadyMember
	case db.IsForeignKeyViolation(err):
		return nil, ErrVenueNotFound
	case err != nil:
		return nil, fmt.Errorf("insert membership: %w", err)
	}

	return &m, nil
}

func (r *repository) Exists(ctx context.Context, userID, venueID int) (bool, error) {
	ok, err := db.Exists(ctx, db.Conn(ctx, r.db),
		`SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = $1 AND venue_id = $2)`,
		userID, venueID,
	)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Membership, error) {
	query := `
		SELECT m.id, m.user_id, m.venue_id, v.name AS venue_name, m.created_at
		FROM memberships m
		JOIN venues v ON v.id = m.venue_id
		WHERE m.user_id = $1
		ORDER BY m.created_at DESC
	`

	memberships := []Membership{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &memberships, query, userID); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return memberships, nil
}

// PromoteToMember upgrades a patron account. Other roles are left unchanged.
func (r *repository) PromoteToMember(ctx context.Context, userID int) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx, `
		UPDATE users
		SET role = 'member', updated_at = NOW()
		WHERE id = $1 AND role = 'patron'
	`, userID)
	if err != nil {
		return fmt.Errorf("promote user %d: %w", userID, err)
	}
	return nil
}

func (r *repository) VenueExists(ctx context.Context, venueID int) (bool, error) {
	ok, err := db.Exists(ctx, db.Conn(ctx, r.db), `SELECT EXISTS(SELECT 1 FROM venues WHERE id = $1)`, venueID)
	if err != nil {
		return false, fmt.Errorf("check venue: %w", err)
	}
	return ok, nil
}

func (r *repository) ListByVenue(ctx context.Context, venueID int, at time.Time, limit, offset int) ([]VenueMember, error) {
	query := `
		SELECT u.id AS user_id, u.full_name, u.email, u.role, u.money_balance, m.created_at AS member_since,
		       tw.id AS time_wallet_id, tw.remaining_minutes, tw.is_active, tw.last_updated,
		       CASE WHEN tw.is_active
		            THEN GREATEST(0, tw.remaining_minutes -
		                 GREATEST(0, EXTRACT(EPOCH FROM ($2::timestamptz - tw.last_updated)) / 60))
		            ELSE tw.remaining_minutes
		       END AS remaining_minutes_now
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN time_wallets tw ON tw.user_id = m.user_id AND tw.venue_id = m.venue_id
		WHERE m.venue_id = $1
		ORDER BY u.full_name ASC, u.id ASC
		LIMIT $3 OFFSET $4
	`

	members := []VenueMember{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &members, query, venueID, at, limit, offset); err != nil {
		return nil, fmt.Errorf("list venue members: %w", err)
	}
	return members, nil
}
