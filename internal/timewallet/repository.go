package timewallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"warnetbook/internal/apperr"
	"warnetbook/internal/db"
)

var ErrWalletNotFound = apperr.NotFound("time wallet not found")

const walletColumns = `id, user_id, venue_id, remaining_minutes, is_active, last_updated, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Credit(ctx context.Context, userID, venueID int, minutes float64, at time.Time) (*Wallet, error) {
	query := `
		INSERT INTO time_wallets (user_id, venue_id, remaining_minutes, is_active, last_updated)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (user_id, venue_id) DO UPDATE
		SET remaining_minutes = CASE
				WHEN time_wallets.is_active THEN GREATEST(0, time_wallets.remaining_minutes -
					GREATEST(0, EXTRACT(EPOCH FROM (EXCLUDED.last_updated - time_wallets.last_updated)) / 60))
				ELSE time_wallets.remaining_minutes
			END + EXCLUDED.remaining_minutes,
			last_updated = EXCLUDED.last_updated
		RETURNING ` + walletColumns

	var w Wallet
	err := db.Conn(ctx, r.db).GetContext(ctx, &w, query, userID, venueID, minutes, at)
	if db.IsForeignKeyViolation(err) {
		return nil, apperr.NotFound("user or venue not found")
	}
	if err != nil {
		return nil, fmt.Errorf("credit time wallet: %w", err)
	}
	return &w, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Wallet, error) {
	return r.get(ctx, `SELECT `+walletColumns+` FROM time_wallets WHERE id = $1`, id)
}

func (r *repository) GetForUpdate(ctx context.Context, id int) (*Wallet, error) {
	return r.get(ctx, `SELECT `+walletColumns+` FROM time_wallets WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) Find(ctx context.Context, userID, venueID int) (*Wallet, error) {
	return r.get(ctx, `SELECT `+walletColumns+` FROM time_wallets WHERE user_id = $1 AND venue_id = $2`, userID, venueID)
}

func (r *repository) FindForUpdate(ctx context.Context, userID, venueID int) (*Wallet, error) {
	return r.get(ctx, `SELECT `+walletColumns+` FROM time_wallets WHERE user_id = $1 AND venue_id = $2 FOR UPDATE`, userID, venueID)
}

func (r *repository) get(ctx context.Context, query string, args ...interface{}) (*Wallet, error) {
	var w Wallet
	err := db.Conn(ctx, r.db).GetContext(ctx, &w, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get time wallet: %w", err)
	}
	return &w, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Wallet, error) {
	query := `
		SELECT tw.id, tw.user_id, tw.venue_id, v.name AS venue_name,
		       tw.remaining_minutes, tw.is_active, tw.last_updated, tw.created_at
		FROM time_wallets tw
		JOIN venues v ON v.id = tw.venue_id
		WHERE tw.user_id = $1
		ORDER BY v.name
	`

	wallets := []Wallet{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &wallets, query, userID); err != nil {
		return nil, fmt.Errorf("list time wallets: %w", err)
	}
	return wallets, nil
}

func (r *repository) Update(ctx context.Context, w *Wallet) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `
		UPDATE time_wallets
		SET remaining_minutes = $2, is_active = $3, last_updated = $4
		WHERE id = $1
	`, w.ID, w.RemainingMinutes, w.IsActive, w.LastUpdated)
	if err != nil {
		return fmt.Errorf("update time wallet %d: %w", w.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWalletNotFound
	}
	return nil
}
