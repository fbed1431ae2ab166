package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"warnetbook/internal/apperr"
	"warnetbook/internal/db"
)

var ErrVenueNotFound = apperr.NotFound("venue not found")

const venueColumns = `id, name, address, description, regular_price_per_hour, member_price_per_hour,
	total_resources, operating_hours, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	query := `
		INSERT INTO venues (name, address, description, regular_price_per_hour, member_price_per_hour, total_resources, operating_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + venueColumns

	var v Venue
	err := db.Conn(ctx, r.db).GetContext(ctx, &v, query,
		req.Name, req.Address, req.Description,
		req.RegularPricePerHour, req.MemberPricePerHour,
		req.TotalResources, req.OperatingHours,
	)
	if err != nil {
		return nil, fmt.Errorf("insert venue: %w", err)
	}

	return &v, nil
}

func (r *repository) List(ctx context.Context) ([]Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues ORDER BY name ASC`

	venues := []Venue{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &venues, query); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}

	return venues, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`

	var v Venue
	err := db.Conn(ctx, r.db).GetContext(ctx, &v, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get venue %d: %w", id, err)
	}

	return &v, nil
}
