package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"warnetbook/internal/apperr"
	"warnetbook/internal/db"
)

var (
	ErrBookingNotFound = apperr.NotFound("booking not found")
	ErrSlotTaken       = apperr.Conflict("workstation is already booked for this slot")
)

const bookingColumns = `id, user_id, venue_id, resource_number, booking_date::text AS booking_date, booking_time,
	duration_hours, status, payment_status, payment_method, session_start_time, session_end_time,
	is_session_active, price_per_hour, total_price, is_member_booking, can_cancel_until, paid_at,
	created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (user_id, venue_id, resource_number, booking_date, booking_time, duration_hours,
			status, payment_status, price_per_hour, total_price, is_member_booking)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + bookingColumns

	err := db.Conn(ctx, r.db).GetContext(ctx, b, query,
		b.UserID, b.VenueID, b.ResourceNumber, b.BookingDate, b.BookingTime, b.DurationHours,
		b.Status, b.PaymentStatus, b.PricePerHour, b.TotalPrice, b.IsMemberBooking,
	)
	switch {
	case db.IsUniqueViolation(err):
		return ErrSlotTaken
	case db.IsForeignKeyViolation(err):
		return apperr.NotFound("venue not found")
	case err != nil:
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *repository) GetForUpdate(ctx context.Context, id int) (*Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) get(ctx context.Context, query string, id int) (*Booking, error) {
	var b Booking
	err := db.Conn(ctx, r.db).GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return &b, nil
}

func (r *repository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET status = $2, payment_status = $3, payment_method = $4, session_start_time = $5,
			session_end_time = $6, is_session_active = $7, can_cancel_until = $8, paid_at = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := db.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		b.ID, b.Status, b.PaymentStatus, b.PaymentMethod, b.SessionStartTime,
		b.SessionEndTime, b.IsSessionActive, b.CanCancelUntil, b.PaidAt,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("update booking %d: %w", b.ID, err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID, limit, offset int) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	bookings := []Booking{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &bookings, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

func (r *repository) ListByVenue(ctx context.Context, venueID int, status Status, limit, offset int) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE venue_id = $1 AND ($2::text = '' OR status = $2)
		ORDER BY booking_date DESC, booking_time DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	bookings := []Booking{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &bookings, query, venueID, status, limit, offset); err != nil {
		return nil, fmt.Errorf("list venue bookings: %w", err)
	}
	return bookings, nil
}
