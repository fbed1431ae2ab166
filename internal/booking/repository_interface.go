package booking

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int) (*Booking, error)
	// GetForUpdate locks the booking row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id int) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Booking, error)
	ListByVenue(ctx context.Context, venueID int, status Status, limit, offset int) ([]Booking, error)
	StatsByDay(ctx context.Context, venueID int, from, to time.Time) ([]DailyStats, error)
}
