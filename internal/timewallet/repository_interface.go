package timewallet

import (
	"context"
	"time"
)

type Repository interface {
	// Credit adds minutes to the (user, venue) wallet, creating it inactive
	// when absent. An active wallet has its drain folded in first.
	Credit(ctx context.Context, userID, venueID int, minutes float64, at time.Time) (*Wallet, error)
	GetByID(ctx context.Context, id int) (*Wallet, error)
	GetForUpdate(ctx context.Context, id int) (*Wallet, error)
	Find(ctx context.Context, userID, venueID int) (*Wallet, error)
	FindForUpdate(ctx context.Context, userID, venueID int) (*Wallet, error)
	ListByUser(ctx context.Context, userID int) ([]Wallet, error)
	Update(ctx context.Context, w *Wallet) error
}
