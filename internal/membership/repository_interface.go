package membership

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID, venueID int) (*Membership, error)
	Exists(ctx context.Context, userID, venueID int) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]Membership, error)
	PromoteToMember(ctx context.Context, userID int) error
	VenueExists(ctx context.Context, venueID int) (bool, error)
	// ListByVenue projects active time wallets to at.
	ListByVenue(ctx context.Context, venueID int, at time.Time, limit, offset int) ([]VenueMember, error)
}
