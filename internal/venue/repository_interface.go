package venue

import "context"

type Repository interface {
	Create(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	List(ctx context.Context) ([]Venue, error)
	GetByID(ctx context.Context, id int) (*Venue, error)
}
