package venue

import (
	"context"
	"strings"

	"warnetbook/internal/apperr"
)

type Service interface {
	Create(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	List(ctx context.Context) ([]Venue, error)
	Get(ctx context.Context, id int) (*Venue, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)

	switch {
	case req.Name == "" || req.Address == "":
		return nil, apperr.Validation("name and address are required")
	case !req.RegularPricePerHour.IsPositive():
		return nil, apperr.Validation("regular price per hour must be positive")
	case req.MemberPricePerHour.IsNegative():
		return nil, apperr.Validation("member price per hour must not be negative")
	case req.TotalResources <= 0:
		return nil, apperr.Validation("total resources must be positive")
	}

	if req.MemberPricePerHour.IsZero() {
		req.MemberPricePerHour = req.RegularPricePerHour
	}

	return s.repo.Create(ctx, req)
}

func (s *service) List(ctx context.Context) ([]Venue, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*Venue, error) {
	return s.repo.GetByID(ctx, id)
}
