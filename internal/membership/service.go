package membership

import (
	"context"
	"time"

	"warnetbook/internal/apperr"
	"warnetbook/internal/auth"
	"warnetbook/internal/db"
	"warnetbook/internal/logger"
)

type Service interface {
	Join(ctx context.Context, caller auth.Identity, venueID int) (*Membership, error)
	ListMine(ctx context.Context, caller auth.Identity) ([]Membership, error)
	// IsMember reports whether the caller gets member pricing at venueID.
	IsMember(ctx context.Context, caller auth.Identity, venueID int) (bool, error)
	ListByVenue(ctx context.Context, caller auth.Identity, venueID, limit, offset int) ([]VenueMember, error)
}

type service struct {
	repo Repository
	tx   db.Transactor
	now  func() time.Time
}

func NewService(repo Repository, tx db.Transactor) Service {
	return &service{repo: repo, tx: tx, now: time.Now}
}

func (s *service) Join(ctx context.Context, caller auth.Identity, venueID int) (*Membership, error) {
	if caller.IsOperator() {
		return nil, apperr.Forbidden("operator accounts cannot hold memberships")
	}

	var m *Membership
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if m, err = s.repo.Create(ctx, caller.UserID, venueID); err != nil {
			return err
		}
		return s.repo.PromoteToMember(ctx, caller.UserID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("membership created", "user_id", caller.UserID, "venue_id", venueID)
	return m, nil
}

func (s *service) ListMine(ctx context.Context, caller auth.Identity) ([]Membership, error) {
	return s.repo.ListByUser(ctx, caller.UserID)
}

func (s *service) IsMember(ctx context.Context, caller auth.Identity, venueID int) (bool, error) {
	if !caller.Role.MemberPricing() {
		return false, nil
	}
	return s.repo.Exists(ctx, caller.UserID, venueID)
}

// ListByVenue is the operator roster for one venue.
func (s *service) ListByVenue(ctx context.Context, caller auth.Identity, venueID, limit, offset int) ([]VenueMember, error) {
	if !caller.Role.CanManageAnyAccount() {
		return nil, apperr.Forbidden("only operators can list venue members")
	}

	ok, err := s.repo.VenueExists(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVenueNotFound
	}
	return s.repo.ListByVenue(ctx, venueID, s.now(), limit, offset)
}
