package timewallet

import (
	"context"
	"errors"
	"math"
	"time"

	"warnetbook/internal/apperr"
	"warnetbook/internal/auth"
	"warnetbook/internal/db"
	"warnetbook/internal/logger"
	"warnetbook/internal/metrics"
)

var ErrNoMinutes = apperr.Conflict("time wallet has no remaining minutes")

type Service interface {
	// Credit and Reverse are called by booking inside its own transaction.
	Credit(ctx context.Context, ownerID, venueID int, minutes float64) (*Wallet, error)
	Reverse(ctx context.Context, ownerID, venueID int, minutes float64) (*Wallet, error)
	// Balance is the projected remaining minutes, 0 when no wallet exists.
	Balance(ctx context.Context, ownerID, venueID int) (float64, error)

	OperatorCredit(ctx context.Context, caller auth.Identity, req CreditRequest) (*Wallet, error)
	Activate(ctx context.Context, caller auth.Identity, walletID int) (*Wallet, error)
	Deactivate(ctx context.Context, caller auth.Identity, walletID int) (*Wallet, error)
	SyncRemaining(ctx context.Context, caller auth.Identity, walletID int, reported float64) (*Wallet, error)
	Get(ctx context.Context, caller auth.Identity, ownerID, venueID int) (*Wallet, error)
	ListMine(ctx context.Context, caller auth.Identity) ([]Wallet, error)
}

type service struct {
	repo Repository
	tx   db.Transactor
	now  func() time.Time
}

func NewService(repo Repository, tx db.Transactor) Service {
	return newService(repo, tx)
}

func newService(repo Repository, tx db.Transactor) *service {
	return &service{repo: repo, tx: tx, now: time.Now}
}

func (s *service) Credit(ctx context.Context, ownerID, venueID int, minutes float64) (*Wallet, error) {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return nil, apperr.Validation("minutes must be positive")
	}

	now := s.now()
	w, err := s.repo.Credit(ctx, ownerID, venueID, minutes, now)
	if err != nil {
		return nil, err
	}

	metrics.RecordTimeWalletEvent("credit")
	logger.Info("time wallet credited", "wallet_id", w.ID, "user_id", ownerID, "venue_id", venueID, "minutes", minutes)
	return w.project(now), nil
}

// Reverse takes back minutes granted earlier, never going below zero.
func (s *service) Reverse(ctx context.Context, ownerID, venueID int, minutes float64) (*Wallet, error) {
	if minutes <= 0 {
		return nil, apperr.Validation("minutes must be positive")
	}

	var w *Wallet
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if w, err = s.repo.FindForUpdate(ctx, ownerID, venueID); err != nil {
			return err
		}

		now := s.now()
		metrics.RecordMinutesConsumed(w.settle(now))
		w.RemainingMinutes = math.Max(0, w.RemainingMinutes-minutes)
		if w.RemainingMinutes == 0 {
			w.IsActive = false
		}
		return s.repo.Update(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTimeWalletEvent("reverse")
	return w.project(w.LastUpdated), nil
}

func (s *service) Balance(ctx context.Context, ownerID, venueID int) (float64, error) {
	w, err := s.repo.Find(ctx, ownerID, venueID)
	if errors.Is(err, ErrWalletNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.RemainingAt(s.now()), nil
}

func (s *service) OperatorCredit(ctx context.Context, caller auth.Identity, req CreditRequest) (*Wallet, error) {
	if !caller.Role.CanManageAnyAccount() {
		return nil, apperr.Forbidden("only operators can credit time wallets")
	}
	return s.Credit(ctx, req.UserID, req.VenueID, req.Minutes)
}

func (s *service) Activate(ctx context.Context, caller auth.Identity, walletID int) (*Wallet, error) {
	return s.mutate(ctx, caller, walletID, "activate", func(w *Wallet, now time.Time) error {
		metrics.RecordMinutesConsumed(w.settle(now))
		if w.RemainingMinutes <= 0 {
			w.IsActive = false
			return ErrNoMinutes
		}
		w.IsActive = true
		return nil
	})
}

func (s *service) Deactivate(ctx context.Context, caller auth.Identity, walletID int) (*Wallet, error) {
	return s.mutate(ctx, caller, walletID, "deactivate", func(w *Wallet, now time.Time) error {
		metrics.RecordMinutesConsumed(w.settle(now))
		w.IsActive = false
		return nil
	})
}

// SyncRemaining replaces the balance with a client-side countdown, clamped at
// zero. Drain up to now is folded first so last_updated restarts from the
// reported value.
func (s *service) SyncRemaining(ctx context.Context, caller auth.Identity, walletID int, reported float64) (*Wallet, error) {
	if math.IsNaN(reported) || math.IsInf(reported, 0) {
		return nil, apperr.Validation("remaining_minutes must be a finite number")
	}

	return s.mutate(ctx, caller, walletID, "sync", func(w *Wallet, now time.Time) error {
		metrics.RecordMinutesConsumed(w.settle(now))
		w.RemainingMinutes = math.Max(0, reported)
		return nil
	})
}

func (s *service) mutate(ctx context.Context, caller auth.Identity, walletID int, event string, fn func(w *Wallet, now time.Time) error) (*Wallet, error) {
	var w *Wallet
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if w, err = s.repo.GetForUpdate(ctx, walletID); err != nil {
			return err
		}
		if !caller.CanAccess(w.UserID) {
			return apperr.Forbidden("cannot modify another user's time wallet")
		}

		if err := fn(w, s.now()); err != nil {
			return err
		}
		return s.repo.Update(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTimeWalletEvent(event)
	logger.Debug("time wallet "+event,
		"wallet_id", w.ID,
		"remaining_minutes", w.RemainingMinutes,
		"is_active", w.IsActive,
	)
	return w.project(w.LastUpdated), nil
}

func (s *service) Get(ctx context.Context, caller auth.Identity, ownerID, venueID int) (*Wallet, error) {
	if !caller.CanAccess(ownerID) {
		return nil, apperr.Forbidden("cannot view another user's time wallet")
	}

	w, err := s.repo.Find(ctx, ownerID, venueID)
	if err != nil {
		return nil, err
	}
	return w.project(s.now()), nil
}

func (s *service) ListMine(ctx context.Context, caller auth.Identity) ([]Wallet, error) {
	wallets, err := s.repo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range wallets {
		wallets[i].project(now)
	}
	return wallets, nil
}
