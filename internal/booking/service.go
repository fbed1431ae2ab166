package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warnetbook/internal/apperr"
	"warnetbook/internal/auth"
	"warnetbook/internal/db"
	"warnetbook/internal/logger"
	"warnetbook/internal/metrics"
	"warnetbook/internal/timewallet"
	"warnetbook/internal/venue"
	"warnetbook/internal/wallet"
)

var (
	ErrNotPayable    = apperr.Conflict("booking payment is not pending")
	ErrNotCancelable = apperr.Conflict("booking can no longer be cancelled")
	ErrNotStartable  = apperr.Conflict("booking is not paid or already finished")
	ErrNotActive     = apperr.Conflict("booking has no active session")
)

// Collaborators, narrowed to what booking calls.
type (
	Venues interface {
		GetByID(ctx context.Context, id int) (*venue.Venue, error)
	}

	Memberships interface {
		IsMember(ctx context.Context, caller auth.Identity, venueID int) (bool, error)
	}

	Wallet interface {
		Payment(ctx context.Context, ownerID, bookingID int, amount int64) (*wallet.Transaction, error)
		Refund(ctx context.Context, ownerID int, bookingID *int, amount int64, description string) (*wallet.Transaction, error)
		PaidForBooking(ctx context.Context, bookingID int) (int64, error)
	}

	TimeWallets interface {
		Credit(ctx context.Context, ownerID, venueID int, minutes float64) (*timewallet.Wallet, error)
		Reverse(ctx context.Context, ownerID, venueID int, minutes float64) (*timewallet.Wallet, error)
		Balance(ctx context.Context, ownerID, venueID int) (float64, error)
	}

	// Notifier is told about paid bookings after commit.
	Notifier interface {
		BookingPaid(ctx context.Context, userID, bookingID int, amount int64, method string)
	}
)

// Rules are the venue-independent booking policies.
type Rules struct {
	MinHours            int
	FirstMemberMinHours int
	CancelWindow        time.Duration
}

type Deps struct {
	Repo        Repository
	Venues      Venues
	Memberships Memberships
	Wallet      Wallet
	TimeWallets TimeWallets
	Notifier    Notifier
	Tx          db.Transactor
}

type Service interface {
	Create(ctx context.Context, caller auth.Identity, req CreateBookingRequest) (*Booking, error)
	ConfirmPayment(ctx context.Context, caller auth.Identity, bookingID int, req ConfirmPaymentRequest) (*Booking, error)
	Cancel(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error)
	StartSession(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error)
	Complete(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error)
	Get(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error)
	Remaining(ctx context.Context, caller auth.Identity, bookingID int) (*float64, error)
	ListMine(ctx context.Context, caller auth.Identity, limit, offset int) ([]Booking, error)
	ListByVenue(ctx context.Context, caller auth.Identity, venueID int, status Status, limit, offset int) ([]Booking, error)
	Stats(ctx context.Context, caller auth.Identity, venueID int, from, to time.Time) ([]DailyStats, error)
}

type service struct {
	Deps
	rules Rules
	now   func() time.Time
}

func NewService(deps Deps, rules Rules) Service {
	return newService(deps, rules)
}

func newService(deps Deps, rules Rules) *service {
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if rules.MinHours < 1 {
		rules.MinHours = 1
	}
	if rules.FirstMemberMinHours < rules.MinHours {
		rules.FirstMemberMinHours = rules.MinHours
	}
	if rules.CancelWindow <= 0 {
		rules.CancelWindow = 2 * time.Minute
	}
	return &service{Deps: deps, rules: rules, now: time.Now}
}

func (s *service) Create(ctx context.Context, caller auth.Identity, req CreateBookingRequest) (*Booking, error) {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, apperr.Validation("time must be HH:MM")
	}
	if req.DurationHours <= 0 {
		return nil, apperr.Validation("duration_hours must be positive")
	}

	v, err := s.Venues.GetByID(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if !v.HasResource(req.ResourceNumber) {
		return nil, apperr.Validation(fmt.Sprintf("resource_number must be between 1 and %d", v.TotalResources))
	}

	isMember, err := s.Memberships.IsMember(ctx, caller, v.ID)
	if err != nil {
		return nil, err
	}

	minimum, err := s.minimumHours(ctx, caller.UserID, v.ID, isMember)
	if err != nil {
		return nil, err
	}
	if req.DurationHours < minimum {
		return nil, apperr.Validation(fmt.Sprintf("minimum booking is %d hour(s)", minimum))
	}

	b := &Booking{
		UserID:          caller.UserID,
		VenueID:         v.ID,
		ResourceNumber:  req.ResourceNumber,
		BookingDate:     req.Date,
		BookingTime:     req.Time,
		DurationHours:   req.DurationHours,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PricePerHour:    v.Rate(isMember),
		TotalPrice:      v.PriceFor(isMember, req.DurationHours),
		IsMemberBooking: isMember,
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition("created", "")
	logger.Info("booking created",
		"booking_id", b.ID,
		"user_id", b.UserID,
		"venue_id", b.VenueID,
		"member", b.IsMemberBooking,
		"total_price", b.TotalPrice,
	)
	return b, nil
}

// minimumHours applies the first-time member minimum while the member holds
// no prepaid minutes at the venue.
func (s *service) minimumHours(ctx context.Context, userID, venueID int, isMember bool) (int, error) {
	if !isMember {
		return s.rules.MinHours, nil
	}

	balance, err := s.TimeWallets.Balance(ctx, userID, venueID)
	if err != nil {
		return 0, err
	}
	if balance <= 0 {
		return s.rules.FirstMemberMinHours, nil
	}
	return s.rules.MinHours, nil
}

func (s *service) ConfirmPayment(ctx context.Context, caller auth.Identity, bookingID int, req ConfirmPaymentRequest) (*Booking, error) {
	method := req.Method
	if method == "" {
		method = MethodWallet
	}

	var b *Booking
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if b, err = s.Repo.GetForUpdate(ctx, bookingID); err != nil {
			return err
		}

		switch method {
		case MethodWallet:
			if !caller.Owns(b.UserID) {
				return apperr.Forbidden("only the booking owner can pay from their wallet")
			}
		case MethodTransfer:
			if !caller.IsOperator() {
				return apperr.Forbidden("only operators can confirm transfer payments")
			}
		default:
			return apperr.Validation("unknown payment method")
		}

		if b.PaymentStatus != PaymentPending || b.Status != StatusPending {
			return ErrNotPayable
		}

		if method == MethodWallet {
			if _, err := s.Wallet.Payment(ctx, b.UserID, b.ID, b.TotalPrice); err != nil {
				return err
			}
		}

		now := s.now()
		cancelUntil := now.Add(s.rules.CancelWindow)
		b.PaymentStatus = PaymentPaid
		b.PaymentMethod = &method
		b.PaidAt = &now
		b.CanCancelUntil = &cancelUntil

		if b.IsMemberBooking {
			if _, err := s.TimeWallets.Credit(ctx, b.UserID, b.VenueID, b.Minutes()); err != nil {
				return err
			}
		}

		if err := s.Repo.Update(ctx, b); err != nil {
			return err
		}

		paid := *b
		db.AfterCommit(ctx, func() {
			s.Notifier.BookingPaid(context.WithoutCancel(ctx), paid.UserID, paid.ID, paid.TotalPrice, string(method))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition("paid", string(method))
	logger.Info("booking paid", "booking_id", b.ID, "method", method, "amount", b.TotalPrice)
	return s.project(b), nil
}

func (s *service) Cancel(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error) {
	var b *Booking
	var refunded int64
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if b, err = s.Repo.GetForUpdate(ctx, bookingID); err != nil {
			return err
		}
		if !caller.Owns(b.UserID) {
			return apperr.Forbidden("only the booking owner can cancel it")
		}
		if !b.CanCancel(s.now()) {
			return ErrNotCancelable
		}

		b.Status = StatusCancelled

		if refunded, err = s.Wallet.PaidForBooking(ctx, b.ID); err != nil {
			return err
		}
		if refunded > 0 {
			if _, err := s.Wallet.Refund(ctx, b.UserID, &b.ID, refunded, ""); err != nil {
				return err
			}
		}

		if b.IsMemberBooking && b.PaymentStatus == PaymentPaid {
			_, err := s.TimeWallets.Reverse(ctx, b.UserID, b.VenueID, b.Minutes())
			if err != nil && !errors.Is(err, timewallet.ErrWalletNotFound) {
				return err
			}
		}

		return s.Repo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition("cancelled", "")
	logger.Info("booking cancelled", "booking_id", b.ID, "refunded", refunded)
	return s.project(b), nil
}

func (s *service) StartSession(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error) {
	var b *Booking
	var started bool
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if b, err = s.Repo.GetForUpdate(ctx, bookingID); err != nil {
			return err
		}
		if !caller.CanAccess(b.UserID) {
			return apperr.Forbidden("cannot start another user's session")
		}
		if b.IsSessionActive {
			return nil
		}
		if (b.Status != StatusPending && b.Status != StatusActive) || b.PaymentStatus != PaymentPaid {
			return ErrNotStartable
		}

		now := s.now()
		b.SessionStartTime = &now
		b.IsSessionActive = true
		b.Status = StatusActive
		started = true
		return s.Repo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if started {
		metrics.RecordBookingTransition("started", "")
		logger.Info("booking session started", "booking_id", b.ID)
	}
	return s.project(b), nil
}

func (s *service) Complete(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error) {
	var b *Booking
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if b, err = s.Repo.GetForUpdate(ctx, bookingID); err != nil {
			return err
		}
		if !caller.CanAccess(b.UserID) {
			return apperr.Forbidden("cannot complete another user's session")
		}
		if b.Status != StatusActive {
			return ErrNotActive
		}

		b.complete(s.now())
		return s.Repo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition("completed", "")
	return s.project(b), nil
}

// Get returns the booking, first closing a session whose time has run out.
func (s *service) Get(ctx context.Context, caller auth.Identity, bookingID int) (*Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(b.UserID) {
		return nil, apperr.Forbidden("cannot view another user's booking")
	}

	if b.expired(s.now()) {
		if b, err = s.expire(ctx, bookingID); err != nil {
			return nil, err
		}
	}
	return s.project(b), nil
}

func (s *service) expire(ctx context.Context, bookingID int) (*Booking, error) {
	var b *Booking
	var changed bool
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if b, err = s.Repo.GetForUpdate(ctx, bookingID); err != nil {
			return err
		}
		if !b.expired(s.now()) {
			return nil
		}

		b.complete(b.sessionEnd())
		changed = true
		return s.Repo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.RecordBookingTransition("expired", "")
		logger.Info("booking session expired", "booking_id", b.ID)
	}
	return b, nil
}

func (s *service) Remaining(ctx context.Context, caller auth.Identity, bookingID int) (*float64, error) {
	b, err := s.Get(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	return b.RemainingMinutes, nil
}

func (s *service) ListMine(ctx context.Context, caller auth.Identity, limit, offset int) ([]Booking, error) {
	bookings, err := s.Repo.ListByUser(ctx, caller.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.projectAll(bookings), nil
}

func (s *service) ListByVenue(ctx context.Context, caller auth.Identity, venueID int, status Status, limit, offset int) ([]Booking, error) {
	if !caller.IsOperator() {
		return nil, apperr.Forbidden("only operators can list venue bookings")
	}

	bookings, err := s.Repo.ListByVenue(ctx, venueID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.projectAll(bookings), nil
}

func (s *service) project(b *Booking) *Booking {
	b.RemainingMinutes = b.Remaining(s.now())
	return b
}

func (s *service) projectAll(bookings []Booking) []Booking {
	for i := range bookings {
		s.project(&bookings[i])
	}
	return bookings
}

type nopNotifier struct{}

func (nopNotifier) BookingPaid(context.Context, int, int, int64, string) {}
