package email

import (
	"context"
	"time"

	"warnetbook/internal/logger"
	"warnetbook/internal/user"
)

type UserLookup interface {
	GetByID(ctx context.Context, userID int) (*user.User, error)
}

// Receipts turns committed wallet and booking events into queued mail.
// Failures are logged; a missed receipt never fails the operation that
// produced it.
type Receipts struct {
	mail  *Service
	users UserLookup
	now   func() time.Time
}

func NewReceipts(mail *Service, users UserLookup) *Receipts {
	return &Receipts{mail: mail, users: users, now: time.Now}
}

func (r *Receipts) TopupApproved(ctx context.Context, userID int, amount, balance int64) {
	r.withUser(ctx, userID, "topup_approved", func(u *user.User) error {
		return r.mail.SendTopupApproved(ctx, u.Email, u.FullName, amount, balance)
	})
}

func (r *Receipts) TopupRejected(ctx context.Context, userID int, amount int64, note string) {
	r.withUser(ctx, userID, "topup_rejected", func(u *user.User) error {
		return r.mail.SendTopupRejected(ctx, u.Email, u.FullName, amount, note)
	})
}

func (r *Receipts) BookingPaid(ctx context.Context, userID, bookingID int, amount int64, method string) {
	r.withUser(ctx, userID, "booking_receipt", func(u *user.User) error {
		return r.mail.SendBookingReceipt(ctx, u.Email, u.FullName, bookingID, amount, method, r.now())
	})
}

func (r *Receipts) withUser(ctx context.Context, userID int, kind string, send func(u *user.User) error) {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		logger.WithError(err).Warn("receipt skipped: user lookup failed", "user_id", userID, "type", kind)
		return
	}
	if err := send(u); err != nil {
		logger.WithError(err).Warn("receipt not queued", "user_id", userID, "type", kind)
	}
}
