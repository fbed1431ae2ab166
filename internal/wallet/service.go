package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"warnetbook/internal/apperr"
	"warnetbook/internal/auth"
	"warnetbook/internal/db"
	"warnetbook/internal/logger"
	"warnetbook/internal/metrics"
)

// Notifier is told about top-up decisions once they are committed.
type Notifier interface {
	TopupApproved(ctx context.Context, userID int, amount, balance int64)
	TopupRejected(ctx context.Context, userID int, amount int64, note string)
}

type Service interface {
	RequestTopup(ctx context.Context, caller auth.Identity, req TopupRequest) (*Transaction, error)
	Approve(ctx context.Context, caller auth.Identity, txID int) (*Transaction, error)
	Reject(ctx context.Context, caller auth.Identity, txID int, note string) (*Transaction, error)
	ListPending(ctx context.Context, caller auth.Identity, limit, offset int) ([]Transaction, error)

	// Payment and Refund are called by booking inside its own transaction;
	// the caller has already checked ownership.
	Payment(ctx context.Context, ownerID, bookingID int, amount int64) (*Transaction, error)
	Refund(ctx context.Context, ownerID int, bookingID *int, amount int64, description string) (*Transaction, error)
	IssueRefund(ctx context.Context, caller auth.Identity, req RefundRequest) (*Transaction, error)
	PaidForBooking(ctx context.Context, bookingID int) (int64, error)

	GetBalance(ctx context.Context, caller auth.Identity, ownerID int) (*Balance, error)
	ListTransactions(ctx context.Context, caller auth.Identity, ownerID int, filter TransactionFilter) ([]Transaction, error)
	Reconcile(ctx context.Context, ownerID int) (*Reconciliation, error)
}

type service struct {
	repo     Repository
	tx       db.Transactor
	cache    BalanceCache
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, tx db.Transactor, cache BalanceCache, notifier Notifier) Service {
	return newService(repo, tx, cache, notifier)
}

func newService(repo Repository, tx db.Transactor, cache BalanceCache, notifier Notifier) *service {
	if cache == nil {
		cache = NopBalanceCache{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &service{
		repo:     repo,
		tx:       tx,
		cache:    cache,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *service) RequestTopup(ctx context.Context, caller auth.Identity, req TopupRequest) (*Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperr.Validation("amount must be positive")
	}
	proof := strings.TrimSpace(req.Proof)
	if proof == "" {
		return nil, apperr.Validation("proof of transfer is required")
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "DompetBowar top-up"
	}

	t := &Transaction{
		UserID:      caller.UserID,
		Kind:        KindTopup,
		Amount:      req.Amount,
		Status:      StatusPending,
		Description: description,
		Proof:       proof,
		SenderName:  strings.TrimSpace(req.SenderName),
	}
	if err := s.repo.InsertTransaction(ctx, t); err != nil {
		return nil, err
	}

	metrics.RecordLedgerEntry(string(KindTopup), string(StatusPending), t.Amount)
	logger.Info("topup requested", "transaction_id", t.ID, "user_id", t.UserID, "amount", t.Amount)
	return t, nil
}

func (s *service) Payment(ctx context.Context, ownerID, bookingID int, amount int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, apperr.Validation("payment amount must be positive")
	}

	t := &Transaction{
		UserID:      ownerID,
		Kind:        KindPayment,
		Amount:      -amount,
		Status:      StatusCompleted,
		BookingID:   &bookingID,
		Description: fmt.Sprintf("Payment for booking #%d", bookingID),
	}
	if err := s.post(ctx, t); err != nil {
		if errors.Is(err, apperr.ErrInsufficientBalance) {
			metrics.RecordInsufficientBalance()
		}
		return nil, err
	}
	return t, nil
}

func (s *service) Refund(ctx context.Context, ownerID int, bookingID *int, amount int64, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, apperr.Validation("refund amount must be positive")
	}

	if description == "" && bookingID != nil {
		description = fmt.Sprintf("Refund for booking #%d", *bookingID)
	}

	t := &Transaction{
		UserID:      ownerID,
		Kind:        KindRefund,
		Amount:      amount,
		Status:      StatusCompleted,
		BookingID:   bookingID,
		Description: description,
	}
	if err := s.post(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) IssueRefund(ctx context.Context, caller auth.Identity, req RefundRequest) (*Transaction, error) {
	if !caller.Role.CanManageAnyAccount() {
		return nil, apperr.Forbidden("only operators can issue refunds")
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = fmt.Sprintf("Refund issued by operator #%d", caller.UserID)
	}
	return s.Refund(ctx, req.UserID, req.BookingID, req.Amount, description)
}

// post applies a completed entry: the balance change and its ledger row
// commit together or not at all.
func (s *service) post(ctx context.Context, t *Transaction) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		balance, err := s.repo.ApplyBalanceChange(ctx, t.UserID, t.Amount)
		if err != nil {
			return err
		}
		t.BalanceAfter = &balance

		if err := s.repo.InsertTransaction(ctx, t); err != nil {
			return err
		}

		s.invalidateAfterCommit(ctx, t.UserID)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordLedgerEntry(string(t.Kind), string(t.Status), t.Amount)
	logger.Info("ledger entry posted",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"kind", t.Kind,
		"amount", t.Amount,
		"balance_after", *t.BalanceAfter,
	)
	return nil
}

func (s *service) invalidateAfterCommit(ctx context.Context, userID int) {
	db.AfterCommit(ctx, func() {
		if err := s.cache.Invalidate(context.WithoutCancel(ctx), userID); err != nil {
			logger.WithError(err).Warn("balance cache invalidation failed", "user_id", userID)
		}
	})
}

func (s *service) PaidForBooking(ctx context.Context, bookingID int) (int64, error) {
	return s.repo.NetPaidForBooking(ctx, bookingID)
}

func (s *service) GetBalance(ctx context.Context, caller auth.Identity, ownerID int) (*Balance, error) {
	if !caller.CanAccess(ownerID) {
		return nil, apperr.Forbidden("cannot view another user's wallet")
	}

	entry, cacheErr := s.cache.Get(ctx, ownerID)
	if cacheErr != nil {
		logger.WithError(cacheErr).Warn("balance cache read failed", "user_id", ownerID)
	}
	metrics.RecordBalanceCache(entry.Hit)
	if entry.Hit {
		return &Balance{UserID: ownerID, MoneyBalance: entry.Balance}, nil
	}

	balance, err := s.repo.GetBalance(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if cacheErr == nil {
		if err := s.cache.Fill(ctx, ownerID, balance, entry.Generation); err != nil {
			logger.WithError(err).Warn("balance cache write failed", "user_id", ownerID)
		}
	}
	return &Balance{UserID: ownerID, MoneyBalance: balance}, nil
}

func (s *service) ListTransactions(ctx context.Context, caller auth.Identity, ownerID int, filter TransactionFilter) ([]Transaction, error) {
	if !caller.CanAccess(ownerID) {
		return nil, apperr.Forbidden("cannot list another user's transactions")
	}
	return s.repo.ListTransactions(ctx, ownerID, filter)
}

func (s *service) Reconcile(ctx context.Context, ownerID int) (*Reconciliation, error) {
	rec, err := s.repo.Reconcile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !rec.Consistent {
		logger.Error("ledger mismatch",
			"user_id", ownerID,
			"money_balance", rec.MoneyBalance,
			"ledger_sum", rec.LedgerSum,
		)
	}
	return rec, nil
}

type nopNotifier struct{}

func (nopNotifier) TopupApproved(context.Context, int, int64, int64)  {}
func (nopNotifier) TopupRejected(context.Context, int, int64, string) {}
