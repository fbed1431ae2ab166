package wallet

import (
	"context"
	"errors"
	"strings"

	"warnetbook/internal/apperr"
	"warnetbook/internal/auth"
	"warnetbook/internal/db"
	"warnetbook/internal/logger"
	"warnetbook/internal/metrics"
)

// Approve credits a pending top-up. The status guard and the balance credit
// share one transaction, so of two concurrent approvals exactly one credits
// and the other fails with ErrAlreadyProcessed.
func (s *service) Approve(ctx context.Context, caller auth.Identity, txID int) (*Transaction, error) {
	if !caller.Role.CanApproveTopups() {
		return nil, apperr.Forbidden("only operators can approve top-ups")
	}

	var t *Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if t, err = s.repo.CompleteTopup(ctx, txID, caller.UserID, s.now()); err != nil {
			return err
		}

		balance, err := s.repo.ApplyBalanceChange(ctx, t.UserID, t.Amount)
		if err != nil {
			return err
		}
		if err := s.repo.SetBalanceAfter(ctx, t.ID, balance); err != nil {
			return err
		}
		t.BalanceAfter = &balance

		s.invalidateAfterCommit(ctx, t.UserID)
		db.AfterCommit(ctx, func() {
			s.notifier.TopupApproved(context.WithoutCancel(ctx), t.UserID, t.Amount, balance)
		})
		return nil
	})
	if err != nil {
		recordDecisionFailure(err)
		return nil, err
	}

	metrics.RecordTopupDecision("approved")
	metrics.RecordLedgerEntry(string(KindTopup), string(StatusCompleted), t.Amount)
	logger.Info("topup approved",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"operator_id", caller.UserID,
		"amount", t.Amount,
	)
	return t, nil
}

// Reject marks a pending top-up failed. The balance is not touched.
func (s *service) Reject(ctx context.Context, caller auth.Identity, txID int, note string) (*Transaction, error) {
	if !caller.Role.CanApproveTopups() {
		return nil, apperr.Forbidden("only operators can reject top-ups")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperr.Validation("rejection note is required")
	}

	var t *Transaction
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if t, err = s.repo.FailTopup(ctx, txID, caller.UserID, note, s.now()); err != nil {
			return err
		}

		db.AfterCommit(ctx, func() {
			s.notifier.TopupRejected(context.WithoutCancel(ctx), t.UserID, t.Amount, note)
		})
		return nil
	})
	if err != nil {
		recordDecisionFailure(err)
		return nil, err
	}

	metrics.RecordTopupDecision("rejected")
	logger.Info("topup rejected",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"operator_id", caller.UserID,
	)
	return t, nil
}

func (s *service) ListPending(ctx context.Context, caller auth.Identity, limit, offset int) ([]Transaction, error) {
	if !caller.Role.CanApproveTopups() {
		return nil, apperr.Forbidden("only operators can review top-ups")
	}
	return s.repo.ListPendingTopups(ctx, limit, offset)
}

func recordDecisionFailure(err error) {
	if errors.Is(err, apperr.ErrConflict) {
		metrics.RecordTopupDecision("conflict")
	}
}
