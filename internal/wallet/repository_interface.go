package wallet

import (
	"context"
	"time"
)

type Repository interface {
	GetBalance(ctx context.Context, userID int) (int64, error)
	// ApplyBalanceChange locks the owner's row and adds delta to the balance.
	// It fails with InsufficientBalance instead of going below zero.
	ApplyBalanceChange(ctx context.Context, userID int, delta int64) (int64, error)
	InsertTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id int) (*Transaction, error)
	// CompleteTopup and FailTopup move a pending topup out of pending. Both
	// return ErrAlreadyProcessed when the row is no longer pending.
	CompleteTopup(ctx context.Context, id, operatorID int, at time.Time) (*Transaction, error)
	FailTopup(ctx context.Context, id, operatorID int, note string, at time.Time) (*Transaction, error)
	SetBalanceAfter(ctx context.Context, id int, balance int64) error
	ListTransactions(ctx context.Context, userID int, filter TransactionFilter) ([]Transaction, error)
	ListPendingTopups(ctx context.Context, limit, offset int) ([]Transaction, error)
	// NetPaidForBooking returns completed payments minus completed refunds for
	// the booking, as a positive amount.
	NetPaidForBooking(ctx context.Context, bookingID int) (int64, error)
	// Reconcile reads the stored balance and the completed ledger sum in one statement.
	Reconcile(ctx context.Context, userID int) (*Reconciliation, error)
}
