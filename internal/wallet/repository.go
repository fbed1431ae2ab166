package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"warnetbook/internal/apperr"
	"warnetbook/internal/db"
)

var (
	ErrInsufficientBalance = apperr.InsufficientBalance("insufficient balance")
	ErrAlreadyProcessed    = apperr.Conflict("transaction already processed")
	ErrTransactionNotFound = apperr.NotFound("transaction not found")
	ErrUserNotFound        = apperr.NotFound("user not found")
)

const transactionColumns = `id, user_id, kind, amount, status, booking_id, description, proof, sender_name,
	approved_by, approved_at, rejection_note, balance_after, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetBalance(ctx context.Context, userID int) (int64, error) {
	var balance int64
	err := db.Conn(ctx, r.db).GetContext(ctx, &balance, `SELECT money_balance FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func (r *repository) ApplyBalanceChange(ctx context.Context, userID int, delta int64) (int64, error) {
	q := db.Conn(ctx, r.db)

	var balance int64
	err := q.GetContext(ctx, &balance, `SELECT money_balance FROM users WHERE id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock balance: %w", err)
	}

	newBalance := balance + delta
	if newBalance < 0 {
		return 0, ErrInsufficientBalance
	}

	_, err = q.ExecContext(ctx, `
		UPDATE users
		SET money_balance = $1, updated_at = NOW()
		WHERE id = $2
	`, newBalance, userID)
	if err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}

	return newBalance, nil
}

func (r *repository) InsertTransaction(ctx context.Context, tx *Transaction) error {
	query := `
		INSERT INTO money_transactions (user_id, kind, amount, status, booking_id, description, proof, sender_name, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := db.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		tx.UserID, tx.Kind, tx.Amount, tx.Status, tx.BookingID,
		tx.Description, tx.Proof, tx.SenderName, tx.BalanceAfter,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert %s transaction: %w", tx.Kind, err)
	}
	return nil
}

func (r *repository) GetTransaction(ctx context.Context, id int) (*Transaction, error) {
	var tx Transaction
	err := db.Conn(ctx, r.db).GetContext(ctx, &tx,
		`SELECT `+transactionColumns+` FROM money_transactions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return &tx, nil
}

func (r *repository) CompleteTopup(ctx context.Context, id, operatorID int, at time.Time) (*Transaction, error) {
	query := `
		UPDATE money_transactions
		SET status = 'completed', approved_by = $2, approved_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'pending' AND kind = 'topup'
		RETURNING ` + transactionColumns

	return r.decideTopup(ctx, id, query, id, operatorID, at)
}

func (r *repository) FailTopup(ctx context.Context, id, operatorID int, note string, at time.Time) (*Transaction, error) {
	query := `
		UPDATE money_transactions
		SET status = 'failed', approved_by = $2, approved_at = $3, rejection_note = $4, updated_at = $3
		WHERE id = $1 AND status = 'pending' AND kind = 'topup'
		RETURNING ` + transactionColumns

	return r.decideTopup(ctx, id, query, id, operatorID, at, note)
}

// decideTopup runs a guarded status update. Under concurrent decisions the
// loser blocks on the row lock, re-evaluates the WHERE clause against the
// committed row and matches nothing.
func (r *repository) decideTopup(ctx context.Context, id int, query string, args ...interface{}) (*Transaction, error) {
	var tx Transaction
	err := db.Conn(ctx, r.db).GetContext(ctx, &tx, query, args...)
	if err == nil {
		return &tx, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decide topup %d: %w", id, err)
	}

	if _, err := r.GetTransaction(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyProcessed
}

func (r *repository) SetBalanceAfter(ctx context.Context, id int, balance int64) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE money_transactions SET balance_after = $2 WHERE id = $1`, id, balance)
	if err != nil {
		return fmt.Errorf("set balance_after: %w", err)
	}
	return nil
}

func (r *repository) ListTransactions(ctx context.Context, userID int, filter TransactionFilter) ([]Transaction, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.BookingID != nil {
		args = append(args, *filter.BookingID)
		where = append(where, fmt.Sprintf("booking_id = $%d", len(args)))
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM money_transactions
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, transactionColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	txs := []Transaction{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *repository) ListPendingTopups(ctx context.Context, limit, offset int) ([]Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM money_transactions
		WHERE status = 'pending' AND kind = 'topup'
		ORDER BY created_at ASC, id ASC
		LIMIT $1 OFFSET $2
	`

	txs := []Transaction{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &txs, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list pending topups: %w", err)
	}
	return txs, nil
}

func (r *repository) NetPaidForBooking(ctx context.Context, bookingID int) (int64, error) {
	var net int64
	err := db.Conn(ctx, r.db).GetContext(ctx, &net, `
		SELECT COALESCE(-SUM(amount), 0)
		FROM money_transactions
		WHERE booking_id = $1 AND status = 'completed' AND kind IN ('payment', 'refund')
	`, bookingID)
	if err != nil {
		return 0, fmt.Errorf("sum booking payments: %w", err)
	}
	return net, nil
}

func (r *repository) Reconcile(ctx context.Context, userID int) (*Reconciliation, error) {
	var row struct {
		MoneyBalance int64 `db:"money_balance"`
		LedgerSum    int64 `db:"ledger_sum"`
	}
	err := db.Conn(ctx, r.db).GetContext(ctx, &row, `
		SELECT u.money_balance,
		       COALESCE((
		           SELECT SUM(t.amount)
		           FROM money_transactions t
		           WHERE t.user_id = u.id AND t.status = 'completed'
		       ), 0) AS ledger_sum
		FROM users u
		WHERE u.id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reconcile user %d: %w", userID, err)
	}

	return &Reconciliation{
		UserID:       userID,
		MoneyBalance: row.MoneyBalance,
		LedgerSum:    row.LedgerSum,
		Consistent:   row.MoneyBalance == row.LedgerSum,
	}, nil
}
