package wallet

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warnetbook/internal/apperr"
)

func setupWalletMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

var txRowColumns = []string{
	"id", "user_id", "kind", "amount", "status", "booking_id", "description", "proof", "sender_name",
	"approved_by", "approved_at", "rejection_note", "balance_after", "created_at", "updated_at",
}

func TestApplyBalanceChange(t *testing.T) {
	const lockQuery = `SELECT money_balance FROM users WHERE id = $1 FOR UPDATE`
	const updateQuery = `UPDATE users SET money_balance = $1, updated_at = NOW() WHERE id = $2`

	t.Run("credit", func(t *testing.T) {
		repo, mock, close := setupWalletMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta(lockQuery)).WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"money_balance"}).AddRow(int64(1000)))
		mock.ExpectExec(regexp.QuoteMeta(updateQuery)).WithArgs(int64(51000), 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		balance, err := repo.ApplyBalanceChange(context.Background(), 7, 50000)
		require.NoError(t, err)
		assert.Equal(t, int64(51000), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overdraft leaves the row untouched", func(t *testing.T) {
		repo, mock, close := setupWalletMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta(lockQuery)).WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"money_balance"}).AddRow(int64(1000)))

		_, err := repo.ApplyBalanceChange(context.Background(), 7, -1001)
		assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		repo, mock, close := setupWalletMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta(lockQuery)).WithArgs(99).WillReturnError(sql.ErrNoRows)

		_, err := repo.ApplyBalanceChange(context.Background(), 99, 10)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestInsertTransaction(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	now := time.Now()
	bookingID := 5
	balance := int64(70000)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO money_transactions`)).
		WithArgs(7, "payment", int64(-30000), "completed", 5, "Payment for booking #5", "", "", int64(70000)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, now, now))

	tx := &Transaction{
		UserID:       7,
		Kind:         KindPayment,
		Amount:       -30000,
		Status:       StatusCompleted,
		BookingID:    &bookingID,
		Description:  "Payment for booking #5",
		BalanceAfter: &balance,
	}
	require.NoError(t, repo.InsertTransaction(context.Background(), tx))
	assert.Equal(t, 11, tx.ID)
	assert.Equal(t, now, tx.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteTopup(t *testing.T) {
	const guarded = `WHERE id = $1 AND status = 'pending' AND kind = 'topup'`
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pending topup is completed", func(t *testing.T) {
		repo, mock, close := setupWalletMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta(guarded)).WithArgs(10, 1, at).
			WillReturnRows(sqlmock.NewRows(txRowColumns).AddRow(
				10, 7, "topup", int64(50000), "completed", nil, "DompetBowar top-up", "receipt.jpg", "Budi",
				1, at, nil, nil, at, at,
			))

		tx, err := repo.CompleteTopup(context.Background(), 10, 1, at)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, tx.Status)
		assert.Equal(t, 1, *tx.ApprovedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already completed is a conflict", func(t *testing.T) {
		repo, mock, close := setupWalletMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta(guarded)).WithArgs(10, 1, at).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM money_transactions WHERE id = $1`)).WithArgs(10).
			WillReturnRows(sqlmock.NewRows(txRowColumns).AddRow(
				10, 7, "topup", int64(50000), "completed", nil, "", "receipt.jpg", "",
				1, at, nil, int64(50000), at, at,
			))

		_, err := repo.CompleteTopup(context.Background(), 10, 1, at)
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing transaction is not found", func(t *testing.T) {
		repo, mock, close := setupWalletMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta(guarded)).WithArgs(404, 1, at).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM money_transactions WHERE id = $1`)).WithArgs(404).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.CompleteTopup(context.Background(), 404, 1, at)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestFailTopup(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SET status = 'failed'`)).WithArgs(10, 1, at, "blurry proof").
		WillReturnRows(sqlmock.NewRows(txRowColumns).AddRow(
			10, 7, "topup", int64(50000), "failed", nil, "", "receipt.jpg", "",
			1, at, "blurry proof", nil, at, at,
		))

	tx, err := repo.FailTopup(context.Background(), 10, 1, "blurry proof", at)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, tx.Status)
	assert.Equal(t, "blurry proof", *tx.RejectionNote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactions_Filters(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	bookingID := 5
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND kind = $2 AND booking_id = $3 ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`)).
		WithArgs(7, "payment", 5, 50, 0).
		WillReturnRows(sqlmock.NewRows(txRowColumns))

	txs, err := repo.ListTransactions(context.Background(), 7, TransactionFilter{Kind: KindPayment, BookingID: &bookingID})
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.NotNil(t, txs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNetPaidForBooking(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(-SUM(amount), 0)`)).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(30000)))

	net, err := repo.NetPaidForBooking(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), net)
}

func TestReconcile(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`AS ledger_sum FROM users u WHERE u.id = $1`)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"money_balance", "ledger_sum"}).AddRow(int64(70000), int64(65000)))

	rec, err := repo.Reconcile(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.Equal(t, int64(65000), rec.LedgerSum)
}
