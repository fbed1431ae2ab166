package booking

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warnetbook/internal/apperr"
)

func setupBookingMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

var bookingRow = []string{
	"id", "user_id", "venue_id", "resource_number", "booking_date", "booking_time",
	"duration_hours", "status", "payment_status", "payment_method", "session_start_time", "session_end_time",
	"is_session_active", "price_per_hour", "total_price", "is_member_booking", "can_cancel_until", "paid_at",
	"created_at", "updated_at",
}

func newBookingRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(bookingRow).AddRow(
		5, 7, 3, 4, "2024-05-01", "19:00",
		2, "pending", "pending", nil, nil, nil,
		false, "4000.00", int64(8000), true, nil, nil,
		now, now,
	)
}

func TestCreateBooking(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bookings`)).
		WithArgs(7, 3, 4, "2024-05-01", "19:00", 2, "pending", "pending", "4000", int64(8000), true).
		WillReturnRows(newBookingRow(now))

	b := &Booking{
		UserID: 7, VenueID: 3, ResourceNumber: 4, BookingDate: "2024-05-01", BookingTime: "19:00",
		DurationHours: 2, Status: StatusPending, PaymentStatus: PaymentPending,
		PricePerHour: decimal.NewFromInt(4000), TotalPrice: 8000, IsMemberBooking: true,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, 5, b.ID)
	assert.True(t, b.PricePerHour.Equal(decimal.NewFromInt(4000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_ConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *pq.Error
		want error
	}{
		{"slot taken", &pq.Error{Code: "23505", Constraint: "uniq_bookings_open_slot"}, ErrSlotTaken},
		{"unknown venue", &pq.Error{Code: "23503"}, apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, close := setupBookingMock(t)
			defer close()

			args := make([]driver.Value, 11)
			for i := range args {
				args[i] = sqlmock.AnyArg()
			}
			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bookings`)).
				WithArgs(args...).
				WillReturnError(tt.err)

			err := repo.Create(context.Background(), &Booking{UserID: 7, VenueID: 3, PricePerHour: decimal.Zero, TotalPrice: 8000})
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetForUpdate(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE id = $1 FOR UPDATE`)).WithArgs(5).
		WillReturnRows(newBookingRow(time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE id = $1 FOR UPDATE`)).WithArgs(6).
		WillReturnError(sql.ErrNoRows)

	b, err := repo.GetForUpdate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", b.BookingDate)
	assert.Nil(t, b.PaymentMethod)

	_, err = repo.GetForUpdate(context.Background(), 6)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBooking(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	paidAt := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)
	until := paidAt.Add(2 * time.Minute)
	method := MethodWallet
	updated := paidAt.Add(time.Second)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE bookings SET status = $2`)).
		WithArgs(5, "pending", "paid", "wallet", nil, nil, false, until, paidAt).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	b := &Booking{
		ID: 5, Status: StatusPending, PaymentStatus: PaymentPaid, PaymentMethod: &method,
		CanCancelUntil: &until, PaidAt: &paidAt,
	}
	require.NoError(t, repo.Update(context.Background(), b))
	assert.Equal(t, updated, b.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByVenue(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE venue_id = $1 AND ($2::text = '' OR status = $2)`)).
		WithArgs(3, "", 20, 0).
		WillReturnRows(newBookingRow(time.Now()))

	bookings, err := repo.ListByVenue(context.Background(), 3, "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsByDay(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE venue_id = $1 AND created_at >= $2 AND created_at < $3`)).
		WithArgs(3, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"day", "created", "paid", "cancelled", "revenue"}).
			AddRow("2024-05-01", 3, 2, 1, int64(8000)).
			AddRow("2024-05-02", 1, 0, 0, int64(0)))

	stats, err := repo.StatsByDay(context.Background(), 3, from, to)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, DailyStats{Day: "2024-05-01", Created: 3, Paid: 2, Cancelled: 1, Revenue: 8000}, stats[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}
