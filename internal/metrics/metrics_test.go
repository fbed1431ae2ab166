package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/bookings", "201", 0.1)
	RecordHTTPRequest("POST", "/bookings", "201", 0.2)
	RecordHTTPRequest("POST", "/bookings", "409", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bookings", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bookings", "409")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordBookingTransition(t *testing.T) {
	BookingTransitionsTotal.Reset()

	RecordBookingTransition("paid", "wallet")
	RecordBookingTransition("paid", "transfer")
	RecordBookingTransition("paid", "wallet")

	assert.Equal(t, float64(2), testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("paid", "wallet")))
	assert.Equal(t, float64(1), testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("paid", "transfer")))
}

func TestRecordLedgerEntry(t *testing.T) {
	LedgerEntriesTotal.Reset()
	LedgerAmountTotal.Reset()

	RecordLedgerEntry("topup", "pending", 50000)
	RecordLedgerEntry("payment", "completed", -30000)
	RecordLedgerEntry("payment", "completed", -5000)

	assert.Equal(t, float64(1), testutil.ToFloat64(LedgerEntriesTotal.WithLabelValues("topup", "pending")))
	assert.Equal(t, float64(2), testutil.ToFloat64(LedgerEntriesTotal.WithLabelValues("payment", "completed")))
	assert.Equal(t, float64(35000), testutil.ToFloat64(LedgerAmountTotal.WithLabelValues("payment")))
	assert.Equal(t, float64(0), testutil.ToFloat64(LedgerAmountTotal.WithLabelValues("topup")))
}

func TestRecordTopupDecision(t *testing.T) {
	TopupDecisionsTotal.Reset()

	RecordTopupDecision("approved")
	RecordTopupDecision("conflict")

	assert.Equal(t, float64(1), testutil.ToFloat64(TopupDecisionsTotal.WithLabelValues("approved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(TopupDecisionsTotal.WithLabelValues("conflict")))
}

func TestRecordCounters(t *testing.T) {
	before := testutil.ToFloat64(InsufficientBalanceTotal)
	RecordInsufficientBalance()
	assert.Equal(t, before+1, testutil.ToFloat64(InsufficientBalanceTotal))

	consumed := testutil.ToFloat64(TimeWalletMinutesConsumed)
	RecordMinutesConsumed(45)
	RecordMinutesConsumed(-3)
	assert.Equal(t, consumed+45, testutil.ToFloat64(TimeWalletMinutesConsumed))
}

func TestRecordBalanceCache(t *testing.T) {
	BalanceCacheLookups.Reset()

	RecordBalanceCache(true)
	RecordBalanceCache(false)
	RecordBalanceCache(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(BalanceCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(BalanceCacheLookups.WithLabelValues("miss")))
}

func TestRecordEmail(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("topup_approved", "success")
	RecordEmail("topup_approved", "failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("topup_approved", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("topup_approved", "failed")))
}

func TestEmailQueueLength(t *testing.T) {
	EmailQueueLength.Set(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(EmailQueueLength))
}
