package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warnetbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warnetbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warnetbook_booking_transitions_total",
			Help: "Booking state transitions by target state",
		},
		[]string{"transition", "payment_method"},
	)

	LedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warnetbook_ledger_entries_total",
			Help: "Money transactions written, by kind and status",
		},
		[]string{"kind", "status"},
	)

	LedgerAmountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warnetbook_ledger_amount_rupiah_total",
			Help: "Absolute Rupiah moved by completed money transactions",
		},
		[]string{"kind"},
	)

	TopupDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warnetbook_topup_decisions_total",
			Help: "Operator decisions on pending top-ups",
		},
		[]string{"decision"},
	)

	InsufficientBalanceTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warnetbook_insufficient_balance_total",
			Help: "Debits refused for insufficient balance",
		},
	)

	TimeWalletEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warnetbook_time_wallet_events_total",
			Help: "Time wallet operations",
		},
		[]string{"event"},
	)

	TimeWalletMinutesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warnetbook_time_wallet_minutes_consumed_total",
			Help: "Minutes deducted from time wallets by elapsed active time",
		},
	)

	BalanceCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warnetbook_balance_cache_lookups_total",
			Help: "Balance cache lookups by result",
		},
		[]string{"result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warnetbook_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warnetbook_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingTransition(transition, paymentMethod string) {
	BookingTransitionsTotal.WithLabelValues(transition, paymentMethod).Inc()
}

// RecordLedgerEntry counts a written transaction. Completed entries also add
// their absolute amount to the per-kind volume.
func RecordLedgerEntry(kind, status string, amount int64) {
	LedgerEntriesTotal.WithLabelValues(kind, status).Inc()
	if status != "completed" {
		return
	}
	if amount < 0 {
		amount = -amount
	}
	LedgerAmountTotal.WithLabelValues(kind).Add(float64(amount))
}

func RecordTopupDecision(decision string) {
	TopupDecisionsTotal.WithLabelValues(decision).Inc()
}

func RecordInsufficientBalance() {
	InsufficientBalanceTotal.Inc()
}

func RecordTimeWalletEvent(event string) {
	TimeWalletEventsTotal.WithLabelValues(event).Inc()
}

func RecordMinutesConsumed(minutes float64) {
	if minutes > 0 {
		TimeWalletMinutesConsumed.Add(minutes)
	}
}

func RecordBalanceCache(hit bool) {
	if hit {
		BalanceCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	BalanceCacheLookups.WithLabelValues("miss").Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
