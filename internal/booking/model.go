package booking

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRejected PaymentStatus = "rejected"
)

type PaymentMethod string

const (
	MethodWallet   PaymentMethod = "wallet"
	MethodTransfer PaymentMethod = "transfer"
)

type Booking struct {
	ID               int             `db:"id" json:"id"`
	UserID           int             `db:"user_id" json:"user_id"`
	VenueID          int             `db:"venue_id" json:"venue_id"`
	ResourceNumber   int             `db:"resource_number" json:"resource_number" example:"4"`
	BookingDate      string          `db:"booking_date" json:"booking_date" example:"2024-05-01"`
	BookingTime      string          `db:"booking_time" json:"booking_time" example:"19:00"`
	DurationHours    int             `db:"duration_hours" json:"duration_hours" example:"2"`
	Status           Status          `db:"status" json:"status" swaggertype:"string" example:"pending"`
	PaymentStatus    PaymentStatus   `db:"payment_status" json:"payment_status" swaggertype:"string" example:"pending"`
	PaymentMethod    *PaymentMethod  `db:"payment_method" json:"payment_method,omitempty" swaggertype:"string"`
	SessionStartTime *time.Time      `db:"session_start_time" json:"session_start_time,omitempty"`
	SessionEndTime   *time.Time      `db:"session_end_time" json:"session_end_time,omitempty"`
	IsSessionActive  bool            `db:"is_session_active" json:"is_session_active"`
	PricePerHour     decimal.Decimal `db:"price_per_hour" json:"price_per_hour" swaggertype:"string" example:"4000"`
	TotalPrice       int64           `db:"total_price" json:"total_price" example:"8000"`
	IsMemberBooking  bool            `db:"is_member_booking" json:"is_member_booking"`
	CanCancelUntil   *time.Time      `db:"can_cancel_until" json:"can_cancel_until,omitempty"`
	PaidAt           *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`

	RemainingMinutes *float64 `db:"-" json:"remaining_minutes"`
}

// Remaining is the whole minutes left in an active session, or nil when no
// session is running.
func (b *Booking) Remaining(now time.Time) *float64 {
	if !b.IsSessionActive || b.SessionStartTime == nil {
		return nil
	}

	elapsed := now.Sub(*b.SessionStartTime).Minutes()
	remaining := math.Floor(math.Max(0, float64(b.DurationHours*60)-elapsed))
	return &remaining
}

func (b *Booking) Terminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// CanCancel reports whether the booking is still inside its cancellation window.
// Unpaid bookings have no window.
func (b *Booking) CanCancel(now time.Time) bool {
	return b.Status == StatusPending && b.CanCancelUntil != nil && now.Before(*b.CanCancelUntil)
}

func (b *Booking) Minutes() float64 {
	return float64(b.DurationHours * 60)
}

// sessionEnd is when an active session runs out.
func (b *Booking) sessionEnd() time.Time {
	return b.SessionStartTime.Add(time.Duration(b.DurationHours) * time.Hour)
}

// expired reports whether an active session has run its full duration. It
// compares raw time; the floored Remaining is for display only.
func (b *Booking) expired(now time.Time) bool {
	if !b.IsSessionActive || b.SessionStartTime == nil {
		return false
	}
	return !now.Before(b.sessionEnd())
}

func (b *Booking) complete(end time.Time) {
	b.Status = StatusCompleted
	b.IsSessionActive = false
	b.SessionEndTime = &end
}

type CreateBookingRequest struct {
	VenueID        int    `json:"venue_id" binding:"required,gt=0" example:"1"`
	ResourceNumber int    `json:"resource_number" binding:"required,gt=0" example:"4"`
	Date           string `json:"date" binding:"required,datetime=2006-01-02" example:"2024-05-01"`
	Time           string `json:"time" binding:"required,datetime=15:04" example:"19:00"`
	DurationHours  int    `json:"duration_hours" binding:"required,gt=0,lte=24" example:"2"`
}

type ConfirmPaymentRequest struct {
	Method PaymentMethod `json:"method" binding:"omitempty,oneof=wallet transfer" swaggertype:"string" example:"wallet"`
}

type RemainingResponse struct {
	BookingID        int      `json:"booking_id"`
	RemainingMinutes *float64 `json:"remaining_minutes" example:"95"`
}
