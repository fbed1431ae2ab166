package timewallet

import (
	"math"
	"time"
)

// Wallet is a prepaid minute balance for one user at one venue. While active
// it drains at one minute per wall-clock minute since LastUpdated; the drain
// is folded into RemainingMinutes only when the row is next written.
type Wallet struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	VenueID          int       `db:"venue_id" json:"venue_id"`
	VenueName        string    `db:"venue_name" json:"venue_name,omitempty"`
	RemainingMinutes float64   `db:"remaining_minutes" json:"remaining_minutes" example:"120"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	LastUpdated      time.Time `db:"last_updated" json:"last_updated"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`

	RemainingNow float64 `db:"-" json:"remaining_minutes_now" example:"75"`
}

// RemainingAt projects the balance at now without mutating w.
func (w *Wallet) RemainingAt(now time.Time) float64 {
	if !w.IsActive {
		return w.RemainingMinutes
	}
	return math.Max(0, w.RemainingMinutes-elapsedMinutes(w.LastUpdated, now))
}

// settle folds the drain since LastUpdated into the stored balance and
// restarts the clock at now. It returns the minutes consumed.
func (w *Wallet) settle(now time.Time) float64 {
	before := w.RemainingMinutes
	w.RemainingMinutes = w.RemainingAt(now)
	w.LastUpdated = now
	return before - w.RemainingMinutes
}

func (w *Wallet) project(now time.Time) *Wallet {
	w.RemainingNow = w.RemainingAt(now)
	return w
}

func elapsedMinutes(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from).Minutes()
}

type CreditRequest struct {
	UserID  int     `json:"user_id" binding:"required,gt=0"`
	VenueID int     `json:"venue_id" binding:"required,gt=0"`
	Minutes float64 `json:"minutes" binding:"required,gt=0" example:"60"`
}

type SyncRequest struct {
	RemainingMinutes *float64 `json:"remaining_minutes" binding:"required" example:"74.5"`
}
