package membership

import (
	"time"

	"warnetbook/internal/auth"
)

// Membership ties one account to one venue. An account may hold memberships
// at several venues; the pair is unique.
type Membership struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	VenueID   int       `db:"venue_id" json:"venue_id"`
	VenueName string    `db:"venue_name" json:"venue_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// VenueMember is one row of a venue's member roster: the account, its
// DompetBowar balance and its time wallet at that venue, if any.
type VenueMember struct {
	UserID       int       `db:"user_id" json:"user_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Role         auth.Role `db:"role" json:"role" swaggertype:"string" example:"member"`
	MoneyBalance int64     `db:"money_balance" json:"money_balance" example:"50000"`
	MemberSince  time.Time `db:"member_since" json:"member_since"`

	TimeWalletID        *int       `db:"time_wallet_id" json:"time_wallet_id"`
	RemainingMinutes    *float64   `db:"remaining_minutes" json:"remaining_minutes"`
	RemainingMinutesNow *float64   `db:"remaining_minutes_now" json:"remaining_minutes_now"`
	IsActive            *bool      `db:"is_active" json:"is_active"`
	LastUpdated         *time.Time `db:"last_updated" json:"last_updated"`
}
