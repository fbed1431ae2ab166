package booking

import (
	"context"
	"fmt"
	"time"

	"warnetbook/internal/apperr"
	"warnetbook/internal/auth"
	"warnetbook/internal/db"
)

// DailyStats summarises one venue day by the date bookings were created.
type DailyStats struct {
	Day       string `db:"day" json:"day" example:"2024-05-01"`
	Created   int    `db:"created" json:"created"`
	Paid      int    `db:"paid" json:"paid"`
	Cancelled int    `db:"cancelled" json:"cancelled"`
	// Revenue counts paid bookings that were not cancelled.
	Revenue int64 `db:"revenue" json:"revenue" example:"120000"`
}

const maxStatsRange = 92 * 24 * time.Hour

func (r *repository) StatsByDay(ctx context.Context, venueID int, from, to time.Time) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(created_at)::text                                    AS day,
			COUNT(*)                                                  AS created,
			COUNT(*) FILTER (WHERE payment_status = 'paid')           AS paid,
			COUNT(*) FILTER (WHERE status = 'cancelled')              AS cancelled,
			COALESCE(SUM(total_price) FILTER (
				WHERE payment_status = 'paid' AND status <> 'cancelled'), 0) AS revenue
		FROM bookings
		WHERE venue_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY DATE(created_at)
		ORDER BY day
	`

	stats := []DailyStats{}
	if err := db.Conn(ctx, r.db).SelectContext(ctx, &stats, query, venueID, from, to); err != nil {
		return nil, fmt.Errorf("venue booking stats: %w", err)
	}
	return stats, nil
}

// Stats reports per-day booking counts for a venue over [from, to).
func (s *service) Stats(ctx context.Context, caller auth.Identity, venueID int, from, to time.Time) ([]DailyStats, error) {
	if !caller.IsOperator() {
		return nil, apperr.Forbidden("only operators can view venue statistics")
	}
	if !to.After(from) {
		return nil, apperr.Validation("to must be after from")
	}
	if to.Sub(from) > maxStatsRange {
		return nil, apperr.Validation("range must not exceed 92 days")
	}

	if _, err := s.Venues.GetByID(ctx, venueID); err != nil {
		return nil, err
	}
	return s.Repo.StatsByDay(ctx, venueID, from, to)
}
