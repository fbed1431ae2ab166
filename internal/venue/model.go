package venue

import (
	"time"

	"github.com/shopspring/decimal"
)

type Venue struct {
	ID                  int             `db:"id" json:"id"`
	Name                string          `db:"name" json:"name"`
	Address             string          `db:"address" json:"address"`
	Description         string          `db:"description" json:"description"`
	RegularPricePerHour decimal.Decimal `db:"regular_price_per_hour" json:"regular_price_per_hour" swaggertype:"string" example:"5000"`
	MemberPricePerHour  decimal.Decimal `db:"member_price_per_hour" json:"member_price_per_hour" swaggertype:"string" example:"4000"`
	TotalResources      int             `db:"total_resources" json:"total_resources" example:"20"`
	OperatingHours      string          `db:"operating_hours" json:"operating_hours" example:"24/7"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}

// Rate is the hourly price charged to a regular patron or a member.
func (v *Venue) Rate(isMember bool) decimal.Decimal {
	if isMember {
		return v.MemberPricePerHour
	}
	return v.RegularPricePerHour
}

// PriceFor returns the total for hours at the applicable rate, rounded to whole Rupiah.
func (v *Venue) PriceFor(isMember bool, hours int) int64 {
	return v.Rate(isMember).Mul(decimal.NewFromInt(int64(hours))).Round(0).IntPart()
}

// HasResource reports whether n names a workstation at the venue.
func (v *Venue) HasResource(n int) bool {
	return n >= 1 && n <= v.TotalResources
}

type CreateVenueRequest struct {
	Name                string          `json:"name" binding:"required"`
	Address             string          `json:"address" binding:"required"`
	Description         string          `json:"description"`
	RegularPricePerHour decimal.Decimal `json:"regular_price_per_hour" swaggertype:"string" example:"5000"`
	MemberPricePerHour  decimal.Decimal `json:"member_price_per_hour" swaggertype:"string" example:"4000"`
	TotalResources      int             `json:"total_resources" binding:"required,gt=0"`
	OperatingHours      string          `json:"operating_hours"`
}
