package venue

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVenue_PriceFor(t *testing.T) {
	v := &Venue{
		RegularPricePerHour: decimal.RequireFromString("5000"),
		MemberPricePerHour:  decimal.RequireFromString("3500.50"),
	}

	tests := []struct {
		name     string
		isMember bool
		hours    int
		want     int64
	}{
		{"regular one hour", false, 1, 5000},
		{"regular three hours", false, 3, 15000},
		{"member two hours", true, 2, 7001},
		{"member one hour rounds half up", true, 1, 3501},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.PriceFor(tt.isMember, tt.hours))
		})
	}
}

func TestVenue_HasResource(t *testing.T) {
	v := &Venue{TotalResources: 12}

	assert.True(t, v.HasResource(1))
	assert.True(t, v.HasResource(12))
	assert.False(t, v.HasResource(0))
	assert.False(t, v.HasResource(13))
}
