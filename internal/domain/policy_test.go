package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectTier(t *testing.T) {
	// tiers intentionally unordered: storage gives no ordering guarantee
	tiers := []PolicyTier{
		{HoursBeforeCheckIn: 24, RefundPercent: 50},
		{HoursBeforeCheckIn: 0, RefundPercent: 0},
		{HoursBeforeCheckIn: 72, RefundPercent: 100},
	}

	tests := []struct {
		name            string
		hours           int
		expectedPercent float64
	}{
		{"100 hours qualifies for the 72h tier", 100, 100},
		{"exactly 72 hours qualifies for the 72h tier", 72, 100},
		{"30 hours falls to the 24h tier", 30, 50},
		{"exactly 24 hours falls to the 24h tier", 24, 50},
		{"10 hours falls to the 0h tier", 10, 0},
		{"zero hours falls to the 0h tier", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := SelectTier(tiers, tt.hours)
			require.NotNil(t, tier)
			assert.Equal(t, tt.expectedPercent, tier.RefundPercent)
		})
	}
}

func TestSelectTier_NoQualifyingTier(t *testing.T) {
	tiers := []PolicyTier{
		{HoursBeforeCheckIn: 72, RefundPercent: 100},
		{HoursBeforeCheckIn: 24, RefundPercent: 50},
	}

	assert.Nil(t, SelectTier(tiers, 10))
	assert.Nil(t, SelectTier(nil, 100))
}

func TestSelectTier_DoesNotMutateInput(t *testing.T) {
	tiers := []PolicyTier{
		{HoursBeforeCheckIn: 24, RefundPercent: 50},
		{HoursBeforeCheckIn: 72, RefundPercent: 100},
	}

	SelectTier(tiers, 100)
	assert.Equal(t, 24, tiers[0].HoursBeforeCheckIn)
}

func TestRefundAmount(t *testing.T) {
	tests := []struct {
		amount   float64
		percent  float64
		expected float64
	}{
		{500, 100, 500},
		{500, 50, 250},
		{500, 0, 0},
		{333.33, 50, 166.67},
		{99.99, 33, 33.0},
		{0.01, 50, 0.01},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RefundAmount(tt.amount, tt.percent),
			"amount=%.2f percent=%.0f", tt.amount, tt.percent)
	}
}
