package domain

import (
	"math"
	"sort"
	"time"
)

// CancellationPolicy defines graduated refund terms. Scope is either a
// specific room type, a whole hotel (RoomTypeID nil) or the platform
// default (both nil, IsDefault true). At most one policy per hotel may
// be the default.
type CancellationPolicy struct {
	ID           int64
	HotelID      *int64
	RoomTypeID   *int64
	IsDefault    bool
	IsRefundable bool
	Active       bool
	Tiers        []PolicyTier

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PolicyTier is one (hours-before-check-in threshold, refund percentage)
// step of a cancellation policy. Tiers are unordered in storage.
type PolicyTier struct {
	HoursBeforeCheckIn int
	RefundPercent      float64 // 0-100
}

// IsRoomTypeScoped returns true if the policy applies to a single room type
func (p *CancellationPolicy) IsRoomTypeScoped() bool {
	return p.RoomTypeID != nil
}

// IsHotelScoped returns true if the policy applies to a whole hotel
func (p *CancellationPolicy) IsHotelScoped() bool {
	return p.HotelID != nil && p.RoomTypeID == nil
}

// SelectTier picks the most generous tier the guest still qualifies for:
// tiers are evaluated sorted descending by threshold, and the first tier
// whose threshold is not above hoursBeforeCheckIn wins. Returns nil if
// no tier qualifies.
func SelectTier(tiers []PolicyTier, hoursBeforeCheckIn int) *PolicyTier {
	sorted := make([]PolicyTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].HoursBeforeCheckIn > sorted[j].HoursBeforeCheckIn
	})

	for i := range sorted {
		if sorted[i].HoursBeforeCheckIn <= hoursBeforeCheckIn {
			return &sorted[i]
		}
	}
	return nil
}

// RefundAmount computes the refund for the given percentage, rounded to
// two decimal places
func RefundAmount(amount, percent float64) float64 {
	return math.Round(amount*percent) / 100
}
