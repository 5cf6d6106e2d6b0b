package domain

import (
	"time"

	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// InventoryRecord tracks room-night capacity for one room type on one
// calendar date. Unit accounting is explicit and three-state:
// total_units = available_units + held_units + booked_units (+ slack
// after an administrative sync that raised the total).
type InventoryRecord struct {
	RoomTypeID     int64
	Date           types.DateString
	TotalUnits     int
	AvailableUnits int
	HeldUnits      int
	BookedUnits    int
	RateOverride   *float64 // per-date price override, beats the room type base rate
	Active         bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRateOverride returns true if this date carries a price override
func (r *InventoryRecord) HasRateOverride() bool {
	return r.RateOverride != nil
}

// CommittedUnits returns the units that cannot be taken away by a sync
func (r *InventoryRecord) CommittedUnits() int {
	return r.HeldUnits + r.BookedUnits
}

// IsConsistent returns true if the unit counters satisfy the ledger invariant
func (r *InventoryRecord) IsConsistent() bool {
	if r.AvailableUnits < 0 || r.HeldUnits < 0 || r.BookedUnits < 0 {
		return false
	}
	return r.AvailableUnits+r.HeldUnits+r.BookedUnits <= r.TotalUnits
}

// RoomType represents a bookable room category of a hotel
type RoomType struct {
	ID        int64
	HotelID   int64
	Name      string
	BaseRate  float64 // nightly price when no per-date override exists
	MaxGuests int
	Active    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
