package domain

import (
	"time"

	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// HoldStatus represents the lifecycle state of a hold
type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "active"
	HoldStatusExpired  HoldStatus = "expired"
	HoldStatusConsumed HoldStatus = "consumed"
	HoldStatusReleased HoldStatus = "released"
)

// Hold is a time-boxed, token-identified reservation of room-night
// capacity made before payment confirmation. Whoever presents the token
// owns the hold; no authenticated identity is required.
//
// Expiry is lazy: a hold past its expires_at is only transitioned to
// expired (and its capacity returned) on the next access or during a
// sweep, never by an in-process timer.
type Hold struct {
	Token          string
	HotelID        int64
	Items          []HoldItem
	CheckInDate    types.DateString
	CheckOutDate   types.DateString // exclusive, standard nightly accounting
	ExtensionCount int
	Status         HoldStatus
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HoldItem is one room-type line of a hold
type HoldItem struct {
	RoomTypeID int64
	Quantity   int
	Adults     int
	Children   int
	MealPlan   *string // optional meal-plan code, priced per person per night
}

// IsActive returns true if the hold can still be extended, released or settled
func (h *Hold) IsActive() bool {
	return h.Status == HoldStatusActive
}

// IsExpiredAt returns true if the hold has lapsed at the given instant
// but its status has not been transitioned yet
func (h *Hold) IsExpiredAt(now time.Time) bool {
	return h.Status == HoldStatusActive && now.After(h.ExpiresAt)
}

// Nights returns the number of room-nights per unit (checkout day excluded)
func (h *Hold) Nights() (int, error) {
	return h.CheckInDate.DaysUntil(h.CheckOutDate)
}

// Guests returns the total number of occupants of an item
func (i *HoldItem) Guests() int {
	return i.Adults + i.Children
}
