package domain

import (
	"time"

	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// PaymentStatus represents how the booking was paid for
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusDeferred PaymentStatus = "deferred" // pay on arrival
)

// RefundStatus represents the state of the refund sub-record,
// independent of the booking status
type RefundStatus string

const (
	RefundStatusPending       RefundStatus = "pending"
	RefundStatusProcessing    RefundStatus = "processing"
	RefundStatusCompleted     RefundStatus = "completed"
	RefundStatusFailed        RefundStatus = "failed"
	RefundStatusNotApplicable RefundStatus = "not_applicable"
)

// Booking is a settled hold: a persisted reservation with denormalized
// line items and a frozen copy of the cancellation policy that applied
// at settlement time. Policy edits after settlement never change the
// guest's refund terms.
type Booking struct {
	ID           int64
	Code         string // unique reservation code handed to the guest
	HotelID      int64
	HoldToken    string // the consumed hold, 1:1, historical
	Items        []BookingItem
	Guest        GuestInfo
	CheckInDate  types.DateString
	CheckOutDate types.DateString // exclusive
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time

	Status        BookingStatus
	PaymentStatus PaymentStatus
	Amount        float64
	PaymentTxID   *string

	// Cancellation policy snapshot captured at settlement, immutable
	PolicyID         *int64
	PolicyRefundable bool
	PolicyTiers      []PolicyTier

	Refund             *Refund
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingItem is one room-type line of a booking with prices frozen
// for history
type BookingItem struct {
	RoomTypeID   int64
	RoomTypeName string
	Quantity     int
	UnitPrice    float64 // per unit for the whole stay
	Subtotal     float64
	Adults       int
	Children     int
	MealPlan     *string
}

// GuestInfo holds the contact data captured at settlement
type GuestInfo struct {
	Name    string
	Email   string
	Phone   *string
	Address *string
}

// Refund is the refund sub-record of a cancelled booking
type Refund struct {
	Status      RefundStatus
	Amount      float64
	TxID        *string // gateway refund reference
	ProcessedAt *time.Time
}

// IsPaid returns true if the booking was paid through the gateway
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanCheckIn returns true if the guest can be checked in
func (b *Booking) CanCheckIn() bool {
	return b.Status == StatusConfirmed && b.CheckedInAt == nil
}

// CanCheckOut returns true if the guest can be checked out
func (b *Booking) CanCheckOut() bool {
	return b.Status == StatusCheckedIn
}

// CanMarkNoShow returns true if the booking can be marked as a no-show
func (b *Booking) CanMarkNoShow() bool {
	return b.Status == StatusConfirmed
}

// IsTerminal returns true if no further booking status transition is allowed
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCheckedOut || b.Status == StatusCancelled || b.Status == StatusNoShow
}

// Nights returns the number of room-nights per unit (checkout day excluded)
func (b *Booking) Nights() (int, error) {
	return b.CheckInDate.DaysUntil(b.CheckOutDate)
}

// HoursBeforeCheckIn returns the whole hours between now and check-in,
// floored and never negative: cancelling past check-in yields 0.
func (b *Booking) HoursBeforeCheckIn(now time.Time) (int, error) {
	checkIn, err := b.CheckInDate.Time()
	if err != nil {
		return 0, err
	}

	hours := int(checkIn.Sub(now).Hours())
	if hours < 0 {
		return 0, nil
	}
	return hours, nil
}
