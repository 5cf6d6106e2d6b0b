package models

import (
	"time"

	"github.com/m04kA/SMC-HotelService/internal/domain"
)

// Response модели

// BookingItemResponse позиция бронирования с зафиксированными ценами
type BookingItemResponse struct {
	RoomTypeID   int64   `json:"roomTypeId"`
	RoomTypeName string  `json:"roomTypeName"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	Subtotal     float64 `json:"subtotal"`
	Adults       int     `json:"adults"`
	Children     int     `json:"children"`
	MealPlan     *string `json:"mealPlan,omitempty"`
}

// GuestResponse контактные данные гостя
type GuestResponse struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// RefundResponse состояние возврата средств
type RefundResponse struct {
	Status      string     `json:"status"`
	Amount      float64    `json:"amount"`
	TxID        *string    `json:"txId,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                 int64                 `json:"id"`
	Code               string                `json:"code"`
	HotelID            int64                 `json:"hotelId"`
	Items              []BookingItemResponse `json:"items"`
	Guest              GuestResponse         `json:"guest"`
	CheckIn            string                `json:"checkIn"`
	CheckOut           string                `json:"checkOut"`
	CheckedInAt        *time.Time            `json:"checkedInAt,omitempty"`
	CheckedOutAt       *time.Time            `json:"checkedOutAt,omitempty"`
	Status             string                `json:"status"`
	PaymentStatus      string                `json:"paymentStatus"`
	Amount             float64               `json:"amount"`
	Refund             *RefundResponse       `json:"refund,omitempty"`
	CancellationReason *string               `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time            `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	items := make([]BookingItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = BookingItemResponse{
			RoomTypeID:   item.RoomTypeID,
			RoomTypeName: item.RoomTypeName,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Subtotal:     item.Subtotal,
			Adults:       item.Adults,
			Children:     item.Children,
			MealPlan:     item.MealPlan,
		}
	}

	var refund *RefundResponse
	if b.Refund != nil {
		refund = &RefundResponse{
			Status:      string(b.Refund.Status),
			Amount:      b.Refund.Amount,
			TxID:        b.Refund.TxID,
			ProcessedAt: b.Refund.ProcessedAt,
		}
	}

	return &BookingResponse{
		ID:       b.ID,
		Code:     b.Code,
		HotelID:  b.HotelID,
		Items:    items,
		Guest: GuestResponse{
			Name:    b.Guest.Name,
			Email:   b.Guest.Email,
			Phone:   b.Guest.Phone,
			Address: b.Guest.Address,
		},
		CheckIn:            b.CheckInDate.String(),
		CheckOut:           b.CheckOutDate.String(),
		CheckedInAt:        b.CheckedInAt,
		CheckedOutAt:       b.CheckedOutAt,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		Amount:             b.Amount,
		Refund:             refund,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
	}
}
