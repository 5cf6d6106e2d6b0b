package models

import (
	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// Request модели

// QuoteItemRequest одна позиция расчета
type QuoteItemRequest struct {
	RoomTypeID int64   `json:"roomTypeId"`
	Quantity   int     `json:"quantity"`
	Adults     int     `json:"adults"`
	Children   int     `json:"children"`
	MealPlan   *string `json:"mealPlan,omitempty"`
}

// QuoteRequest запрос на расчет стоимости без создания холда
type QuoteRequest struct {
	HotelID    int64              `json:"hotelId"`
	Items      []QuoteItemRequest `json:"items"`
	CheckIn    types.DateString   `json:"checkIn"`
	CheckOut   types.DateString   `json:"checkOut"`
	CouponCode *string            `json:"couponCode,omitempty"`
	Extras     float64            `json:"extras,omitempty"`
}

// Response модели

// QuoteLineResponse детализация по типу номера
type QuoteLineResponse struct {
	RoomTypeID   int64   `json:"roomTypeId"`
	RoomTypeName string  `json:"roomTypeName"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	Subtotal     float64 `json:"subtotal"`
	MealCharge   float64 `json:"mealCharge"`
}

// QuoteResponse расчет стоимости проживания
type QuoteResponse struct {
	HotelID     int64               `json:"hotelId"`
	CheckIn     string              `json:"checkIn"`
	CheckOut    string              `json:"checkOut"`
	Nights      int                 `json:"nights"`
	Subtotal    float64             `json:"subtotal"`
	MealCharges float64             `json:"mealCharges"`
	Extras      float64             `json:"extras"`
	Discount    float64             `json:"discount"`
	Tax         float64             `json:"tax"`
	Total       float64             `json:"total"`
	Lines       []QuoteLineResponse `json:"lines"`
}

// Методы конвертации

// ToDomainItems конвертирует позиции запроса в доменные
func (r *QuoteRequest) ToDomainItems() []domain.HoldItem {
	items := make([]domain.HoldItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.HoldItem{
			RoomTypeID: item.RoomTypeID,
			Quantity:   item.Quantity,
			Adults:     item.Adults,
			Children:   item.Children,
			MealPlan:   item.MealPlan,
		}
	}
	return items
}

// FromDomainBreakdown конвертирует domain модель в DTO
func FromDomainBreakdown(req *QuoteRequest, nights int, b *domain.PriceBreakdown) *QuoteResponse {
	lines := make([]QuoteLineResponse, len(b.Lines))
	for i, line := range b.Lines {
		lines[i] = QuoteLineResponse{
			RoomTypeID:   line.RoomTypeID,
			RoomTypeName: line.RoomTypeName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			Subtotal:     line.Subtotal,
			MealCharge:   line.MealCharge,
		}
	}

	return &QuoteResponse{
		HotelID:     req.HotelID,
		CheckIn:     req.CheckIn.String(),
		CheckOut:    req.CheckOut.String(),
		Nights:      nights,
		Subtotal:    b.Subtotal,
		MealCharges: b.MealCharges,
		Extras:      b.Extras,
		Discount:    b.Discount,
		Tax:         b.Tax,
		Total:       b.Total,
		Lines:       lines,
	}
}
