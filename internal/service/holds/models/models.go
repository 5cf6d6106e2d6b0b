package models

import (
	"time"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// Request модели

// HoldItemRequest одна позиция холда с фиксированной схемой
// Незнакомые формы отбрасываются на границе API, а не здесь
type HoldItemRequest struct {
	RoomTypeID int64   `json:"roomTypeId"`
	Quantity   int     `json:"quantity"`
	Adults     int     `json:"adults"`
	Children   int     `json:"children"`
	MealPlan   *string `json:"mealPlan,omitempty"`
}

// CreateHoldRequest запрос на создание холда
type CreateHoldRequest struct {
	HotelID  int64             `json:"hotelId"`
	Items    []HoldItemRequest `json:"items"`
	CheckIn  types.DateString  `json:"checkIn"`
	CheckOut types.DateString  `json:"checkOut"`
}

// Response модели

// HoldItemResponse позиция холда в ответе
type HoldItemResponse struct {
	RoomTypeID int64   `json:"roomTypeId"`
	Quantity   int     `json:"quantity"`
	Adults     int     `json:"adults"`
	Children   int     `json:"children"`
	MealPlan   *string `json:"mealPlan,omitempty"`
}

// HoldResponse ответ с данными холда
type HoldResponse struct {
	Token          string             `json:"token"`
	HotelID        int64              `json:"hotelId"`
	Items          []HoldItemResponse `json:"items"`
	CheckIn        string             `json:"checkIn"`
	CheckOut       string             `json:"checkOut"`
	Nights         int                `json:"nights"`
	Status         string             `json:"status"`
	ExtensionCount int                `json:"extensionCount"`
	ExpiresAt      time.Time          `json:"expiresAt"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// ExpireStaleResponse результат sweep'а просроченных холдов
type ExpireStaleResponse struct {
	Expired int `json:"expired"`
}

// Методы конвертации

// ToDomainItems конвертирует позиции запроса в доменные
func (r *CreateHoldRequest) ToDomainItems() []domain.HoldItem {
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

// FromDomainHold конвертирует domain модель в DTO
func FromDomainHold(h *domain.Hold) *HoldResponse {
	if h == nil {
		return nil
	}

	items := make([]HoldItemResponse, len(h.Items))
	for i, item := range h.Items {
		items[i] = HoldItemResponse{
			RoomTypeID: item.RoomTypeID,
			Quantity:   item.Quantity,
			Adults:     item.Adults,
			Children:   item.Children,
			MealPlan:   item.MealPlan,
		}
	}

	nights, _ := h.Nights()

	return &HoldResponse{
		Token:          h.Token,
		HotelID:        h.HotelID,
		Items:          items,
		CheckIn:        h.CheckInDate.String(),
		CheckOut:       h.CheckOutDate.String(),
		Nights:         nights,
		Status:         string(h.Status),
		ExtensionCount: h.ExtensionCount,
		ExpiresAt:      h.ExpiresAt,
		CreatedAt:      h.CreatedAt,
	}
}
