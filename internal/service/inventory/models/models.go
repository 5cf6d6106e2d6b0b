package models

import (
	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// Request модели

// SyncRequest операторский запрос на синхронизацию инвентаря
// Переопределение тарифа применяется ко всем датам диапазона;
// RateOverride = null снимает переопределение, отсутствие поля
// оставляет его как есть
type SyncRequest struct {
	From          types.DateString `json:"from"`
	To            types.DateString `json:"to"` // включительно
	TotalUnits    *int             `json:"totalUnits,omitempty"`
	RateOverride  *float64         `json:"rateOverride,omitempty"`
	ClearOverride bool             `json:"clearOverride,omitempty"`
}

// Response модели

// InventoryDayResponse состояние леджера на одну дату
type InventoryDayResponse struct {
	Date           string   `json:"date"`
	TotalUnits     int      `json:"totalUnits"`
	AvailableUnits int      `json:"availableUnits"`
	HeldUnits      int      `json:"heldUnits"`
	BookedUnits    int      `json:"bookedUnits"`
	RateOverride   *float64 `json:"rateOverride,omitempty"`
	Active         bool     `json:"active"`
}

// SyncResponse результат синхронизации по датам диапазона
type SyncResponse struct {
	RoomTypeID int64                  `json:"roomTypeId"`
	Days       []InventoryDayResponse `json:"days"`
}

// Методы конвертации

// FromDomainRecords конвертирует строки леджера в DTO
func FromDomainRecords(roomTypeID int64, records []*domain.InventoryRecord) *SyncResponse {
	days := make([]InventoryDayResponse, len(records))
	for i, rec := range records {
		days[i] = InventoryDayResponse{
			Date:           rec.Date.String(),
			TotalUnits:     rec.TotalUnits,
			AvailableUnits: rec.AvailableUnits,
			HeldUnits:      rec.HeldUnits,
			BookedUnits:    rec.BookedUnits,
			RateOverride:   rec.RateOverride,
			Active:         rec.Active,
		}
	}
	return &SyncResponse{RoomTypeID: roomTypeID, Days: days}
}
