package sync_inventory

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/service/inventory"
	"github.com/m04kA/SMC-HotelService/internal/service/inventory/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRoomTypeID  = "некорректный ID типа номера"
	msgInvalidInput       = "некорректные параметры синхронизации"
	msgRoomTypeNotFound   = "тип номера не найден"
	msgCapacityConflict   = "нельзя уменьшить вместимость ниже занятых юнитов"
)

type Handler struct {
	service InventoryService
	logger  Logger
}

func NewHandler(service InventoryService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/room-types/{roomTypeId}/inventory
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	roomTypeID, err := strconv.ParseInt(mux.Vars(r)["roomTypeId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /room-types/{id}/inventory - Invalid room type ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRoomTypeID)
		return
	}

	var req models.SyncRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /room-types/{id}/inventory - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Sync(r.Context(), roomTypeID, &req)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrRoomTypeNotFound):
			h.logger.Warn("PUT /room-types/{id}/inventory - Room type not found: room_type_id=%d", roomTypeID)
			handlers.RespondNotFound(w, msgRoomTypeNotFound)

		case errors.Is(err, inventory.ErrCapacityConflict):
			h.logger.Warn("PUT /room-types/{id}/inventory - Capacity conflict: room_type_id=%d, error=%v",
				roomTypeID, err)
			handlers.RespondConflict(w, conflictMessage(err))

		case errors.Is(err, inventory.ErrInvalidInput):
			h.logger.Warn("PUT /room-types/{id}/inventory - Invalid input: room_type_id=%d, error=%v",
				roomTypeID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /room-types/{id}/inventory - Sync failed: room_type_id=%d, error=%v",
				roomTypeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /room-types/{id}/inventory - Inventory synced: room_type_id=%d, days=%d",
		roomTypeID, len(result.Days))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// conflictMessage дополняет базовое сообщение деталями конфликта:
// дата, новый total и объем уже занятых юнитов
func conflictMessage(err error) string {
	var confErr *inventory.ConflictError
	if errors.As(err, &confErr) {
		return fmt.Sprintf("%s: новый объем %d меньше %d занятых на %s",
			msgCapacityConflict, confErr.NewTotal, confErr.Committed, confErr.Date)
	}
	return msgCapacityConflict
}
