package create_hold

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/service/holds"
	"github.com/m04kA/SMC-HotelService/internal/service/holds/models"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidInput         = "некорректные параметры холда"
	msgInsufficientCapacity = "недостаточно свободных номеров на выбранные даты"
)

type Handler struct {
	service HoldsService
	logger  Logger
}

func NewHandler(service HoldsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHoldRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /holds - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, holds.ErrInsufficientCapacity):
			h.logger.Warn("POST /holds - Insufficient capacity: hotel_id=%d, error=%v", req.HotelID, err)
			handlers.RespondConflict(w, capacityMessage(err))

		case errors.Is(err, holds.ErrInvalidInput):
			h.logger.Warn("POST /holds - Invalid input: hotel_id=%d, error=%v", req.HotelID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /holds - Failed to create hold: hotel_id=%d, error=%v", req.HotelID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds - Hold created: hotel_id=%d, expires_at=%s", req.HotelID, result.ExpiresAt)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// capacityMessage дополняет базовое сообщение деталями отказа:
// дата, запрошенное количество и фактический остаток
func capacityMessage(err error) string {
	var capErr *holds.CapacityError
	if errors.As(err, &capErr) {
		return fmt.Sprintf("%s: запрошено %d, доступно %d на %s",
			msgInsufficientCapacity, capErr.Requested, capErr.Available, capErr.Date)
	}
	return msgInsufficientCapacity
}
