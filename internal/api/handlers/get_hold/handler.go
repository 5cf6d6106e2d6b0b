package get_hold

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/service/holds"
)

const (
	msgHoldNotFound = "холд не найден"
	msgHoldExpired  = "срок действия холда истёк"
	msgHoldConsumed = "холд уже конвертирован в бронирование"
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

// Handle GET /api/v1/holds/{token}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	result, err := h.service.Get(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, holds.ErrHoldNotFound):
			h.logger.Warn("GET /holds/{token} - Hold not found")
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, holds.ErrHoldExpired):
			h.logger.Info("GET /holds/{token} - Hold expired")
			handlers.RespondGone(w, msgHoldExpired)

		case errors.Is(err, holds.ErrHoldAlreadyConsumed):
			h.logger.Warn("GET /holds/{token} - Hold already consumed")
			handlers.RespondConflict(w, msgHoldConsumed)

		default:
			h.logger.Error("GET /holds/{token} - Failed to get hold: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
