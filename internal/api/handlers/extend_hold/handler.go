package extend_hold

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/service/holds"
)

const (
	msgHoldNotFound   = "холд не найден"
	msgHoldExpired    = "срок действия холда истёк"
	msgHoldConsumed   = "холд уже конвертирован в бронирование"
	msgExtensionLimit = "достигнут лимит продлений холда"
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

// Handle POST /api/v1/holds/{token}/extend
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	result, err := h.service.Extend(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, holds.ErrHoldNotFound):
			h.logger.Warn("POST /holds/{token}/extend - Hold not found")
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, holds.ErrHoldExpired):
			h.logger.Info("POST /holds/{token}/extend - Hold expired")
			handlers.RespondGone(w, msgHoldExpired)

		case errors.Is(err, holds.ErrHoldAlreadyConsumed):
			h.logger.Warn("POST /holds/{token}/extend - Hold already consumed")
			handlers.RespondConflict(w, msgHoldConsumed)

		case errors.Is(err, holds.ErrExtensionLimitReached):
			h.logger.Warn("POST /holds/{token}/extend - Extension limit reached")
			handlers.RespondConflict(w, msgExtensionLimit)

		default:
			h.logger.Error("POST /holds/{token}/extend - Failed to extend hold: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds/{token}/extend - Hold extended: expires_at=%s, extensions=%d",
		result.ExpiresAt, result.ExtensionCount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
