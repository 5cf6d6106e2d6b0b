package expire_stale_holds

import (
	"net/http"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
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

// Handle POST /internal/holds/expire-stale
// Служебный endpoint для периодического sweep'а просроченных холдов
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ExpireStale(r.Context())
	if err != nil {
		h.logger.Error("POST /internal/holds/expire-stale - Sweep failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /internal/holds/expire-stale - Expired %d stale holds", result.Expired)
	handlers.RespondJSON(w, http.StatusOK, result)
}
