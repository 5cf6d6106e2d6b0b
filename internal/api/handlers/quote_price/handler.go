package quote_price

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/service/pricing"
	"github.com/m04kA/SMC-HotelService/internal/service/pricing/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры расчёта"
	msgRoomTypeNotFound   = "тип номера не найден"
	msgCouponInvalid      = "купон недействителен или неприменим"
	msgUnknownMealPlan    = "неизвестный план питания"
)

type Handler struct {
	service PricingService
	logger  Logger
}

func NewHandler(service PricingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/quotes
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /quotes - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrRoomTypeNotFound):
			h.logger.Warn("POST /quotes - Room type not found: hotel_id=%d", req.HotelID)
			handlers.RespondNotFound(w, msgRoomTypeNotFound)

		case errors.Is(err, pricing.ErrCouponInvalid):
			h.logger.Warn("POST /quotes - Coupon invalid: hotel_id=%d", req.HotelID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgCouponInvalid)

		case errors.Is(err, pricing.ErrUnknownMealPlan):
			h.logger.Warn("POST /quotes - Unknown meal plan: hotel_id=%d", req.HotelID)
			handlers.RespondBadRequest(w, msgUnknownMealPlan)

		case errors.Is(err, pricing.ErrInvalidInput):
			h.logger.Warn("POST /quotes - Invalid input: hotel_id=%d, error=%v", req.HotelID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /quotes - Failed to build quote: hotel_id=%d, error=%v", req.HotelID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
