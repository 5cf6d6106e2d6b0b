package commit_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/api/middleware"
	commitBooking "github.com/m04kA/SMC-HotelService/internal/usecase/commit_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные бронирования"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgHoldNotFound       = "холд не найден"
	msgHoldExpired        = "срок действия холда истёк"
	msgHoldConsumed       = "холд уже конвертирован в бронирование"
	msgPaymentDeclined    = "платёж отклонён"
	msgPricingFailed      = "не удалось рассчитать стоимость бронирования"
)

type Handler struct {
	useCase CommitBookingUseCase
	logger  Logger
}

func NewHandler(useCase CommitBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req commitBooking.Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: user_id=%d, error=%v", userID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, commitBooking.ErrHoldNotFound):
			h.logger.Warn("POST /bookings - Hold not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, commitBooking.ErrHoldExpired):
			h.logger.Info("POST /bookings - Hold expired: user_id=%d", userID)
			handlers.RespondGone(w, msgHoldExpired)

		case errors.Is(err, commitBooking.ErrHoldAlreadyConsumed):
			h.logger.Warn("POST /bookings - Hold already consumed: user_id=%d", userID)
			handlers.RespondConflict(w, msgHoldConsumed)

		case errors.Is(err, commitBooking.ErrPaymentDeclined):
			h.logger.Warn("POST /bookings - Payment declined: user_id=%d", userID)
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentDeclined)

		case errors.Is(err, commitBooking.ErrPricingFailed):
			h.logger.Error("POST /bookings - Pricing failed: user_id=%d, error=%v", userID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgPricingFailed)

		case errors.Is(err, commitBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to commit booking: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, code=%s, user_id=%d",
		result.ID, result.Code, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
