package submit_refund

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-HotelService/internal/api/handlers"
	"github.com/m04kA/SMC-HotelService/internal/service/refunds"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgRefundNotPending = "возврат не ожидает проведения"
	msgNoPaymentTx      = "у бронирования нет платёжной транзакции"
)

type Handler struct {
	service RefundsService
	logger  Logger
}

func NewHandler(service RefundsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/refund
// Проводит ожидающий возврат через платёжный шлюз
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/refund - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := h.service.Submit(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, refunds.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/refund - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, refunds.ErrRefundNotPending):
			h.logger.Warn("POST /bookings/{id}/refund - Refund not pending: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgRefundNotPending)

		case errors.Is(err, refunds.ErrNoPaymentTransaction):
			h.logger.Warn("POST /bookings/{id}/refund - No payment transaction: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgNoPaymentTx)

		default:
			h.logger.Error("POST /bookings/{id}/refund - Failed to submit refund: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/refund - Refund submitted: booking_id=%d, status=%s, amount=%.2f",
		bookingID, result.Status, result.Amount)
	handlers.RespondJSON(w, http.StatusOK, FromDomainRefund(result))
}
