package cancel_booking

import (
	"time"

	"github.com/m04kA/SMC-HotelService/internal/domain"
)

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID int64  `json:"-"`
	Reason    string `json:"reason"`
}

// RefundInfo состояние возврата после отмены
type RefundInfo struct {
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

// Response модель ответа с результатом отмены
type Response struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code"`
	Status      string      `json:"status"`
	CancelledAt time.Time   `json:"cancelledAt"`
	Refund      *RefundInfo `json:"refund,omitempty"`
}

// toResponse конвертирует domain модель в ответ usecase
func toResponse(b *domain.Booking, cancelledAt time.Time) *Response {
	resp := &Response{
		ID:          b.ID,
		Code:        b.Code,
		Status:      string(domain.StatusCancelled),
		CancelledAt: cancelledAt,
	}
	if b.Refund != nil {
		resp.Refund = &RefundInfo{
			Status: string(b.Refund.Status),
			Amount: b.Refund.Amount,
		}
	}
	return resp
}
