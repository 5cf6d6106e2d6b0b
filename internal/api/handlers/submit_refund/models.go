package submit_refund

import (
	"time"

	"github.com/m04kA/SMC-HotelService/internal/domain"
)

// RefundResponse результат проведения возврата через платёжный шлюз
type RefundResponse struct {
	Status      string     `json:"status"`
	Amount      float64    `json:"amount"`
	TxID        *string    `json:"txId,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// FromDomainRefund конвертирует domain модель в HTTP response
func FromDomainRefund(r *domain.Refund) *RefundResponse {
	return &RefundResponse{
		Status:      string(r.Status),
		Amount:      r.Amount,
		TxID:        r.TxID,
		ProcessedAt: r.ProcessedAt,
	}
}
