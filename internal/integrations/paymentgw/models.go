package paymentgw

// ChargeRequest запрос на списание средств
type ChargeRequest struct {
	Amount       float64 `json:"amount"`
	PaymentToken string  `json:"payment_token"`
}

// ChargeResponse результат списания
type ChargeResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
}

// RefundRequest запрос на возврат средств
type RefundRequest struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

// RefundResponse результат возврата
type RefundResponse struct {
	Success         bool   `json:"success"`
	RefundReference string `json:"refund_reference"`
}

// ErrorResponse модель ошибки платежного шлюза
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
