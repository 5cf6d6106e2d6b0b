package refunds

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrRefundNotPending возвращается при попытке провести возврат,
	// который не находится в статусе pending
	ErrRefundNotPending = errors.New("refund is not pending")

	// ErrNoPaymentTransaction возвращается, когда у бронирования нет
	// платежной транзакции для возврата
	ErrNoPaymentTransaction = errors.New("booking has no payment transaction")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("refunds service: internal error")
)
