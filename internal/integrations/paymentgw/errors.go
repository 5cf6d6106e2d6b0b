package paymentgw

import "errors"

var (
	// ErrDeclined возвращается, когда шлюз отклонил операцию
	// Это бизнес-исход, а не сбой: вызывающий код записывает результат
	ErrDeclined = errors.New("payment gateway declined the operation")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentgw client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от шлюза
	ErrInvalidResponse = errors.New("paymentgw client: invalid response")
)
