package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidState возвращается при недопустимом переходе статусной машины
	// Текст ошибки называет текущий статус, чтобы проигравший гонку вызов
	// видел состояние, которое зафиксировал победитель
	ErrInvalidState = errors.New("invalid booking state for this transition")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings service: internal error")
)
