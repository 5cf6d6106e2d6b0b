package commit_booking

import "errors"

var (
	// ErrHoldNotFound возвращается, когда холд с таким токеном не существует
	ErrHoldNotFound = errors.New("commit_booking: hold not found")

	// ErrHoldExpired возвращается, когда срок жизни холда истек
	ErrHoldExpired = errors.New("commit_booking: hold expired")

	// ErrHoldAlreadyConsumed возвращается при повторной попытке конвертации
	// Дубликат бронирования при этом не создается
	ErrHoldAlreadyConsumed = errors.New("commit_booking: hold already consumed")

	// ErrPaymentDeclined возвращается, когда шлюз отклонил списание
	ErrPaymentDeclined = errors.New("commit_booking: payment declined")

	// ErrPricingFailed возвращается, когда не удалось рассчитать стоимость
	ErrPricingFailed = errors.New("commit_booking: pricing failed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("commit_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("commit_booking: internal error")
)
