package holds

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-HotelService/pkg/types"
)

var (
	// ErrInsufficientCapacity возвращается, когда на одну из дат не хватает
	// свободных юнитов; вызывающий может повторить с другими датами или
	// количеством
	ErrInsufficientCapacity = errors.New("insufficient capacity")

	// ErrHoldNotFound возвращается, когда холд с таким токеном не существует
	ErrHoldNotFound = errors.New("hold not found")

	// ErrHoldExpired возвращается, когда срок жизни холда истек
	// Терминально для токена: нужно создавать новый холд
	ErrHoldExpired = errors.New("hold expired")

	// ErrHoldAlreadyConsumed возвращается, когда холд уже сконвертирован
	// в бронирование
	ErrHoldAlreadyConsumed = errors.New("hold already consumed")

	// ErrExtensionLimitReached возвращается при превышении лимита продлений
	ErrExtensionLimitReached = errors.New("hold extension limit reached")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("holds service: internal error")
)

// CapacityError детализирует ErrInsufficientCapacity: первая дата
// диапазона, на которой не хватило юнитов, и фактический остаток.
// Хендлеры достают поля через errors.As и отдают их в тело ответа
type CapacityError struct {
	RoomTypeID int64
	Date       types.DateString
	Requested  int
	Available  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: room_type=%d requested %d, available %d for %s",
		ErrInsufficientCapacity, e.RoomTypeID, e.Requested, e.Available, e.Date)
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientCapacity }
