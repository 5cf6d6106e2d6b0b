package inventory

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-HotelService/pkg/types"
)

var (
	// ErrRoomTypeNotFound возвращается, когда тип номера не найден
	ErrRoomTypeNotFound = errors.New("room type not found")

	// ErrCapacityConflict возвращается, когда новый total меньше уже
	// удерживаемых и забронированных юнитов: молча овербукать нельзя
	ErrCapacityConflict = errors.New("capacity conflict")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("inventory service: internal error")
)

// ConflictError детализирует ErrCapacityConflict: первая дата диапазона,
// на которой новый total оказался меньше занятых юнитов. Хендлеры
// достают поля через errors.As и отдают их в тело ответа
type ConflictError struct {
	RoomTypeID int64
	Date       types.DateString
	NewTotal   int
	Committed  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: room_type=%d new total %d is below %d committed units for %s",
		ErrCapacityConflict, e.RoomTypeID, e.NewTotal, e.Committed, e.Date)
}

func (e *ConflictError) Unwrap() error { return ErrCapacityConflict }
