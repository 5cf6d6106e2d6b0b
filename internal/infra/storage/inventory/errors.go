package inventory

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-HotelService/pkg/types"
)

var (
	// ErrRecordNotFound возвращается, когда запись инвентаря не найдена
	ErrRecordNotFound = errors.New("inventory.repository: inventory record not found")

	// ErrInsufficientCapacity возвращается, когда на дату не хватает свободных юнитов
	ErrInsufficientCapacity = errors.New("inventory.repository: insufficient capacity")

	// ErrCapacityConflict возвращается, когда sync уменьшил бы total ниже уже
	// занятых (held + booked) юнитов
	ErrCapacityConflict = errors.New("inventory.repository: capacity conflict")

	// ErrReleaseClamped возвращается, когда возврат юнитов пришлось ограничить
	// сверху: счетчики были рассогласованы, инцидент для warning-лога
	ErrReleaseClamped = errors.New("inventory.repository: release clamped to total units")

	// ErrInsufficientHeld возвращается при попытке перевести в booked больше
	// юнитов, чем удерживается, признак программной ошибки
	ErrInsufficientHeld = errors.New("inventory.repository: insufficient held units")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("inventory.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("inventory.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("inventory.repository: failed to scan row")
)

// CapacityError детализирует отказ резервации: сколько юнитов запрошено
// и сколько реально доступно на дату. Матчится errors.Is на
// ErrInsufficientCapacity, вызывающие достают поля через errors.As
type CapacityError struct {
	RoomTypeID int64
	Date       types.DateString
	Requested  int
	Available  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: %d units requested, %d available for %s",
		ErrInsufficientCapacity, e.Requested, e.Available, e.Date)
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientCapacity }

// ConflictError детализирует отказ синхронизации: новый total и объем
// уже выданных (held + booked) юнитов на дату. Матчится errors.Is на
// ErrCapacityConflict
type ConflictError struct {
	RoomTypeID int64
	Date       types.DateString
	NewTotal   int
	Committed  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: new total %d is below %d committed units for %s",
		ErrCapacityConflict, e.NewTotal, e.Committed, e.Date)
}

func (e *ConflictError) Unwrap() error { return ErrCapacityConflict }
