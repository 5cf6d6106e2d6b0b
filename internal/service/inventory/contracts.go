package inventory

import (
	"context"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// InventoryRepository интерфейс леджера инвентаря
type InventoryRepository interface {
	GetRange(ctx context.Context, roomTypeID int64, from, to types.DateString) ([]*domain.InventoryRecord, error)
	SyncTotal(ctx context.Context, roomTypeID int64, date types.DateString, newTotal int) error
	SetRateOverride(ctx context.Context, roomTypeID int64, date types.DateString, rate *float64) error
}

// RoomTypeRepository интерфейс репозитория типов номеров
type RoomTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.RoomType, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
