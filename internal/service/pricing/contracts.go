package pricing

import (
	"context"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/internal/integrations/couponservice"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// RoomTypeRepository интерфейс репозитория типов номеров
type RoomTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.RoomType, error)
}

// InventoryRepository интерфейс леджера для чтения переопределений тарифа
type InventoryRepository interface {
	GetRange(ctx context.Context, roomTypeID int64, from, to types.DateString) ([]*domain.InventoryRecord, error)
}

// CouponClient интерфейс клиента CouponService
type CouponClient interface {
	Validate(ctx context.Context, code string, hotelID int64, roomTypeIDs []int64) (*couponservice.Coupon, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
