package commit_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-HotelService/internal/integrations/paymentgw"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// HoldRepository интерфейс репозитория холдов
type HoldRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.Hold, error)
	GetByTokenForUpdate(ctx context.Context, token string) (*domain.Hold, error)
	UpdateStatus(ctx context.Context, token string, status domain.HoldStatus) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
}

// InventoryRepository интерфейс леджера инвентаря
type InventoryRepository interface {
	ConsumeHeld(ctx context.Context, roomTypeID int64, date types.DateString, qty int) error
	ReleaseHeld(ctx context.Context, roomTypeID int64, date types.DateString, qty int) error
}

// Pricer интерфейс калькулятора цен
type Pricer interface {
	PriceHold(ctx context.Context, h *domain.Hold, couponCode *string, extras float64) (*domain.PriceBreakdown, error)
}

// PolicyResolver интерфейс движка возвратов для разрешения политики отмены
type PolicyResolver interface {
	ResolvePolicy(ctx context.Context, hotelID, roomTypeID int64) (*domain.CancellationPolicy, error)
}

// PaymentClient интерфейс клиента платежного шлюза
type PaymentClient interface {
	Charge(ctx context.Context, amount float64, paymentToken string) (*paymentgw.ChargeResponse, error)
}

// NotifyClient интерфейс клиента сервиса уведомлений
type NotifyClient interface {
	Send(ctx context.Context, event notifyservice.Event)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
