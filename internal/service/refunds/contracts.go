package refunds

import (
	"context"
	"time"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/internal/integrations/paymentgw"
)

// PolicyRepository интерфейс репозитория политик отмены
type PolicyRepository interface {
	GetByRoomType(ctx context.Context, roomTypeID int64) (*domain.CancellationPolicy, error)
	GetByHotel(ctx context.Context, hotelID int64) (*domain.CancellationPolicy, error)
	GetDefault(ctx context.Context) (*domain.CancellationPolicy, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	SetRefund(ctx context.Context, id int64, refund *domain.Refund) error
}

// PaymentClient интерфейс клиента платежного шлюза
type PaymentClient interface {
	Refund(ctx context.Context, transactionID string, amount float64) (*paymentgw.RefundResponse, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
