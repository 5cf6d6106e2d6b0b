package holds

import (
	"context"
	"time"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// InventoryRepository интерфейс леджера инвентаря
type InventoryRepository interface {
	ReserveNight(ctx context.Context, roomTypeID int64, date types.DateString, qty int) error
	ReleaseHeld(ctx context.Context, roomTypeID int64, date types.DateString, qty int) error
}

// HoldRepository интерфейс репозитория холдов
type HoldRepository interface {
	Create(ctx context.Context, h *domain.Hold) (*domain.Hold, error)
	GetByToken(ctx context.Context, token string) (*domain.Hold, error)
	GetByTokenForUpdate(ctx context.Context, token string) (*domain.Hold, error)
	UpdateStatus(ctx context.Context, token string, status domain.HoldStatus) error
	Extend(ctx context.Context, token string, expiresAt time.Time) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Hold, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
