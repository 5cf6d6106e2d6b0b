package submit_refund

import (
	"context"

	"github.com/m04kA/SMC-HotelService/internal/domain"
)

type RefundsService interface {
	Submit(ctx context.Context, bookingID int64) (*domain.Refund, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
