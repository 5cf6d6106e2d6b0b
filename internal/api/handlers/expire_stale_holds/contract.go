package expire_stale_holds

import (
	"context"

	"github.com/m04kA/SMC-HotelService/internal/service/holds/models"
)

type HoldsService interface {
	ExpireStale(ctx context.Context) (*models.ExpireStaleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
