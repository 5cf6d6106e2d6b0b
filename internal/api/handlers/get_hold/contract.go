package get_hold

import (
	"context"

	"github.com/m04kA/SMC-HotelService/internal/service/holds/models"
)

type HoldsService interface {
	Get(ctx context.Context, holdToken string) (*models.HoldResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
