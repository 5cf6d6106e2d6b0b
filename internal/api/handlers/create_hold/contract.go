package create_hold

import (
	"context"

	"github.com/m04kA/SMC-HotelService/internal/service/holds/models"
)

type HoldsService interface {
	Create(ctx context.Context, req *models.CreateHoldRequest) (*models.HoldResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
