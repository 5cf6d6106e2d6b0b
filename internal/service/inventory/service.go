package inventory

import (
	"context"
	"errors"
	"fmt"

	inventoryRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/inventory"
	roomtypeRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/roomtype"
	"github.com/m04kA/SMC-HotelService/internal/service/inventory/models"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// Service операторские операции над леджером инвентаря:
// синхронизация total_units и управление переопределениями тарифа
//
// Sync никогда не трогает held и booked: если новый total меньше уже
// выданных юнитов, операция падает с ErrCapacityConflict целиком,
// без частично примененных дат
type Service struct {
	inventoryRepo InventoryRepository
	roomTypeRepo  RoomTypeRepository
	txManager     TransactionManager
	logger        Logger
}

// NewService создает новый экземпляр операторского сервиса инвентаря
func NewService(
	inventoryRepo InventoryRepository,
	roomTypeRepo RoomTypeRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		inventoryRepo: inventoryRepo,
		roomTypeRepo:  roomTypeRepo,
		txManager:     txManager,
		logger:        logger,
	}
}

// Sync применяет операторские изменения к диапазону дат и возвращает
// актуальное состояние леджера по этим датам
func (s *Service) Sync(ctx context.Context, roomTypeID int64, req *models.SyncRequest) (*models.SyncResponse, error) {
	if err := validateSyncRequest(roomTypeID, req); err != nil {
		s.logger.Warn("Sync: validation failed: %v", err)
		return nil, err
	}

	if _, err := s.roomTypeRepo.GetByID(ctx, roomTypeID); err != nil {
		if errors.Is(err, roomtypeRepo.ErrRoomTypeNotFound) {
			return nil, fmt.Errorf("%w: room type %d", ErrRoomTypeNotFound, roomTypeID)
		}
		s.logger.Error("Sync: failed to load room type %d: %v", roomTypeID, err)
		return nil, fmt.Errorf("%w: failed to load room type: %v", ErrInternal, err)
	}

	// диапазон оператора включает последнюю дату
	endExclusive, err := req.To.AddDays(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	dates, err := req.From.DatesUntil(endExclusive)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		for _, date := range dates {
			if req.TotalUnits != nil {
				if err := s.inventoryRepo.SyncTotal(txCtx, roomTypeID, date, *req.TotalUnits); err != nil {
					if errors.Is(err, inventoryRepo.ErrCapacityConflict) {
						s.logger.Warn("Sync: capacity conflict for room_type=%d date=%s: %v", roomTypeID, date, err)
						return conflictError(err, roomTypeID, date, *req.TotalUnits)
					}
					return fmt.Errorf("%w: sync total failed for %s: %v", ErrInternal, date, err)
				}
			}

			if req.RateOverride != nil || req.ClearOverride {
				rate := req.RateOverride
				if req.ClearOverride {
					rate = nil
				}
				if err := s.inventoryRepo.SetRateOverride(txCtx, roomTypeID, date, rate); err != nil {
					return fmt.Errorf("%w: set rate override failed for %s: %v", ErrInternal, date, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records, err := s.inventoryRepo.GetRange(ctx, roomTypeID, req.From, endExclusive)
	if err != nil {
		s.logger.Error("Sync: failed to read back range for room_type=%d: %v", roomTypeID, err)
		return nil, fmt.Errorf("%w: failed to read back range: %v", ErrInternal, err)
	}

	s.logger.Info("Sync: room_type=%d dates=%d..%s applied", roomTypeID, len(dates), req.To)
	return models.FromDomainRecords(roomTypeID, records), nil
}

// conflictError строит детализированный отказ синхронизации
func conflictError(err error, roomTypeID int64, date types.DateString, newTotal int) error {
	confErr := &ConflictError{
		RoomTypeID: roomTypeID,
		Date:       date,
		NewTotal:   newTotal,
	}
	var repoErr *inventoryRepo.ConflictError
	if errors.As(err, &repoErr) {
		confErr.Committed = repoErr.Committed
	}
	return confErr
}

func validateSyncRequest(roomTypeID int64, req *models.SyncRequest) error {
	if roomTypeID <= 0 {
		return fmt.Errorf("%w: roomTypeId must be positive", ErrInvalidInput)
	}
	if err := req.From.Validate(); err != nil {
		return fmt.Errorf("%w: invalid from: %v", ErrInvalidInput, err)
	}
	if err := req.To.Validate(); err != nil {
		return fmt.Errorf("%w: invalid to: %v", ErrInvalidInput, err)
	}
	if req.To.Before(req.From) {
		return fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}
	if req.TotalUnits == nil && req.RateOverride == nil && !req.ClearOverride {
		return fmt.Errorf("%w: nothing to apply", ErrInvalidInput)
	}
	if req.TotalUnits != nil && *req.TotalUnits < 0 {
		return fmt.Errorf("%w: totalUnits must not be negative", ErrInvalidInput)
	}
	if req.RateOverride != nil && *req.RateOverride < 0 {
		return fmt.Errorf("%w: rateOverride must not be negative", ErrInvalidInput)
	}
	if req.RateOverride != nil && req.ClearOverride {
		return fmt.Errorf("%w: rateOverride and clearOverride are mutually exclusive", ErrInvalidInput)
	}
	return nil
}
