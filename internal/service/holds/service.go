package holds

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	holdRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/hold"
	inventoryRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/inventory"
	"github.com/m04kA/SMC-HotelService/internal/service/holds/models"
	"github.com/m04kA/SMC-HotelService/pkg/metrics"
	"github.com/m04kA/SMC-HotelService/pkg/token"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// Service менеджер холдов: создание, продление, освобождение и
// истечение временных резерваций инвентаря
//
// Истечение ленивое: просроченный холд переводится в expired (и юниты
// возвращаются в available) при следующем обращении по токену либо
// пачкой в ExpireStale, который дергает внешний периодический sweep.
// Никакого таймера внутри сервиса нет, вызывающие обязаны терпеть
// задержку между формальным истечением и фактическим освобождением
type Service struct {
	inventoryRepo InventoryRepository
	holdRepo      HoldRepository
	txManager     TransactionManager
	timeProvider  TimeProvider
	cfg           domain.HoldConfig
	logger        Logger
}

// NewService создает новый экземпляр менеджера холдов
// Конфигурация (срок жизни, лимит продлений) внедряется явно
func NewService(
	inventoryRepo InventoryRepository,
	holdRepo HoldRepository,
	txManager TransactionManager,
	cfg domain.HoldConfig,
	logger Logger,
) *Service {
	return &Service{
		inventoryRepo: inventoryRepo,
		holdRepo:      holdRepo,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		cfg:           cfg,
		logger:        logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create создает холд, резервируя юниты на каждую ночь диапазона
// Резервация атомарна по всему диапазону: если хотя бы на одну дату
// юнитов не хватает, транзакция откатывается и частичных холдов
// не остается
func (s *Service) Create(ctx context.Context, req *models.CreateHoldRequest) (*models.HoldResponse, error) {
	if err := validateCreateRequest(req); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	now := s.timeProvider.Now()

	holdToken, err := token.New()
	if err != nil {
		s.logger.Error("Create: failed to generate token: %v", err)
		return nil, fmt.Errorf("%w: failed to generate token: %v", ErrInternal, err)
	}

	dates, err := req.CheckIn.DatesUntil(req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	h := &domain.Hold{
		Token:        holdToken,
		HotelID:      req.HotelID,
		Items:        req.ToDomainItems(),
		CheckInDate:  req.CheckIn,
		CheckOutDate: req.CheckOut,
		Status:       domain.HoldStatusActive,
		ExpiresAt:    now.Add(s.cfg.Duration),
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		for _, item := range h.Items {
			for _, date := range dates {
				if err := s.inventoryRepo.ReserveNight(txCtx, item.RoomTypeID, date, item.Quantity); err != nil {
					if errors.Is(err, inventoryRepo.ErrInsufficientCapacity) ||
						errors.Is(err, inventoryRepo.ErrRecordNotFound) {
						metrics.InventoryReserveConflictsTotal.Inc()
						s.logger.Warn("Create: capacity check failed for room_type=%d date=%s: %v",
							item.RoomTypeID, date, err)
						return capacityError(err, item, date)
					}
					s.logger.Error("Create: reserve failed for room_type=%d date=%s: %v",
						item.RoomTypeID, date, err)
					return fmt.Errorf("%w: reserve failed: %v", ErrInternal, err)
				}
			}
		}

		if _, err := s.holdRepo.Create(txCtx, h); err != nil {
			s.logger.Error("Create: failed to persist hold: %v", err)
			return fmt.Errorf("%w: failed to persist hold: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.HoldsCreatedTotal.Inc()
	s.logger.Info("Create: hold created token=%s hotel=%d nights=%d items=%d expires_at=%s",
		shortToken(h.Token), h.HotelID, len(dates), len(h.Items), h.ExpiresAt.Format("15:04:05"))
	return models.FromDomainHold(h), nil
}

// Get возвращает холд по токену, лениво проверяя истечение
// Просроченный холд здесь же переводится в expired с возвратом юнитов
func (s *Service) Get(ctx context.Context, holdToken string) (*models.HoldResponse, error) {
	h, err := s.holdRepo.GetByToken(ctx, holdToken)
	if err != nil {
		if errors.Is(err, holdRepo.ErrHoldNotFound) {
			return nil, ErrHoldNotFound
		}
		s.logger.Error("Get: repository error: %v", err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	if err := s.checkStatus(h); err != nil {
		return nil, err
	}

	if h.IsExpiredAt(s.timeProvider.Now()) {
		if err := s.expireHold(ctx, h.Token); err != nil {
			return nil, err
		}
		return nil, ErrHoldExpired
	}

	return models.FromDomainHold(h), nil
}

// Extend продлевает холд на еще один период, не трогая инвентарь
// (юниты уже удерживаются). Отклоняет продление после лимита
func (s *Service) Extend(ctx context.Context, holdToken string) (*models.HoldResponse, error) {
	var result *domain.Hold
	var lapsed bool

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		h, err := s.holdRepo.GetByTokenForUpdate(txCtx, holdToken)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				return ErrHoldNotFound
			}
			return fmt.Errorf("%w: Extend - repository error: %v", ErrInternal, err)
		}

		if err := s.checkStatus(h); err != nil {
			return err
		}

		// Ленивое истечение пишется в этой же транзакции; nil коммитит,
		// ошибка отдается уже после коммита
		if h.IsExpiredAt(s.timeProvider.Now()) {
			if err := s.releaseUnits(txCtx, h); err != nil {
				return err
			}
			if err := s.holdRepo.UpdateStatus(txCtx, h.Token, domain.HoldStatusExpired); err != nil {
				return fmt.Errorf("%w: Extend - failed to expire hold: %v", ErrInternal, err)
			}
			lapsed = true
			return nil
		}

		if h.ExtensionCount >= s.cfg.MaxExtensions {
			s.logger.Warn("Extend: hold token=%s reached extension limit %d",
				shortToken(h.Token), s.cfg.MaxExtensions)
			return ErrExtensionLimitReached
		}

		newExpiresAt := h.ExpiresAt.Add(s.cfg.Duration)
		if err := s.holdRepo.Extend(txCtx, h.Token, newExpiresAt); err != nil {
			return fmt.Errorf("%w: Extend - failed to extend hold: %v", ErrInternal, err)
		}

		h.ExpiresAt = newExpiresAt
		h.ExtensionCount++
		result = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if lapsed {
		metrics.HoldsExpiredTotal.Inc()
		s.logger.Info("Extend: hold token=%s lazily expired", shortToken(holdToken))
		return nil, ErrHoldExpired
	}

	s.logger.Info("Extend: hold token=%s extended to %s (extension %d/%d)",
		shortToken(result.Token), result.ExpiresAt.Format("15:04:05"),
		result.ExtensionCount, s.cfg.MaxExtensions)
	return models.FromDomainHold(result), nil
}

// Release освобождает холд и возвращает юниты в available
// Идемпотентен: по уже истекшему, освобожденному или сконвертированному
// холду ничего не делает
func (s *Service) Release(ctx context.Context, holdToken string) error {
	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		h, err := s.holdRepo.GetByTokenForUpdate(txCtx, holdToken)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				return ErrHoldNotFound
			}
			return fmt.Errorf("%w: Release - repository error: %v", ErrInternal, err)
		}

		if !h.IsActive() {
			return nil
		}

		if err := s.releaseUnits(txCtx, h); err != nil {
			return err
		}
		if err := s.holdRepo.UpdateStatus(txCtx, h.Token, domain.HoldStatusReleased); err != nil {
			return fmt.Errorf("%w: Release - failed to update status: %v", ErrInternal, err)
		}

		s.logger.Info("Release: hold token=%s released", shortToken(h.Token))
		return nil
	})
}

// ExpireStale пачкой истекает просроченные холды, которые никто не трогал
// Вызывается внешним периодическим sweep'ом, чтобы брошенные сессии не
// держали инвентарь бесконечно
func (s *Service) ExpireStale(ctx context.Context) (*models.ExpireStaleResponse, error) {
	now := s.timeProvider.Now()
	expired := 0

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		stale, err := s.holdRepo.ListExpired(txCtx, now, s.cfg.SweepBatch)
		if err != nil {
			return fmt.Errorf("%w: ExpireStale - repository error: %v", ErrInternal, err)
		}

		for _, h := range stale {
			if err := s.releaseUnits(txCtx, h); err != nil {
				return err
			}
			if err := s.holdRepo.UpdateStatus(txCtx, h.Token, domain.HoldStatusExpired); err != nil {
				return fmt.Errorf("%w: ExpireStale - failed to update status: %v", ErrInternal, err)
			}
			metrics.HoldsExpiredTotal.Inc()
			expired++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired > 0 {
		s.logger.Info("ExpireStale: expired %d stale holds", expired)
	}
	return &models.ExpireStaleResponse{Expired: expired}, nil
}

// checkStatus маппит терминальные статусы холда на сервисные ошибки
func (s *Service) checkStatus(h *domain.Hold) error {
	switch h.Status {
	case domain.HoldStatusActive:
		return nil
	case domain.HoldStatusConsumed:
		return ErrHoldAlreadyConsumed
	case domain.HoldStatusExpired:
		return ErrHoldExpired
	case domain.HoldStatusReleased:
		return ErrHoldNotFound
	default:
		return fmt.Errorf("%w: unknown hold status %q", ErrInternal, h.Status)
	}
}

// expireHold переводит холд в expired в отдельной транзакции
// Повторная проверка статуса под блокировкой защищает от гонки с
// конкурентным extend/commit
func (s *Service) expireHold(ctx context.Context, holdToken string) error {
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		h, err := s.holdRepo.GetByTokenForUpdate(txCtx, holdToken)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				return nil
			}
			return fmt.Errorf("%w: expireHold - repository error: %v", ErrInternal, err)
		}

		if !h.IsExpiredAt(s.timeProvider.Now()) {
			return nil
		}

		if err := s.releaseUnits(txCtx, h); err != nil {
			return err
		}
		if err := s.holdRepo.UpdateStatus(txCtx, h.Token, domain.HoldStatusExpired); err != nil {
			return fmt.Errorf("%w: expireHold - failed to update status: %v", ErrInternal, err)
		}

		metrics.HoldsExpiredTotal.Inc()
		s.logger.Info("expireHold: hold token=%s lazily expired, inventory released", shortToken(holdToken))
		return nil
	})
	return err
}

// releaseUnits возвращает удерживаемые юниты холда в available
// Clamp-инциденты логируются как warning и не прерывают операцию
func (s *Service) releaseUnits(ctx context.Context, h *domain.Hold) error {
	dates, err := h.CheckInDate.DatesUntil(h.CheckOutDate)
	if err != nil {
		return fmt.Errorf("%w: releaseUnits - invalid date range: %v", ErrInternal, err)
	}

	for _, item := range h.Items {
		for _, date := range dates {
			err := s.inventoryRepo.ReleaseHeld(ctx, item.RoomTypeID, date, item.Quantity)
			if err != nil {
				if errors.Is(err, inventoryRepo.ErrReleaseClamped) {
					s.logger.Warn("releaseUnits: inventory inconsistency repaired: %v", err)
					continue
				}
				return fmt.Errorf("%w: releaseUnits - release failed: %v", ErrInternal, err)
			}
		}
	}
	return nil
}

// capacityError строит детализированный отказ резервации
// Для даты без записи инвентаря остаток равен нулю
func capacityError(err error, item domain.HoldItem, date types.DateString) error {
	capErr := &CapacityError{
		RoomTypeID: item.RoomTypeID,
		Date:       date,
		Requested:  item.Quantity,
	}
	var repoErr *inventoryRepo.CapacityError
	if errors.As(err, &repoErr) {
		capErr.Available = repoErr.Available
	}
	return capErr
}

func validateCreateRequest(req *models.CreateHoldRequest) error {
	if req.HotelID <= 0 {
		return fmt.Errorf("%w: hotelId must be positive", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	if len(req.Items) > domain.MaxHoldItems {
		return fmt.Errorf("%w: at most %d items are allowed", ErrInvalidInput, domain.MaxHoldItems)
	}

	for i, item := range req.Items {
		if item.RoomTypeID <= 0 {
			return fmt.Errorf("%w: items[%d].roomTypeId must be positive", ErrInvalidInput, i)
		}
		if item.Quantity <= 0 || item.Quantity > domain.MaxQuantityPerItem {
			return fmt.Errorf("%w: items[%d].quantity must be between 1 and %d",
				ErrInvalidInput, i, domain.MaxQuantityPerItem)
		}
		if item.Adults <= 0 {
			return fmt.Errorf("%w: items[%d].adults must be positive", ErrInvalidInput, i)
		}
		if item.Children < 0 {
			return fmt.Errorf("%w: items[%d].children must not be negative", ErrInvalidInput, i)
		}
	}

	if err := req.CheckIn.Validate(); err != nil {
		return fmt.Errorf("%w: invalid checkIn: %v", ErrInvalidInput, err)
	}
	if err := req.CheckOut.Validate(); err != nil {
		return fmt.Errorf("%w: invalid checkOut: %v", ErrInvalidInput, err)
	}
	if !req.CheckIn.Before(req.CheckOut) {
		return fmt.Errorf("%w: checkOut must be after checkIn", ErrInvalidInput)
	}

	nights, err := req.CheckIn.DaysUntil(req.CheckOut)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if nights > domain.MaxStayNights {
		return fmt.Errorf("%w: stay must not exceed %d nights", ErrInvalidInput, domain.MaxStayNights)
	}

	return nil
}

// shortToken обрезает токен для логов: целиком он никому в логах не нужен
func shortToken(t string) string {
	if len(t) <= 8 {
		return t
	}
	return t[:8]
}
