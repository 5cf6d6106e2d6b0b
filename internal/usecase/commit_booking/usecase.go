package commit_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	holdRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/hold"
	inventoryRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/inventory"
	"github.com/m04kA/SMC-HotelService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-HotelService/internal/integrations/paymentgw"
	"github.com/m04kA/SMC-HotelService/pkg/metrics"
	"github.com/m04kA/SMC-HotelService/pkg/ptr"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// UseCase use case конвертации холда в бронирование
//
// Конвертация атомарна: перевод холда в consumed, перенос юнитов из
// held в booked и вставка бронирования происходят в одной
// сериализуемой транзакции. Падение между шагами не оставляет ни
// зарезервированный инвентарь без бронирования, ни бронирование с
// уже освобожденным инвентарем. Обращение к платежному шлюзу
// выполняется до транзакции: блокировки БД не держатся через сеть
type UseCase struct {
	holdRepo       HoldRepository
	bookingRepo    BookingRepository
	inventoryRepo  InventoryRepository
	pricer         Pricer
	policyResolver PolicyResolver
	paymentClient  PaymentClient
	notifyClient   NotifyClient
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	holdRepo HoldRepository,
	bookingRepo BookingRepository,
	inventoryRepo InventoryRepository,
	pricer Pricer,
	policyResolver PolicyResolver,
	paymentClient PaymentClient,
	notifyClient NotifyClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		holdRepo:       holdRepo,
		bookingRepo:    bookingRepo,
		inventoryRepo:  inventoryRepo,
		pricer:         pricer,
		policyResolver: policyResolver,
		paymentClient:  paymentClient,
		notifyClient:   notifyClient,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет конвертацию холда в бронирование
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CommitBooking: token=%s guest=%s", shortToken(req.HoldToken), req.Guest.Name)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CommitBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Читаем холд без блокировки: ранняя проверка статуса и расчет
	// цены не должны держать строку
	h, err := uc.holdRepo.GetByToken(ctx, req.HoldToken)
	if err != nil {
		if errors.Is(err, holdRepo.ErrHoldNotFound) {
			return nil, ErrHoldNotFound
		}
		uc.logger.Error("CommitBooking: failed to load hold: %v", err)
		return nil, fmt.Errorf("%w: failed to load hold: %v", ErrInternal, err)
	}

	// Ленивое истечение: просроченный, но еще активный холд переводится
	// в expired с возвратом юнитов, прежде чем отдать ошибку
	if h.IsActive() && h.IsExpiredAt(now) {
		if err := uc.expireHold(ctx, h.Token); err != nil {
			return nil, err
		}
		return nil, ErrHoldExpired
	}

	if err := checkHoldUsable(h); err != nil {
		uc.logger.Warn("CommitBooking: hold token=%s not usable: %v", shortToken(h.Token), err)
		return nil, err
	}

	// 3. Рассчитываем стоимость
	breakdown, err := uc.pricer.PriceHold(ctx, h, req.CouponCode, req.Extras)
	if err != nil {
		uc.logger.Warn("CommitBooking: pricing failed for token=%s: %v", shortToken(h.Token), err)
		return nil, fmt.Errorf("%w: %v", ErrPricingFailed, err)
	}

	// 4. Разрешаем и замораживаем политику отмены по первой позиции
	policy, err := uc.policyResolver.ResolvePolicy(ctx, h.HotelID, h.Items[0].RoomTypeID)
	if err != nil {
		uc.logger.Error("CommitBooking: policy resolution failed: %v", err)
		return nil, fmt.Errorf("%w: policy resolution failed: %v", ErrInternal, err)
	}

	// 5. Списываем оплату, если передан платежный токен
	paymentStatus := domain.PaymentStatusDeferred
	var paymentTxID *string
	if req.PaymentToken != nil && *req.PaymentToken != "" {
		charge, err := uc.paymentClient.Charge(ctx, breakdown.Total, *req.PaymentToken)
		if err != nil {
			if errors.Is(err, paymentgw.ErrDeclined) {
				uc.logger.Warn("CommitBooking: payment declined for token=%s", shortToken(h.Token))
				return nil, ErrPaymentDeclined
			}
			uc.logger.Error("CommitBooking: payment gateway error: %v", err)
			return nil, fmt.Errorf("%w: payment gateway error: %v", ErrInternal, err)
		}
		paymentStatus = domain.PaymentStatusPaid
		paymentTxID = ptr.Ptr(charge.TransactionID)
	}

	booking := buildBooking(h, req, breakdown, policy, paymentStatus, paymentTxID)

	dates, err := h.CheckInDate.DatesUntil(h.CheckOutDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hold date range: %v", ErrInternal, err)
	}

	// 6. Атомарная конвертация под блокировкой строки холда
	var created *domain.Booking
	var lapsed bool
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		locked, err := uc.holdRepo.GetByTokenForUpdate(txCtx, req.HoldToken)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				return ErrHoldNotFound
			}
			return fmt.Errorf("%w: failed to lock hold: %v", ErrInternal, err)
		}

		// Холд мог истечь между ранней проверкой и блокировкой;
		// истечение фиксируется в этой же транзакции (nil коммитит),
		// а ошибка отдается уже после коммита
		if locked.IsActive() && locked.IsExpiredAt(uc.timeProvider.Now()) {
			if err := uc.releaseHeldUnits(txCtx, locked, dates); err != nil {
				return err
			}
			if err := uc.holdRepo.UpdateStatus(txCtx, locked.Token, domain.HoldStatusExpired); err != nil {
				return fmt.Errorf("%w: failed to expire hold: %v", ErrInternal, err)
			}
			lapsed = true
			return nil
		}

		// статус перепроверяется под блокировкой: конкурентный commit
		// того же токена проигрывает здесь
		if err := checkHoldUsable(locked); err != nil {
			return err
		}

		for _, item := range locked.Items {
			for _, date := range dates {
				if err := uc.inventoryRepo.ConsumeHeld(txCtx, item.RoomTypeID, date, item.Quantity); err != nil {
					return fmt.Errorf("%w: failed to consume held units: %v", ErrInternal, err)
				}
			}
		}

		created, err = uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		if err := uc.holdRepo.UpdateStatus(txCtx, locked.Token, domain.HoldStatusConsumed); err != nil {
			return fmt.Errorf("%w: failed to consume hold: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		// списание уже прошло, а конвертация не состоялась: деньги
		// требуют ручного возврата, фиксируем инцидент
		if paymentTxID != nil {
			uc.logger.Error("CommitBooking: charge %s succeeded but settlement failed for token=%s: %v",
				*paymentTxID, shortToken(req.HoldToken), err)
		}
		return nil, err
	}
	if lapsed {
		metrics.HoldsExpiredTotal.Inc()
		uc.logger.Info("CommitBooking: hold token=%s lazily expired, inventory released", shortToken(req.HoldToken))
		if paymentTxID != nil {
			uc.logger.Error("CommitBooking: charge %s succeeded but hold expired for token=%s",
				*paymentTxID, shortToken(req.HoldToken))
		}
		return nil, ErrHoldExpired
	}

	metrics.BookingsSettledTotal.Inc()
	uc.logger.Info("CommitBooking: booking created id=%d code=%s status=%s amount=%.2f",
		created.ID, created.Code, created.Status, created.Amount)

	uc.notifyClient.Send(ctx, notifyservice.Event{
		Type:        "booking.settled",
		BookingCode: created.Code,
		HotelID:     created.HotelID,
		Amount:      created.Amount,
		OccurredAt:  uc.timeProvider.Now(),
	})

	return toResponse(created), nil
}

// checkHoldUsable маппит терминальный статус холда на ошибки usecase
// Истечение еще активного холда обрабатывается отдельно: оно требует
// записи (возврат юнитов + смена статуса), а не только проверки
func checkHoldUsable(h *domain.Hold) error {
	switch h.Status {
	case domain.HoldStatusConsumed:
		return ErrHoldAlreadyConsumed
	case domain.HoldStatusExpired:
		return ErrHoldExpired
	case domain.HoldStatusReleased:
		return ErrHoldNotFound
	}
	return nil
}

// expireHold лениво истекает холд в отдельной транзакции: возвращает
// удерживаемые юниты в available и переводит статус в expired
// Повторная проверка под блокировкой защищает от гонки с extend/commit
func (uc *UseCase) expireHold(ctx context.Context, holdToken string) error {
	expired := false
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		h, err := uc.holdRepo.GetByTokenForUpdate(txCtx, holdToken)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				return nil
			}
			return fmt.Errorf("%w: failed to lock hold: %v", ErrInternal, err)
		}

		if !h.IsActive() || !h.IsExpiredAt(uc.timeProvider.Now()) {
			return nil
		}

		dates, err := h.CheckInDate.DatesUntil(h.CheckOutDate)
		if err != nil {
			return fmt.Errorf("%w: invalid hold date range: %v", ErrInternal, err)
		}
		if err := uc.releaseHeldUnits(txCtx, h, dates); err != nil {
			return err
		}
		if err := uc.holdRepo.UpdateStatus(txCtx, h.Token, domain.HoldStatusExpired); err != nil {
			return fmt.Errorf("%w: failed to expire hold: %v", ErrInternal, err)
		}
		expired = true
		return nil
	})
	if err != nil {
		return err
	}
	if expired {
		metrics.HoldsExpiredTotal.Inc()
		uc.logger.Info("CommitBooking: hold token=%s lazily expired, inventory released", shortToken(holdToken))
	}
	return nil
}

// releaseHeldUnits возвращает удерживаемые юниты холда в available
// Clamp-инциденты логируются как warning и не прерывают операцию
func (uc *UseCase) releaseHeldUnits(ctx context.Context, h *domain.Hold, dates []types.DateString) error {
	for _, item := range h.Items {
		for _, date := range dates {
			err := uc.inventoryRepo.ReleaseHeld(ctx, item.RoomTypeID, date, item.Quantity)
			if err != nil {
				if errors.Is(err, inventoryRepo.ErrReleaseClamped) {
					uc.logger.Warn("CommitBooking: inventory inconsistency repaired: %v", err)
					continue
				}
				return fmt.Errorf("%w: failed to release held units: %v", ErrInternal, err)
			}
		}
	}
	return nil
}

// buildBooking собирает бронирование из холда и расчета стоимости
// Позиции денормализуются: название и цена фиксируются для истории
func buildBooking(
	h *domain.Hold,
	req *Request,
	breakdown *domain.PriceBreakdown,
	policy *domain.CancellationPolicy,
	paymentStatus domain.PaymentStatus,
	paymentTxID *string,
) *domain.Booking {
	items := make([]domain.BookingItem, len(h.Items))
	for i, item := range h.Items {
		line := breakdown.Lines[i]
		items[i] = domain.BookingItem{
			RoomTypeID:   item.RoomTypeID,
			RoomTypeName: line.RoomTypeName,
			Quantity:     item.Quantity,
			UnitPrice:    line.UnitPrice,
			Subtotal:     line.Subtotal,
			Adults:       item.Adults,
			Children:     item.Children,
			MealPlan:     item.MealPlan,
		}
	}

	status := domain.StatusPending
	if paymentStatus == domain.PaymentStatusPaid {
		status = domain.StatusConfirmed
	}

	b := &domain.Booking{
		Code:      newReservationCode(),
		HotelID:   h.HotelID,
		HoldToken: h.Token,
		Items:     items,
		Guest: domain.GuestInfo{
			Name:    strings.TrimSpace(req.Guest.Name),
			Email:   strings.TrimSpace(req.Guest.Email),
			Phone:   req.Guest.Phone,
			Address: req.Guest.Address,
		},
		CheckInDate:   h.CheckInDate,
		CheckOutDate:  h.CheckOutDate,
		Status:        status,
		PaymentStatus: paymentStatus,
		Amount:        breakdown.Total,
		PaymentTxID:   paymentTxID,
	}

	if policy != nil {
		b.PolicyID = ptr.Ptr(policy.ID)
		b.PolicyRefundable = policy.IsRefundable
		b.PolicyTiers = append([]domain.PolicyTier(nil), policy.Tiers...)
	}

	return b
}

// newReservationCode генерирует человекочитаемый код резервации
func newReservationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(raw[:10])
}

func shortToken(t string) string {
	if len(t) <= 8 {
		return t
	}
	return t[:8]
}
