package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	roomtypeRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/roomtype"
	"github.com/m04kA/SMC-HotelService/internal/integrations/couponservice"
	"github.com/m04kA/SMC-HotelService/internal/service/pricing/models"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// Service калькулятор цен
//
// Состояния не имеет: каждый расчет читает базовые тарифы и
// переопределения на момент вызова. Переопределение тарифа на дату
// всегда бьет базовый тариф типа номера. Дата выезда не тарифицируется
type Service struct {
	roomTypeRepo  RoomTypeRepository
	inventoryRepo InventoryRepository
	couponClient  CouponClient
	cfg           domain.PricingConfig
	logger        Logger
}

// NewService создает новый экземпляр калькулятора цен
func NewService(
	roomTypeRepo RoomTypeRepository,
	inventoryRepo InventoryRepository,
	couponClient CouponClient,
	cfg domain.PricingConfig,
	logger Logger,
) *Service {
	return &Service{
		roomTypeRepo:  roomTypeRepo,
		inventoryRepo: inventoryRepo,
		couponClient:  couponClient,
		cfg:           cfg,
		logger:        logger,
	}
}

// Quote рассчитывает стоимость проживания без создания холда
func (s *Service) Quote(ctx context.Context, req *models.QuoteRequest) (*models.QuoteResponse, error) {
	if err := validateQuoteRequest(req); err != nil {
		s.logger.Warn("Quote: validation failed: %v", err)
		return nil, err
	}

	items := req.ToDomainItems()

	breakdown, err := s.Calculate(ctx, req.HotelID, items, req.CheckIn, req.CheckOut, req.CouponCode, req.Extras)
	if err != nil {
		return nil, err
	}

	nights, _ := req.CheckIn.DaysUntil(req.CheckOut)
	return models.FromDomainBreakdown(req, nights, breakdown), nil
}

// PriceHold рассчитывает стоимость по существующему холду
// Используется движком бронирования при конвертации холда
func (s *Service) PriceHold(ctx context.Context, h *domain.Hold, couponCode *string, extras float64) (*domain.PriceBreakdown, error) {
	return s.Calculate(ctx, h.HotelID, h.Items, h.CheckInDate, h.CheckOutDate, couponCode, extras)
}

// Calculate считает разбивку стоимости по позициям, датам и купону
// Скидка применяется к корзине целиком после суммирования позиций
// и зажимается так, чтобы итог не ушел ниже нуля
func (s *Service) Calculate(
	ctx context.Context,
	hotelID int64,
	items []domain.HoldItem,
	checkIn, checkOut types.DateString,
	couponCode *string,
	extras float64,
) (*domain.PriceBreakdown, error) {
	nights, err := checkIn.DaysUntil(checkOut)
	if err != nil || nights <= 0 {
		return nil, fmt.Errorf("%w: invalid date range %s..%s", ErrInvalidInput, checkIn, checkOut)
	}

	dates, err := checkIn.DatesUntil(checkOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	breakdown := &domain.PriceBreakdown{
		Extras: domain.Round2(extras),
		Lines:  make([]domain.PriceLine, 0, len(items)),
	}

	roomTypeIDs := make([]int64, 0, len(items))

	for _, item := range items {
		roomTypeIDs = append(roomTypeIDs, item.RoomTypeID)

		rt, err := s.roomTypeRepo.GetByID(ctx, item.RoomTypeID)
		if err != nil {
			if errors.Is(err, roomtypeRepo.ErrRoomTypeNotFound) {
				return nil, fmt.Errorf("%w: room type %d", ErrRoomTypeNotFound, item.RoomTypeID)
			}
			s.logger.Error("Calculate: failed to load room type %d: %v", item.RoomTypeID, err)
			return nil, fmt.Errorf("%w: failed to load room type: %v", ErrInternal, err)
		}
		if !rt.Active {
			return nil, fmt.Errorf("%w: room type %d is inactive", ErrRoomTypeNotFound, item.RoomTypeID)
		}

		overrides, err := s.rateOverrides(ctx, item.RoomTypeID, checkIn, checkOut)
		if err != nil {
			return nil, err
		}

		// цена за один юнит на весь период: по каждой ночи берем
		// переопределение тарифа, если оно есть
		unitPrice := 0.0
		for _, date := range dates {
			rate := rt.BaseRate
			if override, ok := overrides[date]; ok {
				rate = override
			}
			unitPrice += rate
		}
		unitPrice = domain.Round2(unitPrice)

		lineSubtotal := domain.Round2(unitPrice * float64(item.Quantity))

		mealCharge, err := s.mealCharge(item, nights)
		if err != nil {
			return nil, err
		}

		breakdown.Lines = append(breakdown.Lines, domain.PriceLine{
			RoomTypeID:   rt.ID,
			RoomTypeName: rt.Name,
			Quantity:     item.Quantity,
			UnitPrice:    unitPrice,
			Subtotal:     lineSubtotal,
			MealCharge:   mealCharge,
		})

		breakdown.Subtotal = domain.Round2(breakdown.Subtotal + lineSubtotal)
		breakdown.MealCharges = domain.Round2(breakdown.MealCharges + mealCharge)
	}

	pretax := domain.Round2(breakdown.Subtotal + breakdown.MealCharges + breakdown.Extras)

	if couponCode != nil && *couponCode != "" {
		discount, err := s.resolveDiscount(ctx, *couponCode, hotelID, roomTypeIDs, pretax)
		if err != nil {
			return nil, err
		}
		breakdown.Discount = discount
	}

	taxable := domain.Round2(pretax - breakdown.Discount)
	if taxable < 0 {
		taxable = 0
	}

	breakdown.Tax = domain.Round2(taxable * s.cfg.TaxRatePercent / 100)
	breakdown.Total = domain.Round2(taxable + breakdown.Tax)

	return breakdown, nil
}

// rateOverrides собирает переопределения тарифа по датам периода
func (s *Service) rateOverrides(ctx context.Context, roomTypeID int64, from, to types.DateString) (map[types.DateString]float64, error) {
	records, err := s.inventoryRepo.GetRange(ctx, roomTypeID, from, to)
	if err != nil {
		s.logger.Error("rateOverrides: failed to load inventory for room_type=%d: %v", roomTypeID, err)
		return nil, fmt.Errorf("%w: failed to load rate overrides: %v", ErrInternal, err)
	}

	overrides := make(map[types.DateString]float64)
	for _, rec := range records {
		if rec.HasRateOverride() {
			overrides[rec.Date] = *rec.RateOverride
		}
	}
	return overrides, nil
}

// mealCharge считает доплату за питание: цена плана за человека за ночь
func (s *Service) mealCharge(item domain.HoldItem, nights int) (float64, error) {
	if item.MealPlan == nil || *item.MealPlan == "" {
		return 0, nil
	}

	price, ok := s.cfg.MealPlanPrices[*item.MealPlan]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMealPlan, *item.MealPlan)
	}

	guests := item.Adults + item.Children
	return domain.Round2(price * float64(guests) * float64(nights) * float64(item.Quantity)), nil
}

// resolveDiscount валидирует купон у внешнего сервиса и считает скидку
// Скидка не может превышать стоимость корзины до налога
func (s *Service) resolveDiscount(ctx context.Context, code string, hotelID int64, roomTypeIDs []int64, pretax float64) (float64, error) {
	coupon, err := s.couponClient.Validate(ctx, code, hotelID, roomTypeIDs)
	if err != nil {
		if errors.Is(err, couponservice.ErrCouponNotFound) || errors.Is(err, couponservice.ErrCouponNotApplicable) {
			s.logger.Warn("resolveDiscount: coupon %q rejected: %v", code, err)
			return 0, fmt.Errorf("%w: %q", ErrCouponInvalid, code)
		}
		s.logger.Error("resolveDiscount: coupon service error for %q: %v", code, err)
		return 0, fmt.Errorf("%w: coupon service error: %v", ErrInternal, err)
	}

	var discount float64
	switch domain.DiscountType(coupon.DiscountType) {
	case domain.DiscountTypePercent:
		discount = pretax * coupon.DiscountValue / 100
	case domain.DiscountTypeFixed:
		discount = coupon.DiscountValue
	default:
		s.logger.Error("resolveDiscount: unknown discount type %q for coupon %q", coupon.DiscountType, code)
		return 0, fmt.Errorf("%w: unknown discount type %q", ErrInternal, coupon.DiscountType)
	}

	discount = domain.Round2(discount)
	if discount > pretax {
		discount = pretax
	}
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}

func validateQuoteRequest(req *models.QuoteRequest) error {
	if req.HotelID <= 0 {
		return fmt.Errorf("%w: hotelId must be positive", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	if req.Extras < 0 {
		return fmt.Errorf("%w: extras must not be negative", ErrInvalidInput)
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

	return nil
}
