package refunds

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/booking"
	policyRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-HotelService/internal/integrations/paymentgw"
	"github.com/m04kA/SMC-HotelService/pkg/metrics"
	"github.com/m04kA/SMC-HotelService/pkg/ptr"
)

// Service движок отмен и возвратов
//
// Решает три задачи: разрешение применимой политики отмены при
// конвертации холда, расчет суммы возврата по замороженным на
// бронировании ступеням и проведение возврата через платежный шлюз.
// Статусная машина возврата живет независимо от статуса бронирования
type Service struct {
	policyRepo    PolicyRepository
	bookingRepo   BookingRepository
	paymentClient PaymentClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр движка возвратов
func NewService(
	policyRepo PolicyRepository,
	bookingRepo BookingRepository,
	paymentClient PaymentClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		policyRepo:    policyRepo,
		bookingRepo:   bookingRepo,
		paymentClient: paymentClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// ResolvePolicy находит применимую политику отмены
// Порядок разрешения: политика типа номера, затем политика отеля,
// затем платформенный дефолт. Если ничего не найдено, возвращает nil:
// бронирование считается невозвратным
func (s *Service) ResolvePolicy(ctx context.Context, hotelID, roomTypeID int64) (*domain.CancellationPolicy, error) {
	p, err := s.policyRepo.GetByRoomType(ctx, roomTypeID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		return nil, fmt.Errorf("%w: ResolvePolicy - room type lookup: %v", ErrInternal, err)
	}

	p, err = s.policyRepo.GetByHotel(ctx, hotelID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		return nil, fmt.Errorf("%w: ResolvePolicy - hotel lookup: %v", ErrInternal, err)
	}

	p, err = s.policyRepo.GetDefault(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		return nil, fmt.Errorf("%w: ResolvePolicy - default lookup: %v", ErrInternal, err)
	}

	s.logger.Info("ResolvePolicy: no policy for hotel=%d room_type=%d, treating as non-refundable", hotelID, roomTypeID)
	return nil, nil
}

// ComputeRefund считает возврат по замороженным ступеням бронирования
// Часы до заезда считаются с округлением вниз и не бывают отрицательными
// Невозвратная политика дает 0% независимо от ступеней
func (s *Service) ComputeRefund(b *domain.Booking) (*domain.Refund, error) {
	if !b.IsPaid() {
		return &domain.Refund{Status: domain.RefundStatusNotApplicable, Amount: 0}, nil
	}

	percent := 0.0
	if b.PolicyRefundable {
		hours, err := b.HoursBeforeCheckIn(s.timeProvider.Now())
		if err != nil {
			return nil, fmt.Errorf("%w: ComputeRefund - invalid check-in date: %v", ErrInternal, err)
		}

		if tier := domain.SelectTier(b.PolicyTiers, hours); tier != nil {
			percent = tier.RefundPercent
		}
	}

	amount := domain.RefundAmount(b.Amount, percent)
	if amount <= 0 {
		return &domain.Refund{Status: domain.RefundStatusNotApplicable, Amount: 0}, nil
	}

	return &domain.Refund{Status: domain.RefundStatusPending, Amount: amount}, nil
}

// Submit проводит ожидающий возврат через платежный шлюз
// Возврат переводится в processing до обращения к шлюзу, затем в
// completed либо failed по его исходу. Блокировки БД на время
// сетевого вызова не держатся
func (s *Service) Submit(ctx context.Context, bookingID int64) (*domain.Refund, error) {
	var (
		refund *domain.Refund
		txID   string
	)

	// фаза 1: захватываем возврат, переводя его в processing
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.bookingRepo.GetByIDForUpdate(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Submit - repository error: %v", ErrInternal, err)
		}

		if b.Refund == nil || b.Refund.Status != domain.RefundStatusPending {
			return ErrRefundNotPending
		}
		if b.PaymentTxID == nil || *b.PaymentTxID == "" {
			return ErrNoPaymentTransaction
		}

		refund = &domain.Refund{Status: domain.RefundStatusProcessing, Amount: b.Refund.Amount}
		txID = *b.PaymentTxID

		if err := s.bookingRepo.SetRefund(txCtx, bookingID, refund); err != nil {
			return fmt.Errorf("%w: Submit - failed to mark processing: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// фаза 2: обращаемся к шлюзу вне транзакции
	resp, gwErr := s.paymentClient.Refund(ctx, txID, refund.Amount)

	// фаза 3: записываем исход
	now := s.timeProvider.Now()
	switch {
	case gwErr == nil && resp.Success:
		refund = &domain.Refund{
			Status:      domain.RefundStatusCompleted,
			Amount:      refund.Amount,
			TxID:        ptr.Ptr(resp.RefundReference),
			ProcessedAt: &now,
		}
		s.logger.Info("Submit: refund completed booking=%d amount=%.2f ref=%s", bookingID, refund.Amount, resp.RefundReference)
	case errors.Is(gwErr, paymentgw.ErrDeclined):
		refund = &domain.Refund{
			Status:      domain.RefundStatusFailed,
			Amount:      refund.Amount,
			ProcessedAt: &now,
		}
		s.logger.Warn("Submit: refund declined booking=%d amount=%.2f: %v", bookingID, refund.Amount, gwErr)
	default:
		refund = &domain.Refund{
			Status:      domain.RefundStatusFailed,
			Amount:      refund.Amount,
			ProcessedAt: &now,
		}
		s.logger.Error("Submit: gateway error booking=%d: %v", bookingID, gwErr)
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.SetRefund(txCtx, bookingID, refund); err != nil {
			return fmt.Errorf("%w: Submit - failed to record outcome: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RefundsTotal.WithLabelValues(string(refund.Status)).Inc()
	return refund, nil
}
