package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-HotelService/internal/service/bookings/models"
)

// Service операции над существующими бронированиями: чтение и переходы
// статусной машины confirmed -> checked_in -> checked_out и no_show
//
// Каждый переход выполняется под блокировкой строки бронирования, так
// что конкурирующие cancel и check-in сериализуются: проигравший
// получает ErrInvalidState с тем статусом, который успел записать
// победитель
type Service struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID возвращает бронирование по внутреннему идентификатору
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainBooking(b), nil
}

// GetByCode возвращает бронирование по коду резервации
func (s *Service) GetByCode(ctx context.Context, code string) (*models.BookingResponse, error) {
	b, err := s.bookingRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByCode: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetByCode - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainBooking(b), nil
}

// CheckIn регистрирует заезд гостя
// Допустим только из confirmed и только один раз
func (s *Service) CheckIn(ctx context.Context, id int64) (*models.BookingResponse, error) {
	return s.transition(ctx, id, "CheckIn",
		func(b *domain.Booking) bool { return b.CanCheckIn() },
		func(txCtx context.Context, b *domain.Booking) error {
			now := s.timeProvider.Now()
			if err := s.bookingRepo.SetCheckedIn(txCtx, b.ID, now); err != nil {
				return err
			}
			b.Status = domain.StatusCheckedIn
			b.CheckedInAt = &now
			return nil
		})
}

// CheckOut регистрирует выезд гостя
// Допустим только из checked_in
func (s *Service) CheckOut(ctx context.Context, id int64) (*models.BookingResponse, error) {
	return s.transition(ctx, id, "CheckOut",
		func(b *domain.Booking) bool { return b.CanCheckOut() },
		func(txCtx context.Context, b *domain.Booking) error {
			now := s.timeProvider.Now()
			if err := s.bookingRepo.SetCheckedOut(txCtx, b.ID, now); err != nil {
				return err
			}
			b.Status = domain.StatusCheckedOut
			b.CheckedOutAt = &now
			return nil
		})
}

// MarkNoShow помечает незаезд гостя
// Операторский переход из confirmed, инвентарь не возвращается
func (s *Service) MarkNoShow(ctx context.Context, id int64) (*models.BookingResponse, error) {
	return s.transition(ctx, id, "MarkNoShow",
		func(b *domain.Booking) bool { return b.CanMarkNoShow() },
		func(txCtx context.Context, b *domain.Booking) error {
			if err := s.bookingRepo.UpdateStatus(txCtx, b.ID, domain.StatusNoShow); err != nil {
				return err
			}
			b.Status = domain.StatusNoShow
			return nil
		})
}

// transition общий каркас перехода: блокировка строки, проверка
// предиката статусной машины, запись нового состояния
func (s *Service) transition(
	ctx context.Context,
	id int64,
	op string,
	allowed func(*domain.Booking) bool,
	apply func(context.Context, *domain.Booking) error,
) (*models.BookingResponse, error) {
	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.bookingRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}

		if !allowed(b) {
			s.logger.Warn("%s: rejected for booking=%d in status %q", op, id, b.Status)
			return fmt.Errorf("%w: booking is %s", ErrInvalidState, b.Status)
		}

		if err := apply(txCtx, b); err != nil {
			return fmt.Errorf("%w: %s - failed to apply transition: %v", ErrInternal, op, err)
		}

		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("%s: booking=%d code=%s now %s", op, result.ID, result.Code, result.Status)
	return models.FromDomainBooking(result), nil
}
