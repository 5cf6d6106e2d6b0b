package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/booking"
	inventoryRepo "github.com/m04kA/SMC-HotelService/internal/infra/storage/inventory"
	"github.com/m04kA/SMC-HotelService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-HotelService/pkg/metrics"
)

// UseCase use case отмены бронирования
//
// Отмена выполняется под блокировкой строки бронирования, поэтому
// конкурирующий check-in сериализуется с ней: проигравший получает
// ErrInvalidState. Возврат инвентаря идет по позициям бронирования,
// а не по давно сконвертированному холду. Сумма возврата считается
// по замороженным на бронировании ступеням политики; сам возврат
// средств через шлюз проводится отдельной операцией
type UseCase struct {
	bookingRepo    BookingRepository
	inventoryRepo  InventoryRepository
	refundComputer RefundComputer
	notifyClient   NotifyClient
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	inventoryRepo InventoryRepository,
	refundComputer RefundComputer,
	notifyClient NotifyClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		inventoryRepo:  inventoryRepo,
		refundComputer: refundComputer,
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

// Execute выполняет отмену бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d", req.BookingID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	var cancelled *domain.Booking

	// 2. Отмена под блокировкой строки бронирования
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := uc.bookingRepo.GetByIDForUpdate(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to lock booking: %v", ErrInternal, err)
		}

		if !b.CanBeCancelled() {
			uc.logger.Warn("CancelBooking: rejected for booking=%d in status %q", b.ID, b.Status)
			return fmt.Errorf("%w: booking is %s", ErrInvalidState, b.Status)
		}

		// 3. Возвращаем юниты бронирования в available
		dates, err := b.CheckInDate.DatesUntil(b.CheckOutDate)
		if err != nil {
			return fmt.Errorf("%w: invalid booking date range: %v", ErrInternal, err)
		}
		for _, item := range b.Items {
			for _, date := range dates {
				err := uc.inventoryRepo.ReleaseBooked(txCtx, item.RoomTypeID, date, item.Quantity)
				if err != nil {
					if errors.Is(err, inventoryRepo.ErrReleaseClamped) {
						uc.logger.Warn("CancelBooking: inventory inconsistency repaired: %v", err)
						continue
					}
					return fmt.Errorf("%w: failed to release booked units: %v", ErrInternal, err)
				}
			}
		}

		// 4. Считаем возврат по замороженной политике
		refund, err := uc.refundComputer.ComputeRefund(b)
		if err != nil {
			return fmt.Errorf("%w: failed to compute refund: %v", ErrInternal, err)
		}

		// 5. Фиксируем отмену и возврат
		if err := uc.bookingRepo.Cancel(txCtx, b.ID, strings.TrimSpace(req.Reason), now); err != nil {
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}
		if err := uc.bookingRepo.SetRefund(txCtx, b.ID, refund); err != nil {
			return fmt.Errorf("%w: failed to record refund: %v", ErrInternal, err)
		}

		b.Status = domain.StatusCancelled
		b.Refund = refund
		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCancelledTotal.Inc()
	uc.logger.Info("CancelBooking: booking=%d code=%s cancelled, refund=%s amount=%.2f",
		cancelled.ID, cancelled.Code, cancelled.Refund.Status, cancelled.Refund.Amount)

	uc.notifyClient.Send(ctx, notifyservice.Event{
		Type:        "booking.cancelled",
		BookingCode: cancelled.Code,
		HotelID:     cancelled.HotelID,
		Amount:      cancelled.Refund.Amount,
		OccurredAt:  now,
	})

	return toResponse(cancelled, now), nil
}
