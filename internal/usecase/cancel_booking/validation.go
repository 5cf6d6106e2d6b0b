package cancel_booking

import (
	"fmt"

	"github.com/m04kA/SMC-HotelService/internal/domain"
)

func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxCancelReasonLength {
		return fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancelReasonLength)
	}
	return nil
}
