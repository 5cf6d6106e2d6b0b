package commit_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-HotelService/internal/domain"
)

func validateRequest(req *Request) error {
	if strings.TrimSpace(req.HoldToken) == "" {
		return fmt.Errorf("%w: holdToken is required", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.Guest.Name)
	if name == "" {
		return fmt.Errorf("%w: guest.name is required", ErrInvalidInput)
	}
	if len(name) > domain.MaxGuestNameLength {
		return fmt.Errorf("%w: guest.name must not exceed %d characters", ErrInvalidInput, domain.MaxGuestNameLength)
	}

	email := strings.TrimSpace(req.Guest.Email)
	if email == "" {
		return fmt.Errorf("%w: guest.email is required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: guest.email is malformed", ErrInvalidInput)
	}

	if req.Extras < 0 {
		return fmt.Errorf("%w: extras must not be negative", ErrInvalidInput)
	}

	return nil
}
