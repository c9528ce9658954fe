package booking

import (
	"errors"
	"strings"

	"github.com/camp-rental/backend/internal/availability"
)

// ErrCampInactive is returned when the camp does not accept bookings.
var ErrCampInactive = errors.New("camp is not accepting bookings")

// ValidationError carries every date rule a booking request broke.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid booking dates: " + strings.Join(e.Errors, "; ")
}

// UnavailableError is returned when the requested day is taken.
type UnavailableError struct {
	Result *availability.AvailabilityCheckResult
}

func (e *UnavailableError) Error() string {
	return "date unavailable: " + e.Result.Message
}
