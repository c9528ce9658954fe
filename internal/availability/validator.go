package availability

import (
	"time"

	"github.com/camp-rental/backend/internal/storage/models"
)

// Validation messages returned by ValidateBookingDates.
const (
	MsgCheckInPast       = "Check-in date cannot be in the past"
	MsgCheckOutNotAfter  = "Check-out must be after check-in"
	MsgSameDayCheckInOut = "Check-in and check-out cannot be on the same day"
)

// ValidationResult lists every rule a check-in/check-out pair breaks.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateBookingDates checks a check-in/check-out pair against today in loc.
// Every rule is evaluated; errors accumulate. Ordering compares instants,
// while the past and same-day rules compare calendar days in loc.
func ValidateBookingDates(checkIn, checkOut time.Time, now time.Time, loc *time.Location) ValidationResult {
	errs := []string{}

	today := models.DateIn(now, loc)
	inDay := models.DateIn(checkIn, loc)
	outDay := models.DateIn(checkOut, loc)

	if inDay.Before(today) {
		errs = append(errs, MsgCheckInPast)
	}
	if !checkOut.After(checkIn) {
		errs = append(errs, MsgCheckOutNotAfter)
	}
	if inDay.Equal(outDay) {
		errs = append(errs, MsgSameDayCheckInOut)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateBookingDates runs the validator with the engine's clock and location.
func (e *Engine) ValidateBookingDates(checkIn, checkOut time.Time) ValidationResult {
	return ValidateBookingDates(checkIn, checkOut, e.now(), e.location)
}
