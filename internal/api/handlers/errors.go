package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/camp-rental/backend/internal/api/middleware"
	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/booking"
	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/storage"
	"github.com/camp-rental/backend/internal/storage/models"
)

// User-facing messages for infrastructure failures.
const (
	msgSignInAgain = "Your session has expired. Please sign in again."
	msgTryLater    = "The booking service is temporarily unavailable. Please try again in a moment."
)

// writeServiceError maps a domain or storage error onto an HTTP response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid     *booking.ValidationError
		unavailable *booking.UnavailableError
		conflict    *calendar.ConflictError
	)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Record not found")

	case errors.As(err, &invalid):
		middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation, "Booking dates are invalid", invalid.Errors)

	case errors.As(err, &unavailable):
		middleware.WriteErrorWithDetails(w, http.StatusConflict, middleware.ErrDateUnavailable, unavailable.Result.Message, unavailable.Result)

	case errors.As(err, &conflict):
		middleware.WriteErrorWithDetails(w, http.StatusConflict, middleware.ErrConflict, "These dates include existing bookings", conflict.Conflicts)

	case errors.Is(err, calendar.ErrBlockOverlap):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "These dates overlap a range you already blocked")

	case errors.Is(err, booking.ErrCampInactive):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "This camp is not accepting bookings")

	case errors.Is(err, models.ErrInvalidTransition):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, err.Error())

	case errors.Is(err, models.ErrInvalidRange), errors.Is(err, models.ErrInvalidCategory), errors.Is(err, calendar.ErrNoFeed):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())

	case availability.IsPermissionError(err):
		middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, msgSignInAgain)

	case errors.Is(err, availability.ErrUnavailable):
		log.Printf("[%s] Store unavailable: %v", middleware.RequestID(r.Context()), err)
		middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrServiceUnavailable, msgTryLater)

	default:
		log.Printf("[%s] Unhandled error: %v", middleware.RequestID(r.Context()), err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "An unexpected error occurred")
	}
}
