package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/booking"
)

// CreateBookingRequest is the body of POST /api/bookings.
// check_in and check_out are RFC 3339 timestamps.
type CreateBookingRequest struct {
	CampID        string    `json:"camp_id" validate:"required"`
	GuestID       string    `json:"guest_id" validate:"required"`
	CheckIn       time.Time `json:"check_in" validate:"required"`
	CheckOut      time.Time `json:"check_out" validate:"required"`
	Guests        int       `json:"guests" validate:"required,min=1,max=50"`
	PaymentMethod string    `json:"payment_method" validate:"omitempty,oneof=card cash"`
}

// ValidateBookingRequest is the body of POST /api/bookings/validate.
type ValidateBookingRequest struct {
	CheckIn  time.Time `json:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" validate:"required"`
}

// CreateBooking books a camp for one day.
func CreateBooking(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		b, err := svc.Create(r.Context(), booking.CreateInput{
			CampID:        req.CampID,
			GuestID:       req.GuestID,
			CheckIn:       req.CheckIn,
			CheckOut:      req.CheckOut,
			Guests:        req.Guests,
			PaymentMethod: req.PaymentMethod,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

// GetBooking returns a booking by ID.
func GetBooking(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// CancelBooking cancels a booking and frees its day.
func CancelBooking(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Cancel(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// ConfirmBooking marks a pending booking as paid.
func ConfirmBooking(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Confirm(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// ValidateBooking checks a date pair without creating anything, for form feedback.
func ValidateBooking(engine *availability.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ValidateBookingRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, engine.ValidateBookingDates(req.CheckIn, req.CheckOut))
	}
}
