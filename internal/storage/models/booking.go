package models

import (
	"errors"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// Booking status constants
const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Payment method constants
const (
	PaymentMethodCard = "card"
	PaymentMethodCash = "cash"
)

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid booking status transition")

// Booking is a guest reservation of a camp.
//
// A booking occupies exactly one calendar day, CheckInDate. CheckOutDate is the
// early-morning departure on the following day and never blocks availability.
type Booking struct {
	ID            string        `json:"id"`
	CampID        string        `json:"camp_id"`
	GuestID       string        `json:"guest_id"`
	CheckInDate   Date          `json:"check_in_date"`
	CheckOutDate  Date          `json:"check_out_date"`
	Status        BookingStatus `json:"status"`
	Guests        int           `json:"guests"`
	TotalPrice    float64       `json:"total_price"`
	PaymentMethod string        `json:"payment_method"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsActive returns true if the booking still holds its date.
func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}

// Occupies reports whether the booking holds the given calendar day.
func (b *Booking) Occupies(d Date) bool {
	return b.IsActive() && b.CheckInDate.Equal(d)
}

// CanTransition reports whether a booking may move from its current status to next.
// Cancellation is final; completed bookings are frozen.
func (b *Booking) CanTransition(next BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled || next == BookingStatusCompleted
	default:
		return false
	}
}

// ValidBookingStatus reports whether s names a known status.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}
