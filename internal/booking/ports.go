package booking

import (
	"context"

	"github.com/camp-rental/backend/internal/storage/models"
)

// BookingRepo persists bookings.
type BookingRepo interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) error
	ListActive(ctx context.Context) ([]models.Booking, error)
	ListConfirmedBefore(ctx context.Context, day models.Date) ([]models.Booking, error)
}

// CampRepo reads camps.
type CampRepo interface {
	GetByID(ctx context.Context, id string) (*models.Camp, error)
}

// Notifier sends guest and host emails. Calls are fire-and-forget.
type Notifier interface {
	NotifyBookingCreated(ctx context.Context, camp *models.Camp, b *models.Booking)
	NotifyBookingCancelled(ctx context.Context, camp *models.Camp, b *models.Booking)
}

// PaymentProvider opens a hosted checkout session for a pending booking.
type PaymentProvider interface {
	CreateSession(ctx context.Context, camp *models.Camp, b *models.Booking) (string, error)
}

// Broadcaster publishes availability changes to connected calendars.
type Broadcaster interface {
	BroadcastAvailabilityChanged(campID string, start, end models.Date, cause string)
	BroadcastDuplicateBookings(campID string, date models.Date, bookingIDs []string)
}
