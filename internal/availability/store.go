package availability

import (
	"context"

	"github.com/camp-rental/backend/internal/storage/models"
)

// Store is the record store the engine reads from. Reads may be stale; the
// engine never caches between calls and never relies on transactions.
type Store interface {
	// ListBookings returns every booking for the camp regardless of status.
	ListBookings(ctx context.Context, campID string) ([]models.Booking, error)

	// ListBlockedRanges returns every blocked range for the camp.
	ListBlockedRanges(ctx context.Context, campID string) ([]models.BlockedDateRange, error)
}

// BlockWriter persists and removes blocked ranges.
type BlockWriter interface {
	GetBlockedRange(ctx context.Context, id string) (*models.BlockedDateRange, error)
	CreateBlockedRange(ctx context.Context, r *models.BlockedDateRange) (string, error)
	DeleteBlockedRange(ctx context.Context, id string) error
}
