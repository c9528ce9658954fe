package storage

import (
	"context"

	"github.com/camp-rental/backend/internal/storage/models"
)

// RecordStore is the SQLite-backed record store the availability engine reads.
// It adapts the individual repositories to the engine's Store and BlockWriter.
type RecordStore struct {
	Bookings *BookingRepository
	Blocks   *BlockedRangeRepository
	Camps    *CampRepository
}

// NewRecordStore creates repositories sharing db.
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{
		Bookings: NewBookingRepository(db),
		Blocks:   NewBlockedRangeRepository(db),
		Camps:    NewCampRepository(db),
	}
}

// ListBookings returns every booking for the camp.
func (s *RecordStore) ListBookings(ctx context.Context, campID string) ([]models.Booking, error) {
	return s.Bookings.ListByCamp(ctx, campID)
}

// ListBlockedRanges returns every blocked range for the camp.
func (s *RecordStore) ListBlockedRanges(ctx context.Context, campID string) ([]models.BlockedDateRange, error) {
	return s.Blocks.ListByCamp(ctx, campID)
}

// CreateBlockedRange persists a blocked range.
func (s *RecordStore) CreateBlockedRange(ctx context.Context, r *models.BlockedDateRange) (string, error) {
	return s.Blocks.Create(ctx, r)
}

// GetBlockedRange returns a blocked range by ID.
func (s *RecordStore) GetBlockedRange(ctx context.Context, id string) (*models.BlockedDateRange, error) {
	return s.Blocks.GetByID(ctx, id)
}

// DeleteBlockedRange removes a blocked range.
func (s *RecordStore) DeleteBlockedRange(ctx context.Context, id string) error {
	return s.Blocks.Delete(ctx, id)
}
