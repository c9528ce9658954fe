package availability

import (
	"context"
	"sync"

	"github.com/camp-rental/backend/internal/storage/models"
)

// fakeStore is an in-memory Store. listErr, when set, is returned by every read.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[string][]models.Booking
	blocks   map[string][]models.BlockedDateRange
	listErr  map[string]error
	reads    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: make(map[string][]models.Booking),
		blocks:   make(map[string][]models.BlockedDateRange),
		listErr:  make(map[string]error),
	}
}

func (s *fakeStore) addBooking(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.CampID] = append(s.bookings[b.CampID], b)
}

func (s *fakeStore) setStatus(campID, id string, status models.BookingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings[campID] {
		if s.bookings[campID][i].ID == id {
			s.bookings[campID][i].Status = status
		}
	}
}

func (s *fakeStore) addBlock(r models.BlockedDateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[r.CampID] = append(s.blocks[r.CampID], r)
}

func (s *fakeStore) ListBookings(_ context.Context, campID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if err := s.listErr[campID]; err != nil {
		return nil, err
	}
	return append([]models.Booking(nil), s.bookings[campID]...), nil
}

func (s *fakeStore) ListBlockedRanges(_ context.Context, campID string) ([]models.BlockedDateRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if err := s.listErr[campID]; err != nil {
		return nil, err
	}
	return append([]models.BlockedDateRange(nil), s.blocks[campID]...), nil
}
