package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/storage/models"
)

var (
	today      = models.MustParseDate("2026-07-01")
	errMissing = fmt.Errorf("missing")
)

type memStore struct {
	mu       sync.Mutex
	seq      int
	camps    map[string]*models.Camp
	bookings []models.Booking
	blocks   []models.BlockedDateRange
}

func newMemStore() *memStore {
	return &memStore{camps: make(map[string]*models.Camp)}
}

func (s *memStore) ListBookings(_ context.Context, campID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.CampID == campID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) ListBlockedRanges(_ context.Context, campID string) ([]models.BlockedDateRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BlockedDateRange
	for _, r := range s.blocks {
		if r.CampID == campID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) CreateBlockedRange(_ context.Context, r *models.BlockedDateRange) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		s.seq++
		r.ID = fmt.Sprintf("blk-%d", s.seq)
	}
	s.blocks = append(s.blocks, *r)
	return r.ID, nil
}

func (s *memStore) GetBlockedRange(_ context.Context, id string) (*models.BlockedDateRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.blocks {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, errMissing
}

func (s *memStore) DeleteBlockedRange(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.blocks {
		if r.ID == id {
			s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
			return nil
		}
	}
	return errMissing
}

func (s *memStore) GetByID(_ context.Context, id string) (*models.Camp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.camps[id]
	if !ok {
		return nil, errMissing
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ListWithFeeds(_ context.Context) ([]models.Camp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Camp
	for _, c := range s.camps {
		if c.ICalFeedURL != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memStore) addBooking(id, campID string, day models.Date, status models.BookingStatus) {
	s.bookings = append(s.bookings, models.Booking{
		ID: id, CampID: campID, CheckInDate: day, CheckOutDate: day.AddDays(1), Status: status,
	})
}

func (s *memStore) addBlock(id, campID string, start, end models.Date, reason string) {
	s.blocks = append(s.blocks, models.BlockedDateRange{
		ID: id, CampID: campID, StartDate: start, EndDate: end, Reason: reason, Category: models.BlockCategoryOther,
	})
}

func newTestEngine(store availability.Store) *availability.Engine {
	return availability.NewEngine(store,
		availability.WithLocation(time.UTC),
		availability.WithClock(func() time.Time { return today.Time(time.UTC).Add(10 * time.Hour) }),
	)
}

type recordingBroadcaster struct {
	mu        sync.Mutex
	changes   []string
	completed []models.CalendarImportResult
	failures  []string
}

func (b *recordingBroadcaster) BroadcastAvailabilityChanged(campID string, start, end models.Date, cause string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, fmt.Sprintf("%s %s..%s %s", campID, start, end, cause))
}

func (b *recordingBroadcaster) BroadcastCalendarImportCompleted(result models.CalendarImportResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completed = append(b.completed, result)
}

func (b *recordingBroadcaster) BroadcastCalendarImportError(campID string, _ error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, campID)
}
