package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/camp-rental/backend/internal/storage/models"
)

var errNotFound = fmt.Errorf("not found")

// memStore backs both the engine and the service in tests.
type memStore struct {
	mu       sync.Mutex
	seq      int
	camps    map[string]*models.Camp
	bookings []*models.Booking
	blocks   []models.BlockedDateRange
	listErr  error
}

func newMemStore() *memStore {
	return &memStore{camps: make(map[string]*models.Camp)}
}

func (s *memStore) addCamp(id string, status models.CampStatus) {
	s.camps[id] = &models.Camp{ID: id, HostID: "host-1", Name: id, Status: status, PricePerDay: 45}
}

func (s *memStore) GetByID(_ context.Context, id string) (*models.Camp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.camps[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ListBookings(_ context.Context, campID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Booking
	for _, b := range s.bookings {
		if b.CampID == campID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memStore) ListBlockedRanges(_ context.Context, campID string) ([]models.BlockedDateRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.BlockedDateRange
	for _, r := range s.blocks {
		if r.CampID == campID {
			out = append(out, r)
		}
	}
	return out, nil
}

// bookingRepo adapts memStore to BookingRepo; GetByID collides with CampRepo.
type bookingRepo struct{ *memStore }

func (r bookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if b.ID == "" {
		b.ID = fmt.Sprintf("bk-%d", r.seq)
	}
	cp := *b
	r.bookings = append(r.bookings, &cp)
	return nil
}

func (r bookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r bookingRepo) UpdateStatus(_ context.Context, id string, from, to models.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			if b.Status != from {
				return models.ErrInvalidTransition
			}
			b.Status = to
			return nil
		}
	}
	return errNotFound
}

func (r bookingRepo) ListActive(_ context.Context) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.IsActive() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r bookingRepo) ListConfirmedBefore(_ context.Context, day models.Date) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.BookingStatusConfirmed && b.CheckInDate.Before(day) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r bookingRepo) seed(id, campID string, day models.Date, status models.BookingStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, &models.Booking{
		ID:           id,
		CampID:       campID,
		CheckInDate:  day,
		CheckOutDate: day.AddDays(1),
		Status:       status,
	})
}

type notice struct {
	kind      string
	bookingID string
}

type fakeNotifier struct {
	sent chan notice
}

func (n *fakeNotifier) NotifyBookingCreated(_ context.Context, _ *models.Camp, b *models.Booking) {
	n.sent <- notice{"created", b.ID}
}

func (n *fakeNotifier) NotifyBookingCancelled(_ context.Context, _ *models.Camp, b *models.Booking) {
	n.sent <- notice{"cancelled", b.ID}
}

type fakePayments struct {
	sessions chan string
}

func (p *fakePayments) CreateSession(_ context.Context, _ *models.Camp, b *models.Booking) (string, error) {
	p.sessions <- b.ID
	return "https://pay.example.test/" + b.ID, nil
}

type change struct {
	campID string
	start  models.Date
	end    models.Date
	cause  string
}

type fakeBroadcaster struct {
	mu         sync.Mutex
	changes    []change
	duplicates [][]string
}

func (b *fakeBroadcaster) BroadcastAvailabilityChanged(campID string, start, end models.Date, cause string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change{campID, start, end, cause})
}

func (b *fakeBroadcaster) BroadcastDuplicateBookings(_ string, _ models.Date, ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.duplicates = append(b.duplicates, ids)
}

// gatedRepo holds every Create until want callers have reached it, so each
// of them has already passed its availability check.
type gatedRepo struct {
	bookingRepo
	mu      *sync.Mutex
	want    int
	arrived int
	release chan struct{}
}

func newGatedRepo(repo bookingRepo, want int) *gatedRepo {
	return &gatedRepo{bookingRepo: repo, mu: &sync.Mutex{}, want: want, release: make(chan struct{})}
}

func (g *gatedRepo) Create(ctx context.Context, b *models.Booking) error {
	g.mu.Lock()
	g.arrived++
	if g.arrived == g.want {
		close(g.release)
	}
	g.mu.Unlock()

	select {
	case <-g.release:
	case <-time.After(2 * time.Second):
		return fmt.Errorf("only %d of %d writers reached the insert", g.arrived, g.want)
	}
	return g.bookingRepo.Create(ctx, b)
}
