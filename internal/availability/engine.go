// Package availability decides whether a camp is free on a given calendar day
// and detects conflicts before hosts block dates.
//
// Every call re-reads bookings and blocks from the store. There is no locking:
// callers re-check immediately before writing and accept that two concurrent
// writers can both succeed. Duplicates are reconciled out of band.
package availability

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/camp-rental/backend/internal/storage/models"
)

// Reason explains why a date is unavailable.
type Reason string

// Unavailability reasons, in the order they are checked.
const (
	ReasonPastDate Reason = "past_date"
	ReasonBooked   Reason = "booked"
	ReasonBlocked  Reason = "blocked"
)

// AvailabilityCheckResult is the outcome of a single-day availability check.
// Unavailability is a normal result, not an error.
type AvailabilityCheckResult struct {
	Available     bool   `json:"available"`
	Reason        Reason `json:"reason,omitempty"`
	ConflictingID string `json:"conflicting_id,omitempty"`
	Message       string `json:"message"`
}

// ConflictResult lists the records overlapping a date range.
type ConflictResult struct {
	HasConflict         bool                      `json:"has_conflict"`
	ConflictingBookings []models.Booking          `json:"conflicting_bookings"`
	ConflictingBlocks   []models.BlockedDateRange `json:"conflicting_blocks"`
}

// Engine evaluates availability against a Store.
type Engine struct {
	store    Store
	location *time.Location
	now      func() time.Time
	retrier  *Retrier
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the time zone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRetrier sets the retry policy used by CheckAvailabilityWithRetry.
func WithRetrier(r *Retrier) Option {
	return func(e *Engine) {
		if r != nil {
			e.retrier = r
		}
	}
}

// NewEngine creates an availability engine reading from store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		location: time.Local,
		now:      time.Now,
		retrier:  NewRetrier(DefaultMaxRetries, DefaultRetryBase),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current calendar day in the engine's location.
func (e *Engine) Today() models.Date {
	return models.DateIn(e.now(), e.location)
}

// Location returns the engine's time zone.
func (e *Engine) Location() *time.Location {
	return e.location
}

// CheckAvailability decides whether campID is free on date. Checks run in a
// fixed order and stop at the first failure: past date, booking, block.
func (e *Engine) CheckAvailability(ctx context.Context, campID string, date models.Date) (*AvailabilityCheckResult, error) {
	if date.Before(e.Today()) {
		return &AvailabilityCheckResult{
			Reason:  ReasonPastDate,
			Message: "Cannot book dates in the past",
		}, nil
	}

	bookings, err := e.store.ListBookings(ctx, campID)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	for _, b := range bookings {
		// Only the check-in day is occupied. Check-out is next-morning departure.
		if b.Occupies(date) {
			return &AvailabilityCheckResult{
				Reason:        ReasonBooked,
				ConflictingID: b.ID,
				Message:       fmt.Sprintf("%s is already booked", date),
			}, nil
		}
	}

	blocks, err := e.store.ListBlockedRanges(ctx, campID)
	if err != nil {
		return nil, fmt.Errorf("listing blocked ranges: %w", err)
	}
	for _, r := range blocks {
		if r.Contains(date) {
			msg := fmt.Sprintf("%s has been blocked by the host", date)
			if r.Reason != "" {
				msg += ": " + r.Reason
			}
			return &AvailabilityCheckResult{
				Reason:        ReasonBlocked,
				ConflictingID: r.ID,
				Message:       msg,
			}, nil
		}
	}

	return &AvailabilityCheckResult{
		Available: true,
		Message:   fmt.Sprintf("%s is available", date),
	}, nil
}

// CheckAvailabilityWithRetry wraps CheckAvailability in the engine's retry
// policy. A maxRetries of zero or less uses the policy default.
func (e *Engine) CheckAvailabilityWithRetry(ctx context.Context, campID string, date models.Date, maxRetries int) (*AvailabilityCheckResult, error) {
	return WithRetry(ctx, e.retrier, maxRetries, func() (*AvailabilityCheckResult, error) {
		return e.CheckAvailability(ctx, campID, date)
	})
}

// DetectConflicts returns the active bookings and blocks overlapping the
// inclusive range [start, end]. It must run before a block is written.
func (e *Engine) DetectConflicts(ctx context.Context, campID string, start, end models.Date) (*ConflictResult, error) {
	if start.After(end) {
		return nil, models.ErrInvalidRange
	}

	bookings, err := e.store.ListBookings(ctx, campID)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	blocks, err := e.store.ListBlockedRanges(ctx, campID)
	if err != nil {
		return nil, fmt.Errorf("listing blocked ranges: %w", err)
	}

	result := &ConflictResult{
		ConflictingBookings: []models.Booking{},
		ConflictingBlocks:   []models.BlockedDateRange{},
	}
	for _, b := range bookings {
		if b.IsActive() && b.CheckInDate.Between(start, end) {
			result.ConflictingBookings = append(result.ConflictingBookings, b)
		}
	}
	for _, r := range blocks {
		if r.Overlaps(start, end) {
			result.ConflictingBlocks = append(result.ConflictingBlocks, r)
		}
	}
	result.HasConflict = len(result.ConflictingBookings) > 0 || len(result.ConflictingBlocks) > 0

	return result, nil
}

// GetBookedDates returns the sorted check-in days of every active booking.
func (e *Engine) GetBookedDates(ctx context.Context, campID string) ([]models.Date, error) {
	bookings, err := e.store.ListBookings(ctx, campID)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}

	dates := make([]models.Date, 0, len(bookings))
	for _, b := range bookings {
		if b.IsActive() {
			dates = append(dates, b.CheckInDate)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return dates, nil
}

// FilterAvailableCamps returns the subset of campIDs available on date,
// preserving order. A camp whose check fails is left out.
func (e *Engine) FilterAvailableCamps(ctx context.Context, campIDs []string, date models.Date) []string {
	available := make([]string, 0, len(campIDs))
	for _, id := range campIDs {
		result, err := e.CheckAvailability(ctx, id, date)
		if err != nil {
			log.Printf("Excluding camp %s from search, availability unknown: %v", id, err)
			continue
		}
		if result.Available {
			available = append(available, id)
		}
	}
	return available
}
