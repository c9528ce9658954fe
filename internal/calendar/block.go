package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/storage/models"
)

// Cause values attached to availability change events.
const (
	CauseDatesBlocked   = "dates_blocked"
	CauseDatesUnblocked = "dates_unblocked"
)

// importedReasonPrefix marks blocks created from an external feed.
const importedReasonPrefix = "ical:"

var (
	// ErrBookingConflict is returned when a block would cover a booked day.
	ErrBookingConflict = errors.New("dates conflict with existing bookings")

	// ErrBlockOverlap is returned when a block would overlap an existing block.
	ErrBlockOverlap = errors.New("dates overlap an existing block")
)

// ConflictError carries the bookings a refused block would have covered.
type ConflictError struct {
	Conflicts *availability.ConflictResult
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts.ConflictingBookings))
	for _, b := range e.Conflicts.ConflictingBookings {
		ids = append(ids, b.ID)
	}
	return fmt.Sprintf("%v: %s", ErrBookingConflict, strings.Join(ids, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrBookingConflict }

// Broadcaster publishes calendar changes to connected clients.
type Broadcaster interface {
	BroadcastAvailabilityChanged(campID string, start, end models.Date, cause string)
	BroadcastCalendarImportCompleted(result models.CalendarImportResult)
	BroadcastCalendarImportError(campID string, err error)
}

// BlockInput is a host's request to take a range of days off the market.
// ID is normally empty; restored records keep the ID they were exported with.
type BlockInput struct {
	ID        string
	CampID    string
	HostID    string
	StartDate models.Date
	EndDate   models.Date
	Reason    string
	Category  models.BlockCategory
	Notes     *string
	CreatedBy string
}

// BlockService creates and removes blocked ranges after checking for conflicts.
type BlockService struct {
	engine      *availability.Engine
	writer      availability.BlockWriter
	broadcaster Broadcaster
}

// NewBlockService creates a block service. broadcaster may be nil.
func NewBlockService(engine *availability.Engine, writer availability.BlockWriter, broadcaster Broadcaster) *BlockService {
	return &BlockService{engine: engine, writer: writer, broadcaster: broadcaster}
}

// BlockDates persists a blocked range unless it would cover an active booking
// or overlap another block. The conflict check and the write are not atomic.
func (s *BlockService) BlockDates(ctx context.Context, in BlockInput) (*models.BlockedDateRange, error) {
	if in.Category == "" {
		in.Category = models.BlockCategoryOther
	}
	r := &models.BlockedDateRange{
		ID:        in.ID,
		CampID:    in.CampID,
		HostID:    in.HostID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Reason:    in.Reason,
		Category:  in.Category,
		Notes:     in.Notes,
		CreatedBy: in.CreatedBy,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	conflicts, err := s.engine.DetectConflicts(ctx, in.CampID, in.StartDate, in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("detecting conflicts: %w", err)
	}
	if len(conflicts.ConflictingBookings) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}
	if len(conflicts.ConflictingBlocks) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBlockOverlap, conflicts.ConflictingBlocks[0].ID)
	}

	if _, err := s.writer.CreateBlockedRange(ctx, r); err != nil {
		return nil, fmt.Errorf("creating blocked range: %w", err)
	}

	log.Printf("Blocked %s to %s for camp %s (%s)", r.StartDate, r.EndDate, r.CampID, r.Category)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAvailabilityChanged(r.CampID, r.StartDate, r.EndDate, CauseDatesBlocked)
	}

	return r, nil
}

// UnblockDates deletes a blocked range.
func (s *BlockService) UnblockDates(ctx context.Context, id string) error {
	r, err := s.writer.GetBlockedRange(ctx, id)
	if err != nil {
		return fmt.Errorf("loading blocked range: %w", err)
	}
	if err := s.writer.DeleteBlockedRange(ctx, id); err != nil {
		return fmt.Errorf("deleting blocked range: %w", err)
	}

	log.Printf("Unblocked %s to %s for camp %s", r.StartDate, r.EndDate, r.CampID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAvailabilityChanged(r.CampID, r.StartDate, r.EndDate, CauseDatesUnblocked)
	}
	return nil
}

// IsImported reports whether r was created from an external calendar feed.
func IsImported(r models.BlockedDateRange) bool {
	return strings.HasPrefix(r.Reason, importedReasonPrefix)
}

// importedUID returns the feed UID r was created from.
func importedUID(r models.BlockedDateRange) string {
	return strings.TrimPrefix(r.Reason, importedReasonPrefix)
}
