package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/storage/models"
)

// ErrNoFeed is returned when importing for a camp without an iCal feed URL.
var ErrNoFeed = errors.New("camp has no calendar feed")

// CampSource reads camps and their feed URLs.
type CampSource interface {
	GetByID(ctx context.Context, id string) (*models.Camp, error)
	ListWithFeeds(ctx context.Context) ([]models.Camp, error)
}

// FeedImporter mirrors a camp's external iCal feed into blocked ranges.
type FeedImporter struct {
	parser      *Parser
	camps       CampSource
	store       availability.Store
	blocks      *BlockService
	engine      *availability.Engine
	broadcaster Broadcaster
}

// NewFeedImporter creates a feed importer. broadcaster may be nil.
func NewFeedImporter(
	camps CampSource,
	store availability.Store,
	blocks *BlockService,
	engine *availability.Engine,
	broadcaster Broadcaster,
) *FeedImporter {
	return &FeedImporter{
		parser:      NewParser(),
		camps:       camps,
		store:       store,
		blocks:      blocks,
		engine:      engine,
		broadcaster: broadcaster,
	}
}

// Import fetches the camp's feed and reconciles its blocks with it.
func (s *FeedImporter) Import(ctx context.Context, campID string) (*models.CalendarImportResult, error) {
	camp, err := s.camps.GetByID(ctx, campID)
	if err != nil {
		return nil, fmt.Errorf("getting camp: %w", err)
	}
	if camp.ICalFeedURL == nil || *camp.ICalFeedURL == "" {
		return nil, ErrNoFeed
	}

	events, err := s.parser.FetchAndParse(ctx, *camp.ICalFeedURL)
	if err != nil {
		result := &models.CalendarImportResult{CampID: campID, Error: err, ImportedAt: time.Now().UTC()}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastCalendarImportError(campID, err)
		}
		return result, err
	}

	result, err := s.ImportEvents(ctx, camp, events)
	if err != nil {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastCalendarImportError(campID, err)
		}
		return result, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCalendarImportCompleted(*result)
	}
	return result, nil
}

// ImportEvents turns parsed events into blocks for camp.
//
// Events already mirrored with the same days are skipped. An event whose days
// moved has its old block replaced. Upcoming blocks whose event vanished from
// the feed are removed. Events that would cover a booking or another block are
// counted as conflicts and left for the host to resolve.
func (s *FeedImporter) ImportEvents(ctx context.Context, camp *models.Camp, events []models.CalendarEvent) (*models.CalendarImportResult, error) {
	result := &models.CalendarImportResult{
		CampID:      camp.ID,
		EventsFound: len(events),
		ImportedAt:  time.Now().UTC(),
	}

	existing, err := s.store.ListBlockedRanges(ctx, camp.ID)
	if err != nil {
		result.Error = err
		return result, fmt.Errorf("listing blocked ranges: %w", err)
	}
	imported := make(map[string]models.BlockedDateRange)
	for _, r := range existing {
		if IsImported(r) {
			imported[importedUID(r)] = r
		}
	}

	today := s.engine.Today()
	loc := s.engine.Location()
	seen := make(map[string]bool)

	for _, event := range events {
		if event.UID == "" {
			result.Skipped++
			continue
		}
		seen[event.UID] = true

		start, end := EventRange(event, loc)
		if end.Before(today) {
			result.Skipped++
			continue
		}

		if prev, ok := imported[event.UID]; ok {
			if prev.StartDate.Equal(start) && prev.EndDate.Equal(end) {
				result.Skipped++
				continue
			}
			if err := s.blocks.UnblockDates(ctx, prev.ID); err != nil {
				log.Printf("Failed to replace moved event %s for camp %s: %v", event.UID, camp.ID, err)
				continue
			}
		}

		if err := s.importEvent(ctx, camp, event, start, end); err != nil {
			if errors.Is(err, ErrBookingConflict) || errors.Is(err, ErrBlockOverlap) {
				log.Printf("Skipping event %s for camp %s: %v", event.UID, camp.ID, err)
				result.Conflicts++
				continue
			}
			log.Printf("Error importing event %s for camp %s: %v", event.UID, camp.ID, err)
			continue
		}
		result.BlocksCreated++
	}

	for uid, r := range imported {
		if seen[uid] || r.EndDate.Before(today) {
			continue
		}
		if err := s.blocks.UnblockDates(ctx, r.ID); err != nil {
			log.Printf("Failed to remove block for deleted event %s: %v", uid, err)
			continue
		}
		result.BlocksRemoved++
	}

	return result, nil
}

func (s *FeedImporter) importEvent(ctx context.Context, camp *models.Camp, event models.CalendarEvent, start, end models.Date) error {
	var notes *string
	if event.Summary != "" {
		summary := event.Summary
		notes = &summary
	}

	_, err := s.blocks.BlockDates(ctx, BlockInput{
		CampID:    camp.ID,
		HostID:    camp.HostID,
		StartDate: start,
		EndDate:   end,
		Reason:    importedReasonPrefix + event.UID,
		Category:  models.BlockCategoryEvent,
		Notes:     notes,
		CreatedBy: "calendar-import",
	})
	return err
}

// ImportAll imports every camp that has a feed URL.
func (s *FeedImporter) ImportAll(ctx context.Context) ([]models.CalendarImportResult, error) {
	camps, err := s.camps.ListWithFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing camps with feeds: %w", err)
	}

	var results []models.CalendarImportResult
	for _, camp := range camps {
		result, err := s.Import(ctx, camp.ID)
		if err != nil {
			log.Printf("Error importing calendar for camp %s: %v", camp.ID, err)
			if result == nil {
				result = &models.CalendarImportResult{
					CampID:     camp.ID,
					Error:      err,
					ImportedAt: time.Now().UTC(),
				}
			}
		}
		results = append(results, *result)
	}

	return results, nil
}
