package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camp-rental/backend/internal/storage/models"
)

func allDay(uid string, first, last models.Date) models.CalendarEvent {
	return models.CalendarEvent{
		UID:    uid,
		Start:  first.Time(nil),
		End:    last.AddDays(1).Time(nil),
		AllDay: true,
	}
}

func newImporter(store *memStore) (*FeedImporter, *recordingBroadcaster) {
	engine := newTestEngine(store)
	broadcaster := &recordingBroadcaster{}
	blocks := NewBlockService(engine, store, broadcaster)
	return NewFeedImporter(store, store, blocks, engine, broadcaster), broadcaster
}

func findBlock(store *memStore, reason string) *models.BlockedDateRange {
	for _, r := range store.blocks {
		if r.Reason == reason {
			cp := r
			return &cp
		}
	}
	return nil
}

func TestImportEvents(t *testing.T) {
	store := newMemStore()
	camp := &models.Camp{ID: "camp-1", HostID: "host-1"}
	store.addBlock("moved", "camp-1", today.AddDays(5), today.AddDays(6), "ical:moved")
	store.addBlock("same", "camp-1", today.AddDays(8), today.AddDays(8), "ical:same")
	store.addBlock("gone", "camp-1", today.AddDays(20), today.AddDays(21), "ical:gone")
	store.addBlock("old", "camp-1", today.AddDays(-10), today.AddDays(-9), "ical:old")
	store.addBlock("manual", "camp-1", today.AddDays(30), today.AddDays(31), "Owner visit")
	store.addBooking("b1", "camp-1", today.AddDays(40), models.BookingStatusConfirmed)
	importer, _ := newImporter(store)

	events := []models.CalendarEvent{
		allDay("same", today.AddDays(8), today.AddDays(8)),
		allDay("moved", today.AddDays(5), today.AddDays(7)),
		allDay("new", today.AddDays(12), today.AddDays(12)),
		allDay("past", today.AddDays(-3), today.AddDays(-2)),
		allDay("booked", today.AddDays(39), today.AddDays(41)),
		allDay("overlap", today.AddDays(31), today.AddDays(32)),
		allDay("", today.AddDays(50), today.AddDays(50)),
	}

	result, err := importer.ImportEvents(context.Background(), camp, events)
	require.NoError(t, err)

	assert.Equal(t, 7, result.EventsFound)
	assert.Equal(t, 2, result.BlocksCreated)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 2, result.Conflicts)
	assert.Equal(t, 1, result.BlocksRemoved)

	moved := findBlock(store, "ical:moved")
	require.NotNil(t, moved)
	assert.NotEqual(t, "moved", moved.ID)
	assert.Equal(t, today.AddDays(7), moved.EndDate)
	assert.Equal(t, models.BlockCategoryEvent, moved.Category)
	assert.Equal(t, "host-1", moved.HostID)

	assert.NotNil(t, findBlock(store, "ical:new"))
	assert.NotNil(t, findBlock(store, "ical:same"))
	assert.NotNil(t, findBlock(store, "ical:old"), "past blocks are history and stay")
	assert.Nil(t, findBlock(store, "ical:gone"))
	assert.Nil(t, findBlock(store, "ical:booked"))
	assert.NotNil(t, findBlock(store, "Owner visit"))
}

func TestImport_FetchesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	store := newMemStore()
	url := srv.URL
	store.camps["camp-1"] = &models.Camp{ID: "camp-1", HostID: "host-1", ICalFeedURL: &url}
	importer, broadcaster := newImporter(store)

	result, err := importer.Import(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.EventsFound)
	assert.Equal(t, 2, result.BlocksCreated)

	timed := findBlock(store, "ical:timed-1")
	require.NotNil(t, timed)
	assert.Equal(t, models.MustParseDate("2026-08-20"), timed.StartDate)
	assert.Equal(t, models.MustParseDate("2026-08-21"), timed.EndDate)

	require.Len(t, broadcaster.completed, 1)
	assert.Equal(t, "camp-1", broadcaster.completed[0].CampID)

	// A second run changes nothing.
	result, err = importer.Import(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.BlocksCreated)
	assert.Equal(t, 2, result.Skipped)
}

func TestImport_FeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	store := newMemStore()
	url := srv.URL
	store.camps["camp-1"] = &models.Camp{ID: "camp-1", ICalFeedURL: &url}
	importer, broadcaster := newImporter(store)

	result, err := importer.Import(context.Background(), "camp-1")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Error(t, result.Error)
	assert.Equal(t, []string{"camp-1"}, broadcaster.failures)

	results, err := importer.ImportAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
}

func TestImport_NoFeed(t *testing.T) {
	store := newMemStore()
	store.camps["camp-1"] = &models.Camp{ID: "camp-1"}
	importer, _ := newImporter(store)

	_, err := importer.Import(context.Background(), "camp-1")
	assert.ErrorIs(t, err, ErrNoFeed)
}
