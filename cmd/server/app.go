package main

import (
	"fmt"
	"log"
	"os"

	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/booking"
	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/notify"
	"github.com/camp-rental/backend/internal/storage"
	"github.com/camp-rental/backend/internal/websocket"
)

// app holds the wired services shared by the commands.
type app struct {
	db       *storage.DB
	store    *storage.RecordStore
	engine   *availability.Engine
	bookings *booking.Service
	blocks   *calendar.BlockService
	importer *calendar.FeedImporter
}

// openDB opens the database and applies pending migrations.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %q: %w", cfg.DataDir, err)
	}
	db, err := storage.NewDB(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := storage.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// newApp wires the services. hub may be nil for commands without realtime clients.
func newApp(hub *websocket.Hub) (*app, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		db.Close()
		return nil, err
	}

	// Interfaces stay nil without a hub so services skip broadcasting.
	var (
		bookingEvents  booking.Broadcaster
		calendarEvents calendar.Broadcaster
	)
	if hub != nil {
		broadcaster := websocket.NewEventBroadcaster(hub)
		bookingEvents = broadcaster
		calendarEvents = broadcaster
	}

	store := storage.NewRecordStore(db)
	engine := availability.NewEngine(store,
		availability.WithLocation(loc),
		availability.WithRetrier(availability.NewRetrier(cfg.MaxRetries, cfg.RetryBase)),
	)
	blocks := calendar.NewBlockService(engine, store, calendarEvents)

	a := &app{
		db:     db,
		store:  store,
		engine: engine,
		bookings: booking.NewService(engine, store.Bookings, store.Camps,
			notify.NewLogNotifier(nil),
			notify.NewLogPaymentProvider(cfg.PaymentURL, nil),
			bookingEvents,
		),
		blocks:   blocks,
		importer: calendar.NewFeedImporter(store.Camps, store, blocks, engine, calendarEvents),
	}

	log.Printf("Availability engine using time zone %s", loc)
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
