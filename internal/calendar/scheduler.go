package calendar

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/camp-rental/backend/internal/booking"
)

// Job names.
const (
	JobCompletePast        = "complete_past_bookings"
	JobReconcileDuplicates = "reconcile_duplicates"
	JobImportFeeds         = "import_feeds"
)

// BookingMaintainer is the booking housekeeping the scheduler drives.
type BookingMaintainer interface {
	CompletePast(ctx context.Context) (int, error)
	ReportDuplicates(ctx context.Context) ([]booking.DuplicateGroup, error)
}

// Scheduler runs the periodic booking and calendar jobs.
type Scheduler struct {
	cron     *cron.Cron
	bookings BookingMaintainer
	importer *FeedImporter

	jobs   map[string]cron.EntryID
	jobsMu sync.RWMutex

	importInterval time.Duration
}

// NewScheduler creates a scheduler evaluating cron specs in loc.
// importer may be nil to disable feed imports.
func NewScheduler(bookings BookingMaintainer, importer *FeedImporter, loc *time.Location, importInterval time.Duration) *Scheduler {
	if importInterval < time.Minute {
		importInterval = 30 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:           cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		bookings:       bookings,
		importer:       importer,
		jobs:           make(map[string]cron.EntryID),
		importInterval: importInterval,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Println("Starting scheduler...")

	// Top of every hour
	if err := s.add(JobCompletePast, "0 0 * * * *", func() { s.completePast(ctx) }); err != nil {
		return err
	}
	if err := s.add(JobReconcileDuplicates, "@every 15m", func() { s.reconcileDuplicates(ctx) }); err != nil {
		return err
	}
	if s.importer != nil {
		if err := s.add(JobImportFeeds, "@every "+s.importInterval.String(), func() { s.importFeeds(ctx) }); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Printf("Scheduler started with %d jobs", len(s.jobs))

	return nil
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) add(name, spec string, fn func()) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	entryID, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		log.Printf("Failed to schedule %s: %v", name, err)
		return err
	}
	s.jobs[name] = entryID
	log.Printf("Scheduled %s (%s)", name, spec)
	return nil
}

// TriggerImport runs a feed import for one camp in the background.
func (s *Scheduler) TriggerImport(campID string) {
	if s.importer == nil {
		return
	}
	go func() {
		if _, err := s.importer.Import(context.Background(), campID); err != nil {
			log.Printf("Calendar import failed for camp %s: %v", campID, err)
		}
	}()
}

func (s *Scheduler) completePast(ctx context.Context) {
	n, err := s.bookings.CompletePast(ctx)
	if err != nil {
		log.Printf("Failed to complete past bookings: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Marked %d past bookings completed", n)
	}
}

func (s *Scheduler) reconcileDuplicates(ctx context.Context) {
	groups, err := s.bookings.ReportDuplicates(ctx)
	if err != nil {
		log.Printf("Failed to reconcile duplicate bookings: %v", err)
		return
	}
	if len(groups) > 0 {
		log.Printf("Found %d double-booked camp days, manual review needed", len(groups))
	}
}

func (s *Scheduler) importFeeds(ctx context.Context) {
	results, err := s.importer.ImportAll(ctx)
	if err != nil {
		log.Printf("Failed to import calendar feeds: %v", err)
		return
	}
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		log.Printf("Calendar import completed for camp %s: %d events, %d blocks created, %d removed, %d skipped, %d conflicts",
			r.CampID, r.EventsFound, r.BlocksCreated, r.BlocksRemoved, r.Skipped, r.Conflicts)
	}
}

// NextRuns returns the next scheduled run of every job.
func (s *Scheduler) NextRuns() map[string]time.Time {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	runs := make(map[string]time.Time, len(s.jobs))
	for name, id := range s.jobs {
		if next := s.cron.Entry(id).Next; !next.IsZero() {
			runs[name] = next
		}
	}
	return runs
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}
