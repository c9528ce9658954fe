// Package booking implements the guest booking flow on top of the
// availability engine.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/storage/models"
)

// Cause values attached to availability change events.
const (
	CauseBookingCreated   = "booking_created"
	CauseBookingCancelled = "booking_cancelled"
)

// CreateInput is a guest's booking request.
type CreateInput struct {
	CampID        string
	GuestID       string
	CheckIn       time.Time
	CheckOut      time.Time
	Guests        int
	PaymentMethod string
}

// DuplicateGroup is a camp day held by more than one active booking.
type DuplicateGroup struct {
	CampID     string      `json:"camp_id"`
	Date       models.Date `json:"date"`
	BookingIDs []string    `json:"booking_ids"`
}

// Service creates and transitions bookings.
//
// Availability is re-checked immediately before each insert, but nothing
// prevents a concurrent request from passing the same check. Duplicates that
// slip through are surfaced by FindDuplicates for manual remediation.
type Service struct {
	engine      *availability.Engine
	bookings    BookingRepo
	camps       CampRepo
	notifier    Notifier
	payments    PaymentProvider
	broadcaster Broadcaster
}

// NewService creates a booking service. notifier, payments and broadcaster may be nil.
func NewService(
	engine *availability.Engine,
	bookings BookingRepo,
	camps CampRepo,
	notifier Notifier,
	payments PaymentProvider,
	broadcaster Broadcaster,
) *Service {
	return &Service{
		engine:      engine,
		bookings:    bookings,
		camps:       camps,
		notifier:    notifier,
		payments:    payments,
		broadcaster: broadcaster,
	}
}

// Create validates, re-verifies availability and inserts a booking.
// Cash bookings are confirmed immediately; others wait for payment.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	validation := s.engine.ValidateBookingDates(in.CheckIn, in.CheckOut)
	if !validation.Valid {
		return nil, &ValidationError{Errors: validation.Errors}
	}

	camp, err := s.camps.GetByID(ctx, in.CampID)
	if err != nil {
		return nil, fmt.Errorf("loading camp: %w", err)
	}
	if !camp.IsBookable() {
		return nil, ErrCampInactive
	}

	loc := s.engine.Location()
	day := models.DateIn(in.CheckIn, loc)

	// Last check before the write. Kept as close to the insert as possible.
	check, err := s.engine.CheckAvailabilityWithRetry(ctx, in.CampID, day, 0)
	if err != nil {
		return nil, fmt.Errorf("checking availability: %w", err)
	}
	if !check.Available {
		return nil, &UnavailableError{Result: check}
	}

	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCard
	}
	status := models.BookingStatusPending
	if method == models.PaymentMethodCash {
		status = models.BookingStatusConfirmed
	}

	b := &models.Booking{
		CampID:        in.CampID,
		GuestID:       in.GuestID,
		CheckInDate:   day,
		CheckOutDate:  models.DateIn(in.CheckOut, loc),
		Status:        status,
		Guests:        in.Guests,
		TotalPrice:    camp.PricePerDay,
		PaymentMethod: method,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	log.Printf("Booking %s created for camp %s on %s (%s)", b.ID, b.CampID, b.CheckInDate, b.Status)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAvailabilityChanged(b.CampID, day, day, CauseBookingCreated)
	}
	s.afterCreate(ctx, camp, b)

	return b, nil
}

// afterCreate triggers email and payment side effects without waiting for them.
func (s *Service) afterCreate(ctx context.Context, camp *models.Camp, b *models.Booking) {
	bg := context.WithoutCancel(ctx)
	snapshot := *b

	if s.notifier != nil {
		go s.notifier.NotifyBookingCreated(bg, camp, &snapshot)
	}
	if s.payments != nil && snapshot.Status == models.BookingStatusPending {
		go func() {
			url, err := s.payments.CreateSession(bg, camp, &snapshot)
			if err != nil {
				log.Printf("Failed to create payment session for booking %s: %v", snapshot.ID, err)
				return
			}
			log.Printf("Payment session for booking %s: %s", snapshot.ID, url)
		}()
	}
}

// Get returns a booking by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// Cancel releases a booking's day. Cancellation cannot be undone.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.transition(ctx, id, models.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAvailabilityChanged(b.CampID, b.CheckInDate, b.CheckInDate, CauseBookingCancelled)
	}
	if s.notifier != nil {
		camp, err := s.camps.GetByID(ctx, b.CampID)
		if err != nil {
			log.Printf("Failed to load camp %s for cancellation notice: %v", b.CampID, err)
		} else {
			go s.notifier.NotifyBookingCancelled(context.WithoutCancel(ctx), camp, b)
		}
	}

	return b, nil
}

// Confirm marks a pending booking as paid.
func (s *Service) Confirm(ctx context.Context, id string) (*models.Booking, error) {
	return s.transition(ctx, id, models.BookingStatusConfirmed)
}

func (s *Service) transition(ctx context.Context, id string, next models.BookingStatus) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading booking: %w", err)
	}
	if !b.CanTransition(next) {
		return nil, fmt.Errorf("booking %s is %s: %w", id, b.Status, models.ErrInvalidTransition)
	}

	if err := s.bookings.UpdateStatus(ctx, id, b.Status, next); err != nil {
		return nil, err
	}

	log.Printf("Booking %s moved from %s to %s", id, b.Status, next)
	b.Status = next
	return b, nil
}

// CompletePast marks confirmed bookings whose day has passed as completed.
// Completion has no effect on availability.
func (s *Service) CompletePast(ctx context.Context) (int, error) {
	past, err := s.bookings.ListConfirmedBefore(ctx, s.engine.Today())
	if err != nil {
		return 0, fmt.Errorf("listing past bookings: %w", err)
	}

	completed := 0
	for _, b := range past {
		err := s.bookings.UpdateStatus(ctx, b.ID, models.BookingStatusConfirmed, models.BookingStatusCompleted)
		if errors.Is(err, models.ErrInvalidTransition) {
			// Cancelled between the read and the update.
			continue
		}
		if err != nil {
			log.Printf("Failed to complete booking %s: %v", b.ID, err)
			continue
		}
		completed++
	}

	return completed, nil
}

// FindDuplicates returns every camp day held by more than one active booking.
// It only reports; remediation is a host or admin decision.
func (s *Service) FindDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	active, err := s.bookings.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active bookings: %w", err)
	}

	type key struct {
		campID string
		date   models.Date
	}
	groups := make(map[key][]string)
	var order []key
	for _, b := range active {
		k := key{b.CampID, b.CheckInDate}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], b.ID)
	}

	var duplicates []DuplicateGroup
	for _, k := range order {
		if ids := groups[k]; len(ids) > 1 {
			duplicates = append(duplicates, DuplicateGroup{CampID: k.campID, Date: k.date, BookingIDs: ids})
		}
	}

	return duplicates, nil
}

// ReportDuplicates finds duplicates, logs them and broadcasts one event per group.
func (s *Service) ReportDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	duplicates, err := s.FindDuplicates(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range duplicates {
		log.Printf("Duplicate bookings for camp %s on %s: %v", d.CampID, d.Date, d.BookingIDs)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastDuplicateBookings(d.CampID, d.Date, d.BookingIDs)
		}
	}

	return duplicates, nil
}
