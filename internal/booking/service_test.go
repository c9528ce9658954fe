package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/storage/models"
)

var today = models.MustParseDate("2026-07-01")

type harness struct {
	store       *memStore
	repo        bookingRepo
	notifier    *fakeNotifier
	payments    *fakePayments
	broadcaster *fakeBroadcaster
	svc         *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	store.addCamp("camp-1", models.CampStatusActive)
	store.addCamp("camp-draft", models.CampStatusPending)

	engine := availability.NewEngine(store,
		availability.WithLocation(time.UTC),
		availability.WithClock(func() time.Time { return today.Time(time.UTC).Add(9 * time.Hour) }),
		availability.WithRetrier(availability.NewRetrier(2, time.Millisecond)),
	)

	h := &harness{
		store:       store,
		repo:        bookingRepo{store},
		notifier:    &fakeNotifier{sent: make(chan notice, 4)},
		payments:    &fakePayments{sessions: make(chan string, 4)},
		broadcaster: &fakeBroadcaster{},
	}
	h.svc = NewService(engine, h.repo, store, h.notifier, h.payments, h.broadcaster)
	return h
}

func input(campID string, day models.Date, method string) CreateInput {
	return CreateInput{
		CampID:        campID,
		GuestID:       "guest-1",
		CheckIn:       day.Time(time.UTC).Add(15 * time.Hour),
		CheckOut:      day.AddDays(1).Time(time.UTC).Add(11 * time.Hour),
		Guests:        2,
		PaymentMethod: method,
	}
}

func waitNotice(t *testing.T, ch <-chan notice) notice {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return notice{}
	}
}

func TestCreate_CardBookingIsPending(t *testing.T) {
	h := newHarness(t)
	day := today.AddDays(5)

	b, err := h.svc.Create(context.Background(), input("camp-1", day, ""))
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, models.PaymentMethodCard, b.PaymentMethod)
	assert.True(t, b.CheckInDate.Equal(day))
	assert.True(t, b.CheckOutDate.Equal(day.AddDays(1)))
	assert.Equal(t, 45.0, b.TotalPrice)

	assert.Equal(t, notice{"created", b.ID}, waitNotice(t, h.notifier.sent))
	select {
	case id := <-h.payments.sessions:
		assert.Equal(t, b.ID, id)
	case <-time.After(time.Second):
		t.Fatal("payment session was not requested")
	}

	require.Len(t, h.broadcaster.changes, 1)
	assert.Equal(t, change{"camp-1", day, day, CauseBookingCreated}, h.broadcaster.changes[0])
}

func TestCreate_CashBookingIsConfirmedWithoutPayment(t *testing.T) {
	h := newHarness(t)

	b, err := h.svc.Create(context.Background(), input("camp-1", today.AddDays(3), models.PaymentMethodCash))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)

	waitNotice(t, h.notifier.sent)
	select {
	case <-h.payments.sessions:
		t.Fatal("cash booking must not open a payment session")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreate_RejectsInvalidDates(t *testing.T) {
	h := newHarness(t)
	in := input("camp-1", today.AddDays(-2), "")
	in.CheckOut = in.CheckIn

	_, err := h.svc.Create(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, availability.MsgCheckInPast)
	assert.Contains(t, verr.Errors, availability.MsgCheckOutNotAfter)
	assert.Empty(t, h.store.bookings)
}

func TestCreate_RejectsInactiveCamp(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Create(context.Background(), input("camp-draft", today.AddDays(2), ""))
	assert.ErrorIs(t, err, ErrCampInactive)
}

func TestCreate_RejectsTakenDay(t *testing.T) {
	h := newHarness(t)
	day := today.AddDays(4)
	h.repo.seed("existing", "camp-1", day, models.BookingStatusConfirmed)

	_, err := h.svc.Create(context.Background(), input("camp-1", day, ""))

	var uerr *UnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, availability.ReasonBooked, uerr.Result.Reason)
	assert.Equal(t, "existing", uerr.Result.ConflictingID)
	assert.Len(t, h.store.bookings, 1)
}

func TestCreate_CancelledBookingFreesDay(t *testing.T) {
	h := newHarness(t)
	day := today.AddDays(4)
	h.repo.seed("old", "camp-1", day, models.BookingStatusCancelled)

	_, err := h.svc.Create(context.Background(), input("camp-1", day, models.PaymentMethodCash))
	require.NoError(t, err)
}

func TestCreate_StoreFailureIsReturned(t *testing.T) {
	h := newHarness(t)
	h.store.listErr = availability.ErrPermissionDenied

	_, err := h.svc.Create(context.Background(), input("camp-1", today.AddDays(2), ""))
	assert.ErrorIs(t, err, availability.ErrPermissionDenied)
}

func TestCancel(t *testing.T) {
	h := newHarness(t)
	day := today.AddDays(6)
	h.repo.seed("b1", "camp-1", day, models.BookingStatusConfirmed)

	b, err := h.svc.Cancel(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, b.Status)
	assert.Equal(t, notice{"cancelled", "b1"}, waitNotice(t, h.notifier.sent))
	require.Len(t, h.broadcaster.changes, 1)
	assert.Equal(t, CauseBookingCancelled, h.broadcaster.changes[0].cause)

	_, err = h.svc.Cancel(context.Background(), "b1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestConfirm(t *testing.T) {
	h := newHarness(t)
	h.repo.seed("b1", "camp-1", today.AddDays(6), models.BookingStatusPending)
	h.repo.seed("b2", "camp-1", today.AddDays(7), models.BookingStatusCancelled)

	b, err := h.svc.Confirm(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)

	_, err = h.svc.Confirm(context.Background(), "b2")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = h.svc.Confirm(context.Background(), "missing")
	assert.True(t, errors.Is(err, errNotFound))
}

func TestCompletePast(t *testing.T) {
	h := newHarness(t)
	h.repo.seed("past", "camp-1", today.AddDays(-3), models.BookingStatusConfirmed)
	h.repo.seed("past-pending", "camp-1", today.AddDays(-3), models.BookingStatusPending)
	h.repo.seed("today", "camp-1", today, models.BookingStatusConfirmed)

	n, err := h.svc.CompletePast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	b, err := h.repo.GetByID(context.Background(), "past")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, b.Status)

	b, err = h.repo.GetByID(context.Background(), "today")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
}

func TestFindDuplicates(t *testing.T) {
	h := newHarness(t)
	day := today.AddDays(8)
	h.repo.seed("a", "camp-1", day, models.BookingStatusPending)
	h.repo.seed("b", "camp-1", day, models.BookingStatusConfirmed)
	h.repo.seed("c", "camp-1", day, models.BookingStatusCancelled)
	h.repo.seed("d", "camp-1", day.AddDays(1), models.BookingStatusConfirmed)
	h.repo.seed("e", "camp-2", day, models.BookingStatusConfirmed)

	groups, err := h.svc.ReportDuplicates(context.Background())
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "camp-1", groups[0].CampID)
	assert.True(t, groups[0].Date.Equal(day))
	assert.Equal(t, []string{"a", "b"}, groups[0].BookingIDs)
	assert.Equal(t, [][]string{{"a", "b"}}, h.broadcaster.duplicates)

	// Reporting never changes bookings.
	b, err := h.repo.GetByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, b.Status)
}

func TestCreate_ConcurrentWritersBothSucceedAndAreReported(t *testing.T) {
	h := newHarness(t)
	gated := newGatedRepo(h.repo, 2)
	h.svc.bookings = gated
	day := today.AddDays(5)

	type outcome struct {
		booking *models.Booking
		err     error
	}
	results := make(chan outcome, 2)
	for _, guest := range []string{"guest-1", "guest-2"} {
		in := input("camp-1", day, models.PaymentMethodCard)
		in.GuestID = guest
		go func() {
			b, err := h.svc.Create(context.Background(), in)
			results <- outcome{b, err}
		}()
	}

	var ids []string
	for range 2 {
		r := <-results
		require.NoError(t, r.err)
		ids = append(ids, r.booking.ID)
	}
	assert.NotEqual(t, ids[0], ids[1])

	groups, err := h.svc.ReportDuplicates(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "camp-1", groups[0].CampID)
	assert.Equal(t, day, groups[0].Date)
	assert.ElementsMatch(t, ids, groups[0].BookingIDs)
	assert.Len(t, h.broadcaster.duplicates, 1)

	// Reporting never cancels either side.
	for _, id := range ids {
		b, err := h.svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusPending, b.Status)
	}
}
