package websocket

import (
	"log"

	"github.com/camp-rental/backend/internal/storage/models"
)

// EventBroadcaster turns domain events into WebSocket messages.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastAvailabilityChanged tells calendars showing campID to refresh the given days.
func (b *EventBroadcaster) BroadcastAvailabilityChanged(campID string, start, end models.Date, cause string) {
	msg := NewMessage(TypeAvailabilityChanged, AvailabilityChangedPayload{
		CampID:    campID,
		StartDate: start,
		EndDate:   end,
		Cause:     cause,
	})
	b.broadcast(campID, msg)
}

// BroadcastDuplicateBookings reports a camp day held by more than one active booking.
func (b *EventBroadcaster) BroadcastDuplicateBookings(campID string, date models.Date, bookingIDs []string) {
	msg := NewMessage(TypeDuplicateBooking, DuplicateBookingPayload{
		CampID:     campID,
		Date:       date,
		BookingIDs: bookingIDs,
	})
	b.broadcast(campID, msg)
}

// BroadcastCalendarImportCompleted sends the outcome of an iCal feed import.
func (b *EventBroadcaster) BroadcastCalendarImportCompleted(result models.CalendarImportResult) {
	payload := CalendarImportPayload{
		CampID:        result.CampID,
		Status:        "success",
		EventsFound:   result.EventsFound,
		BlocksCreated: result.BlocksCreated,
		BlocksRemoved: result.BlocksRemoved,
		Skipped:       result.Skipped,
		Conflicts:     result.Conflicts,
		ImportedAt:    result.ImportedAt,
	}
	if result.Error != nil {
		payload.Status = "error"
	}

	b.broadcast(result.CampID, NewMessage(TypeCalendarImportComplete, payload))
}

// BroadcastCalendarImportError sends a calendar import error event.
func (b *EventBroadcaster) BroadcastCalendarImportError(campID string, err error) {
	msg := NewMessage(TypeCalendarImportError, CalendarImportErrorPayload{
		CampID:  campID,
		Error:   "import_error",
		Message: err.Error(),
	})
	b.broadcast(campID, msg)
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	msg := NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	})
	b.broadcast("", msg)
}

func (b *EventBroadcaster) broadcast(campID string, msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	if campID == "" {
		b.hub.Broadcast(data)
		return
	}
	b.hub.Publish(campID, data)
}
