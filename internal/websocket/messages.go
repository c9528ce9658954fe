package websocket

import (
	"encoding/json"
	"time"

	"github.com/camp-rental/backend/internal/storage/models"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeAvailabilityChanged    MessageType = "availability.changed"
	TypeDuplicateBooking       MessageType = "booking.duplicate_detected"
	TypeCalendarImportComplete MessageType = "calendar.import_completed"
	TypeCalendarImportError    MessageType = "calendar.import_error"
	TypeNotification           MessageType = "notification"

	// Client -> Server command types
	TypeSubscribe   MessageType = "subscribe"
	TypeUnsubscribe MessageType = "unsubscribe"
	TypePing        MessageType = "ping"

	// Server -> Client response types
	TypeSubscribeAck MessageType = "subscribe.ack"
	TypePong         MessageType = "pong"
	TypeError        MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ClientMessage is a command sent by a client.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload names the camps a client wants events for.
// An empty list means every camp.
type SubscribePayload struct {
	CampIDs []string `json:"camp_ids"`
}

// AvailabilityChangedPayload is the payload for availability.changed events.
type AvailabilityChangedPayload struct {
	CampID    string      `json:"camp_id"`
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
	Cause     string      `json:"cause"`
}

// DuplicateBookingPayload is the payload for booking.duplicate_detected events.
type DuplicateBookingPayload struct {
	CampID     string      `json:"camp_id"`
	Date       models.Date `json:"date"`
	BookingIDs []string    `json:"booking_ids"`
}

// CalendarImportPayload is the payload for calendar.import_completed events.
type CalendarImportPayload struct {
	CampID        string    `json:"camp_id"`
	Status        string    `json:"status"`
	EventsFound   int       `json:"events_found"`
	BlocksCreated int       `json:"blocks_created"`
	BlocksRemoved int       `json:"blocks_removed"`
	Skipped       int       `json:"skipped"`
	Conflicts     int       `json:"conflicts"`
	ImportedAt    time.Time `json:"imported_at"`
}

// CalendarImportErrorPayload is the payload for calendar.import_error events.
type CalendarImportErrorPayload struct {
	CampID  string `json:"camp_id"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
