package models

import (
	"time"
)

// CampStatus gates whether a camp is offered for booking.
type CampStatus string

// Camp status constants
const (
	CampStatusActive   CampStatus = "active"
	CampStatusPending  CampStatus = "pending"
	CampStatusInactive CampStatus = "inactive"
)

// Camp is a bookable campsite listing. Check-in and check-out times are display
// values only and never take part in date arithmetic.
type Camp struct {
	ID           string     `json:"id"`
	HostID       string     `json:"host_id"`
	Name         string     `json:"name"`
	Status       CampStatus `json:"status"`
	CheckInTime  string     `json:"check_in_time"`
	CheckOutTime string     `json:"check_out_time"`
	PricePerDay  float64    `json:"price_per_day"`
	ICalFeedURL  *string    `json:"ical_feed_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsBookable returns true if the camp accepts new bookings.
func (c *Camp) IsBookable() bool {
	return c.Status == CampStatusActive
}

// ValidCampStatus reports whether s names a known status.
func ValidCampStatus(s CampStatus) bool {
	switch s {
	case CampStatusActive, CampStatusPending, CampStatusInactive:
		return true
	}
	return false
}

// CalendarEvent represents a parsed event from an external iCal feed.
type CalendarEvent struct {
	UID     string    `json:"uid"`
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	AllDay  bool      `json:"all_day"`
}

// CalendarImportResult summarizes one feed import.
type CalendarImportResult struct {
	CampID        string    `json:"camp_id"`
	EventsFound   int       `json:"events_found"`
	BlocksCreated int       `json:"blocks_created"`
	BlocksRemoved int       `json:"blocks_removed"`
	Skipped       int       `json:"skipped"`
	Conflicts     int       `json:"conflicts"`
	Error         error     `json:"-"`
	ImportedAt    time.Time `json:"imported_at"`
}
