package models

import (
	"errors"
	"time"
)

// BlockCategory classifies why a host blocked dates.
type BlockCategory string

// Block category constants
const (
	BlockCategoryMaintenance BlockCategory = "maintenance"
	BlockCategoryPersonal    BlockCategory = "personal"
	BlockCategoryWeather     BlockCategory = "weather"
	BlockCategoryEvent       BlockCategory = "event"
	BlockCategorySeasonal    BlockCategory = "seasonal"
	BlockCategoryOther       BlockCategory = "other"
)

var (
	// ErrInvalidRange is returned when a range ends before it starts.
	ErrInvalidRange = errors.New("start date must not be after end date")
	// ErrInvalidCategory is returned for an unknown block category.
	ErrInvalidCategory = errors.New("invalid block category")
)

// BlockedDateRange is a host-declared inclusive range of unavailable days.
// Ranges are never updated in place; a change is a delete followed by a create.
type BlockedDateRange struct {
	ID        string        `json:"id"`
	CampID    string        `json:"camp_id"`
	HostID    string        `json:"host_id"`
	StartDate Date          `json:"start_date"`
	EndDate   Date          `json:"end_date"`
	Reason    string        `json:"reason"`
	Category  BlockCategory `json:"category"`
	Notes     *string       `json:"notes,omitempty"`
	CreatedBy string        `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
}

// Contains reports whether d falls inside the range, both ends inclusive.
func (r *BlockedDateRange) Contains(d Date) bool {
	return d.Between(r.StartDate, r.EndDate)
}

// Overlaps reports whether the range shares at least one day with [start, end].
// The block either starts inside the query, ends inside it, or contains it entirely.
func (r *BlockedDateRange) Overlaps(start, end Date) bool {
	startsInside := r.StartDate.Between(start, end)
	endsInside := r.EndDate.Between(start, end)
	containsQuery := !r.StartDate.After(start) && !r.EndDate.Before(end)
	return startsInside || endsInside || containsQuery
}

// Validate checks the range invariants enforced at creation time.
func (r *BlockedDateRange) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ErrInvalidRange
	}
	if r.StartDate.After(r.EndDate) {
		return ErrInvalidRange
	}
	if !ValidBlockCategory(r.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// ValidBlockCategory reports whether c names a known category.
func ValidBlockCategory(c BlockCategory) bool {
	switch c {
	case BlockCategoryMaintenance, BlockCategoryPersonal, BlockCategoryWeather,
		BlockCategoryEvent, BlockCategorySeasonal, BlockCategoryOther:
		return true
	}
	return false
}
