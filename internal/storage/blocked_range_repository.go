package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/camp-rental/backend/internal/storage/models"
)

const blockColumns = `id, camp_id, host_id, start_date, end_date, reason, category,
	       notes, created_by, created_at`

// BlockedRangeRepository provides data access for host-blocked date ranges.
type BlockedRangeRepository struct {
	BaseRepository
}

// NewBlockedRangeRepository creates a new blocked range repository.
func NewBlockedRangeRepository(db *DB) *BlockedRangeRepository {
	return &BlockedRangeRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create validates and inserts a blocked range, returning its ID.
// Booking conflicts are not checked here; callers run conflict detection first.
func (r *BlockedRangeRepository) Create(ctx context.Context, br *models.BlockedDateRange) (string, error) {
	if err := br.Validate(); err != nil {
		return "", err
	}

	if br.ID == "" {
		br.ID = GenerateID()
	}
	br.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO blocked_date_ranges (
			id, camp_id, host_id, start_date, end_date, reason, category,
			notes, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		br.ID, br.CampID, br.HostID, br.StartDate, br.EndDate, br.Reason,
		br.Category, br.Notes, br.CreatedBy, br.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting blocked range: %w", classify(err))
	}

	return br.ID, nil
}

// GetByID retrieves a blocked range by its ID.
func (r *BlockedRangeRepository) GetByID(ctx context.Context, id string) (*models.BlockedDateRange, error) {
	br := &models.BlockedDateRange{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT `+blockColumns+`
		FROM blocked_date_ranges WHERE id = ?
	`, id).Scan(
		&br.ID, &br.CampID, &br.HostID, &br.StartDate, &br.EndDate, &br.Reason,
		&br.Category, &br.Notes, &br.CreatedBy, &br.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying blocked range: %w", classify(err))
	}

	return br, nil
}

// ListByCamp retrieves every blocked range for a camp.
func (r *BlockedRangeRepository) ListByCamp(ctx context.Context, campID string) ([]models.BlockedDateRange, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+blockColumns+`
		FROM blocked_date_ranges
		WHERE camp_id = ?
		ORDER BY start_date
	`, campID)
	if err != nil {
		return nil, fmt.Errorf("querying blocked ranges: %w", classify(err))
	}
	defer rows.Close()

	var ranges []models.BlockedDateRange
	for rows.Next() {
		var br models.BlockedDateRange
		if err := rows.Scan(
			&br.ID, &br.CampID, &br.HostID, &br.StartDate, &br.EndDate, &br.Reason,
			&br.Category, &br.Notes, &br.CreatedBy, &br.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning blocked range: %w", err)
		}
		ranges = append(ranges, br)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return ranges, nil
}

// Delete removes a blocked range by ID.
func (r *BlockedRangeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM blocked_date_ranges WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting blocked range: %w", classify(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("blocked range %s: %w", id, ErrNotFound)
	}

	return nil
}
