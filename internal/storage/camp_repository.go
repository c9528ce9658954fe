package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/camp-rental/backend/internal/storage/models"
)

const campColumns = `id, host_id, name, status, check_in_time, check_out_time,
	       price_per_day, ical_feed_url, created_at, updated_at`

// CampRepository provides read access to camps plus the few writes the
// availability service needs for seeding and status changes.
type CampRepository struct {
	BaseRepository
}

// NewCampRepository creates a new camp repository.
func NewCampRepository(db *DB) *CampRepository {
	return &CampRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new camp.
func (r *CampRepository) Create(ctx context.Context, c *models.Camp) error {
	if c.ID == "" {
		c.ID = GenerateID()
	}
	if c.Status == "" {
		c.Status = models.CampStatusPending
	}
	c.CreatedAt = r.Now()
	c.UpdatedAt = c.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO camps (
			id, host_id, name, status, check_in_time, check_out_time,
			price_per_day, ical_feed_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.HostID, c.Name, c.Status, c.CheckInTime, c.CheckOutTime,
		c.PricePerDay, c.ICalFeedURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting camp: %w", classify(err))
	}

	return nil
}

// GetByID retrieves a camp by its ID.
func (r *CampRepository) GetByID(ctx context.Context, id string) (*models.Camp, error) {
	c := &models.Camp{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT `+campColumns+`
		FROM camps WHERE id = ?
	`, id).Scan(
		&c.ID, &c.HostID, &c.Name, &c.Status, &c.CheckInTime, &c.CheckOutTime,
		&c.PricePerDay, &c.ICalFeedURL, &c.CreatedAt, &c.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying camp: %w", classify(err))
	}

	return c, nil
}

// List retrieves camps, optionally filtered by status.
func (r *CampRepository) List(ctx context.Context, status models.CampStatus) ([]models.Camp, error) {
	query := `SELECT ` + campColumns + ` FROM camps WHERE 1=1`
	var args []any
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY name"

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying camps: %w", classify(err))
	}
	defer rows.Close()

	return r.scanCamps(rows)
}

// ListWithFeeds retrieves active camps that have an external calendar feed.
func (r *CampRepository) ListWithFeeds(ctx context.Context) ([]models.Camp, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+campColumns+`
		FROM camps
		WHERE status = 'active' AND ical_feed_url IS NOT NULL AND ical_feed_url != ''
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying camps with feeds: %w", classify(err))
	}
	defer rows.Close()

	return r.scanCamps(rows)
}

func (r *CampRepository) scanCamps(rows *sql.Rows) ([]models.Camp, error) {
	var camps []models.Camp
	for rows.Next() {
		var c models.Camp
		if err := rows.Scan(
			&c.ID, &c.HostID, &c.Name, &c.Status, &c.CheckInTime, &c.CheckOutTime,
			&c.PricePerDay, &c.ICalFeedURL, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning camp: %w", err)
		}
		camps = append(camps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return camps, nil
}

// UpdateStatus changes a camp's status.
func (r *CampRepository) UpdateStatus(ctx context.Context, id string, status models.CampStatus) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE camps SET status = ?, updated_at = ? WHERE id = ?
	`, status, r.Now(), id)
	if err != nil {
		return fmt.Errorf("updating camp status: %w", classify(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("camp %s: %w", id, ErrNotFound)
	}

	return nil
}
