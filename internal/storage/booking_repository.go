package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/camp-rental/backend/internal/storage/models"
)

const bookingColumns = `id, camp_id, guest_id, check_in_date, check_out_date, status,
	       guests, total_price, payment_method, created_at, updated_at`

// BookingRepository provides data access for bookings.
type BookingRepository struct {
	BaseRepository
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new booking. An empty ID is filled in.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	return r.create(ctx, r.DB(), b)
}

func (r *BookingRepository) create(ctx context.Context, q Queryable, b *models.Booking) error {
	if b.ID == "" {
		b.ID = GenerateID()
	}
	b.CreatedAt = r.Now()
	b.UpdatedAt = b.CreatedAt

	_, err := q.ExecContext(ctx, `
		INSERT INTO bookings (
			id, camp_id, guest_id, check_in_date, check_out_date, status,
			guests, total_price, payment_method, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.CampID, b.GuestID, b.CheckInDate, b.CheckOutDate, b.Status,
		b.Guests, b.TotalPrice, b.PaymentMethod, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", classify(err))
	}

	return nil
}

// Import inserts many bookings in one transaction, skipping IDs that already exist.
// It returns the number of rows inserted.
func (r *BookingRepository) Import(ctx context.Context, bookings []*models.Booking) (int, error) {
	inserted := 0
	err := r.Transaction(func(tx *sql.Tx) error {
		for _, b := range bookings {
			if b.ID != "" {
				var exists int
				err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE id = ?", b.ID).Scan(&exists)
				if err != nil {
					return fmt.Errorf("checking booking %s: %w", b.ID, classify(err))
				}
				if exists > 0 {
					continue
				}
			}
			if err := r.create(ctx, tx, b); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetByID retrieves a booking by its ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b := &models.Booking{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings WHERE id = ?
	`, id).Scan(
		&b.ID, &b.CampID, &b.GuestID, &b.CheckInDate, &b.CheckOutDate, &b.Status,
		&b.Guests, &b.TotalPrice, &b.PaymentMethod, &b.CreatedAt, &b.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying booking: %w", classify(err))
	}

	return b, nil
}

// ListByCamp retrieves every booking for a camp regardless of status.
func (r *BookingRepository) ListByCamp(ctx context.Context, campID string) ([]models.Booking, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE camp_id = ?
		ORDER BY check_in_date
	`, campID)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", classify(err))
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListActive retrieves all non-cancelled bookings across camps, ordered by camp and day.
func (r *BookingRepository) ListActive(ctx context.Context) ([]models.Booking, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status != 'cancelled'
		ORDER BY camp_id, check_in_date, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying active bookings: %w", classify(err))
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListConfirmedBefore retrieves confirmed bookings whose check-in day is before day.
func (r *BookingRepository) ListConfirmedBefore(ctx context.Context, day models.Date) ([]models.Booking, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = 'confirmed' AND check_in_date < ?
		ORDER BY check_in_date
	`, day)
	if err != nil {
		return nil, fmt.Errorf("querying past bookings: %w", classify(err))
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID, &b.CampID, &b.GuestID, &b.CheckInDate, &b.CheckOutDate, &b.Status,
			&b.Guests, &b.TotalPrice, &b.PaymentMethod, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking from one status to another. The update only
// applies if the stored status still equals from, so two concurrent transitions
// cannot both win.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?
	`, to, r.Now(), id, from)
	if err != nil {
		return fmt.Errorf("updating booking status: %w", classify(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("booking %s not in status %s: %w", id, from, models.ErrInvalidTransition)
	}

	return nil
}
