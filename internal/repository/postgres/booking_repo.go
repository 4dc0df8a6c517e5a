package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

// bookings.event_id carries no foreign key: deleting an event neither
// cascades to nor is blocked by its bookings.
const createBookingsTable = `
	CREATE TABLE IF NOT EXISTS bookings (
		id         UUID PRIMARY KEY,
		event_id   UUID NOT NULL,
		email      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS bookings_event_id_idx ON bookings (event_id);
	CREATE INDEX IF NOT EXISTS bookings_email_idx ON bookings (email);
`

type bookingRepository struct {
	db DBProvider
}

func NewBookingRepository(db DBProvider) domain.BookingRepository {
	return &bookingRepository{
		db: db,
	}
}

func (r *bookingRepository) EnsureSchema(ctx context.Context) error {
	db, err := r.db.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, createBookingsTable); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}
	return nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	db, err := r.db.DB(ctx)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	query := `
		INSERT INTO bookings (id, event_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := db.ExecContext(ctx, query, id, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt); err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	if _, err := uuid.Parse(b.ID); err != nil {
		return domain.ErrNotFound
	}
	db, err := r.db.DB(ctx)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET event_id = $2, email = $3, updated_at = $4 WHERE id = $1`,
		b.ID, b.EventID, b.Email, b.UpdatedAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	db, err := r.db.DB(ctx)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	db, err := r.db.DB(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT id, event_id, email, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	b := &domain.Booking{}
	err = db.QueryRowContext(ctx, query, id).
		Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return []*domain.Booking{}, nil
	}
	query := `
		SELECT id, event_id, email, created_at, updated_at
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, eventID)
}

func (r *bookingRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	query := `
		SELECT id, event_id, email, created_at, updated_at
		FROM bookings
		WHERE email = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, domain.NormalizeEmail(email))
}

func (r *bookingRepository) list(ctx context.Context, query string, arg string) ([]*domain.Booking, error) {
	db, err := r.db.DB(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b := &domain.Booking{}
		if err := rows.Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, nil
}

func (r *bookingRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return 0, nil
	}
	db, err := r.db.DB(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE event_id = $1`, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
