package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/database"
)

// Repository handles booking persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a bookings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const classColumns = `c.id, c.title, COALESCE(c.description,''), c.type, c.color, c.date,
	c.start_time, c.end_time, c.instructor, c.max_participants, c.created_at, c.updated_at`

// Book creates a booking for (userID, classID) if the class has a free seat
// and the user has not booked it yet.
//
// The capacity check and the insert run in one transaction holding a row lock
// on the class (SELECT ... FOR UPDATE), so a concurrent booking for the same
// class cannot interleave between the count and the insert. The unique
// (user_id, class_id) constraint remains as a backstop for the duplicate
// check; its violation also maps to ErrAlreadyBooked.
func (r *Repository) Book(ctx context.Context, userID, classID uuid.UUID) (*models.Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var maxParticipants int
	err = tx.QueryRow(ctx,
		`SELECT max_participants FROM classes WHERE id = $1 FOR UPDATE`,
		classID,
	).Scan(&maxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("lock class row: %w", err)
	}

	var taken int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE class_id = $1`,
		classID,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if taken >= maxParticipants {
		return nil, ErrClassFull
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE user_id = $1 AND class_id = $2)`,
		userID, classID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check existing booking: %w", err)
	}
	if exists {
		return nil, ErrAlreadyBooked
	}

	b := &models.Booking{UserID: userID, ClassID: classID}
	err = tx.QueryRow(ctx,
		`INSERT INTO bookings (user_id, class_id) VALUES ($1, $2) RETURNING id, booked_at`,
		userID, classID,
	).Scan(&b.ID, &b.BookedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "bookings_user_class_key") {
			return nil, ErrAlreadyBooked
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	var cls models.Class
	err = tx.QueryRow(ctx,
		`SELECT `+classColumns+`, (SELECT COUNT(*) FROM bookings WHERE class_id = c.id)
		FROM classes c WHERE c.id = $1`,
		classID,
	).Scan(&cls.ID, &cls.Title, &cls.Description, &cls.Type, &cls.Color, &cls.Date,
		&cls.StartTime, &cls.EndTime, &cls.Instructor, &cls.MaxParticipants,
		&cls.CreatedAt, &cls.UpdatedAt, &cls.CurrentParticipants)
	if err != nil {
		return nil, fmt.Errorf("load class: %w", err)
	}
	b.Class = &cls

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return b, nil
}

// GetByID returns a booking by ID without its relations.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, class_id, booked_at FROM bookings WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.UserID, &b.ClassID, &b.BookedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Delete removes a booking by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListByUser returns all bookings owned by the user with their classes,
// most recently booked first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	q := `SELECT b.id, b.user_id, b.class_id, b.booked_at, ` + classColumns + `,
		(SELECT COUNT(*) FROM bookings WHERE class_id = c.id)
		FROM bookings b
		JOIN classes c ON c.id = b.class_id
		WHERE b.user_id = $1
		ORDER BY b.booked_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Booking
	for rows.Next() {
		var b models.Booking
		var cls models.Class
		if err := rows.Scan(&b.ID, &b.UserID, &b.ClassID, &b.BookedAt,
			&cls.ID, &cls.Title, &cls.Description, &cls.Type, &cls.Color, &cls.Date,
			&cls.StartTime, &cls.EndTime, &cls.Instructor, &cls.MaxParticipants,
			&cls.CreatedAt, &cls.UpdatedAt, &cls.CurrentParticipants); err != nil {
			return nil, err
		}
		b.Class = &cls
		list = append(list, b)
	}
	return list, rows.Err()
}

// ListAll returns a page of all bookings with user and class summaries,
// most recently booked first, plus the total count.
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]models.Booking, int, error) {
	q := `SELECT b.id, b.user_id, b.class_id, b.booked_at,
		u.id, u.email, COALESCE(u.first_name,''), COALESCE(u.last_name,''), ` + classColumns + `,
		(SELECT COUNT(*) FROM bookings WHERE class_id = c.id)
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN classes c ON c.id = b.class_id
		ORDER BY b.booked_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Booking
	for rows.Next() {
		var b models.Booking
		var u models.UserSummary
		var cls models.Class
		if err := rows.Scan(&b.ID, &b.UserID, &b.ClassID, &b.BookedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&cls.ID, &cls.Title, &cls.Description, &cls.Type, &cls.Color, &cls.Date,
			&cls.StartTime, &cls.EndTime, &cls.Instructor, &cls.MaxParticipants,
			&cls.CreatedAt, &cls.UpdatedAt, &cls.CurrentParticipants); err != nil {
			return nil, 0, err
		}
		b.User = &u
		b.Class = &cls
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
