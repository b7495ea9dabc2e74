package classes

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lune-yoga/backend/internal/models"
)

// ErrNotFound is returned when a class does not exist.
var ErrNotFound = errors.New("class not found")

// Repository handles class persistence. The current_participants figure is
// always computed by counting booking rows, never stored.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a classes repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const classColumns = `c.id, c.title, COALESCE(c.description,''), c.type, c.color, c.date,
	c.start_time, c.end_time, c.instructor, c.max_participants, c.created_at, c.updated_at`

func scanClass(row pgx.Row, cls *models.Class) error {
	return row.Scan(&cls.ID, &cls.Title, &cls.Description, &cls.Type, &cls.Color, &cls.Date,
		&cls.StartTime, &cls.EndTime, &cls.Instructor, &cls.MaxParticipants, &cls.CreatedAt, &cls.UpdatedAt)
}

// Create inserts a new class.
func (r *Repository) Create(ctx context.Context, cls *models.Class) error {
	const q = `INSERT INTO classes (title, description, type, color, date, start_time, end_time, instructor, max_participants)
		VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, cls.Title, cls.Description, cls.Type, cls.Color, cls.Date,
		cls.StartTime, cls.EndTime, cls.Instructor, cls.MaxParticipants).
		Scan(&cls.ID, &cls.CreatedAt, &cls.UpdatedAt)
}

// GetByID returns a class with its derived participant count.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	q := `SELECT ` + classColumns + `, COUNT(b.id)
		FROM classes c
		LEFT JOIN bookings b ON b.class_id = c.id
		WHERE c.id = $1
		GROUP BY c.id`
	var cls models.Class
	err := r.pool.QueryRow(ctx, q, id).Scan(&cls.ID, &cls.Title, &cls.Description, &cls.Type, &cls.Color, &cls.Date,
		&cls.StartTime, &cls.EndTime, &cls.Instructor, &cls.MaxParticipants, &cls.CreatedAt, &cls.UpdatedAt,
		&cls.CurrentParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cls, nil
}

// List returns classes with derived participant counts, optionally filtered by
// date range and type, ordered by date then start time.
func (r *Repository) List(ctx context.Context, startDate, endDate *time.Time, classType string) ([]models.Class, error) {
	q := `SELECT ` + classColumns + `, COUNT(b.id)
		FROM classes c
		LEFT JOIN bookings b ON b.class_id = c.id`
	var conds []string
	var args []interface{}
	if startDate != nil {
		args = append(args, *startDate)
		conds = append(conds, "c.date >= $"+strconv.Itoa(len(args)))
	}
	if endDate != nil {
		args = append(args, *endDate)
		conds = append(conds, "c.date <= $"+strconv.Itoa(len(args)))
	}
	if classType != "" {
		args = append(args, classType)
		conds = append(conds, "c.type = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " GROUP BY c.id ORDER BY c.date ASC, c.start_time ASC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Class
	for rows.Next() {
		var cls models.Class
		if err := rows.Scan(&cls.ID, &cls.Title, &cls.Description, &cls.Type, &cls.Color, &cls.Date,
			&cls.StartTime, &cls.EndTime, &cls.Instructor, &cls.MaxParticipants, &cls.CreatedAt, &cls.UpdatedAt,
			&cls.CurrentParticipants); err != nil {
			return nil, err
		}
		list = append(list, cls)
	}
	return list, rows.Err()
}

// Update updates class fields. Nil pointers leave the stored value unchanged.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description, classType, color, instructor *string, date, startTime, endTime *time.Time, maxParticipants *int) (*models.Class, error) {
	const q = `UPDATE classes SET
		title = COALESCE($2, title),
		description = COALESCE($3, description),
		type = COALESCE($4, type),
		color = COALESCE($5, color),
		instructor = COALESCE($6, instructor),
		date = COALESCE($7, date),
		start_time = COALESCE($8, start_time),
		end_time = COALESCE($9, end_time),
		max_participants = COALESCE($10, max_participants),
		updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, COALESCE(description,''), type, color, date, start_time, end_time, instructor, max_participants, created_at, updated_at`
	var cls models.Class
	err := scanClass(r.pool.QueryRow(ctx, q, id, title, description, classType, color, instructor, date, startTime, endTime, maxParticipants), &cls)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cls, nil
}

// Delete removes a class by ID (bookings cascade).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Participants returns the users currently booked into a class.
func (r *Repository) Participants(ctx context.Context, classID uuid.UUID) ([]models.UserSummary, error) {
	const q = `SELECT u.id, u.email, COALESCE(u.first_name,''), COALESCE(u.last_name,'')
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.class_id = $1
		ORDER BY b.booked_at ASC`
	rows, err := r.pool.Query(ctx, q, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
