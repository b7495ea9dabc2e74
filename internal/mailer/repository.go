package mailer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lune-yoga/backend/internal/models"
)

// Repository persists email delivery attempts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LogSent records a successful delivery.
func (r *Repository) LogSent(ctx context.Context, bookingID uuid.UUID, recipient, subject string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO email_logs (booking_id, recipient_email, subject, status, sent_at)
		VALUES ($1, $2, $3, 'sent', NOW())`,
		bookingID, recipient, subject,
	)
	return err
}

// LogFailed records a failed delivery with its error message.
func (r *Repository) LogFailed(ctx context.Context, bookingID uuid.UUID, recipient, subject, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO email_logs (booking_id, recipient_email, subject, status, error_message)
		VALUES ($1, $2, $3, 'failed', $4)`,
		bookingID, recipient, subject, errMsg,
	)
	return err
}

// List returns a page of email logs, newest first, plus the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.EmailLog, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, booking_id, recipient_email, COALESCE(subject,''), status,
			COALESCE(error_message,''), sent_at, created_at
		FROM email_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.BookingID, &l.RecipientEmail, &l.Subject, &l.Status,
			&l.ErrorMessage, &l.SentAt, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM email_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
