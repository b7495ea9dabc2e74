package comments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/database"
)

var (
	// ErrNotFound is returned when the comment does not exist.
	ErrNotFound = errors.New("comment not found")

	// ErrNewsNotFound is returned when the parent news item does not exist.
	ErrNewsNotFound = errors.New("news not found")
)

// Repository handles comment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a comments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const commentColumns = `cm.id, cm.content, cm.news_id, cm.user_id, cm.created_at, cm.updated_at,
	u.id, u.email, COALESCE(u.first_name,''), COALESCE(u.last_name,'')`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var cm models.Comment
	var user models.UserSummary
	err := row.Scan(&cm.ID, &cm.Content, &cm.NewsID, &cm.UserID, &cm.CreatedAt, &cm.UpdatedAt,
		&user.ID, &user.Email, &user.FirstName, &user.LastName)
	if err != nil {
		return nil, err
	}
	cm.User = &user
	return &cm, nil
}

// ListByNews returns all comments on a news item, newest first.
func (r *Repository) ListByNews(ctx context.Context, newsID uuid.UUID) ([]models.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments cm JOIN users u ON u.id = cm.user_id
		WHERE cm.news_id = $1 ORDER BY cm.created_at DESC`,
		newsID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Comment
	for rows.Next() {
		cm, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *cm)
	}
	return list, rows.Err()
}

// Create inserts a comment on a news item. A missing parent surfaces as
// ErrNewsNotFound via the foreign key.
func (r *Repository) Create(ctx context.Context, newsID, userID uuid.UUID, content string) (*models.Comment, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (content, news_id, user_id) VALUES ($1, $2, $3) RETURNING id`,
		content, newsID, userID,
	).Scan(&id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a comment with its author summary.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	cm, err := scanComment(r.pool.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments cm JOIN users u ON u.id = cm.user_id WHERE cm.id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cm, nil
}

// Update replaces the comment content.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE comments SET content = $2, updated_at = NOW() WHERE id = $1`,
		id, content,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a comment.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
