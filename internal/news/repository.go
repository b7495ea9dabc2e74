package news

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lune-yoga/backend/internal/models"
)

// ErrNotFound is returned when the news item does not exist.
var ErrNotFound = errors.New("news not found")

// Repository handles news persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a news repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const newsColumns = `n.id, n.title, n.content, COALESCE(n.cover_image,''), n.author_id,
	n.view_count, n.created_at, n.updated_at,
	u.id, u.email, COALESCE(u.first_name,''), COALESCE(u.last_name,''),
	(SELECT COUNT(*) FROM comments WHERE news_id = n.id)`

func scanNews(row pgx.Row) (*models.News, error) {
	var n models.News
	var author models.UserSummary
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.CoverImage, &n.AuthorID,
		&n.ViewCount, &n.CreatedAt, &n.UpdatedAt,
		&author.ID, &author.Email, &author.FirstName, &author.LastName,
		&n.CommentsCount)
	if err != nil {
		return nil, err
	}
	n.Author = &author
	return &n, nil
}

// Create inserts a news item and returns it with its author summary.
func (r *Repository) Create(ctx context.Context, authorID uuid.UUID, title, content, coverImage string) (*models.News, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO news (title, content, cover_image, author_id)
		VALUES ($1, $2, NULLIF($3,''), $4) RETURNING id`,
		title, content, coverImage, authorID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a news item with author and comment count.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.News, error) {
	n, err := scanNews(r.pool.QueryRow(ctx,
		`SELECT `+newsColumns+` FROM news n JOIN users u ON u.id = n.author_id WHERE n.id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// IncrementViews bumps the view counter. Missing rows are ignored; the read
// path already reported 404.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE news SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// List returns a page of news items, newest first, plus the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.News, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+newsColumns+` FROM news n JOIN users u ON u.id = n.author_id
		ORDER BY n.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM news`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update applies non-nil fields and returns the updated item.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, content, coverImage *string) (*models.News, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE news SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			cover_image = COALESCE($4, cover_image),
			updated_at = NOW()
		WHERE id = $1`,
		id, title, content, coverImage,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a news item; its comments go with it (ON DELETE CASCADE).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
