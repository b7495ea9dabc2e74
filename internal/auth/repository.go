package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lune-yoga/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, email, password_hash, COALESCE(first_name,''), COALESCE(last_name,''),
		COALESCE(phone,''), COALESCE(profile_pic,''), role, last_login, created_at, updated_at
		FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.Phone, &u.ProfilePic, &u.Role, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, email, password_hash, COALESCE(first_name,''), COALESCE(last_name,''),
		COALESCE(phone,''), COALESCE(profile_pic,''), role, last_login, created_at, updated_at
		FROM users WHERE email = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.Phone, &u.ProfilePic, &u.Role, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, email, passwordHash, firstName, lastName string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO users (email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5)
		RETURNING id, email, password_hash, COALESCE(first_name,''), COALESCE(last_name,''),
		COALESCE(phone,''), COALESCE(profile_pic,''), role, last_login, created_at, updated_at`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email, passwordHash, firstName, lastName, string(role)).
		Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
			&u.Phone, &u.ProfilePic, &u.Role, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the caller-editable profile fields. Nil pointers leave
// the stored value unchanged.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, phone, profilePic *string) (*models.User, error) {
	const q = `UPDATE users SET
		first_name = COALESCE($2, first_name),
		last_name = COALESCE($3, last_name),
		phone = COALESCE($4, phone),
		profile_pic = COALESCE($5, profile_pic),
		updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, password_hash, COALESCE(first_name,''), COALESCE(last_name,''),
		COALESCE(phone,''), COALESCE(profile_pic,''), role, last_login, created_at, updated_at`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id, firstName, lastName, phone, profilePic).
		Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
			&u.Phone, &u.ProfilePic, &u.Role, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin sets last_login to now.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

// AdminUser is a user row for the admin listing, with its booking count.
type AdminUser struct {
	models.UserPublic
	BookingsCount int `json:"bookings_count"`
}

// List returns a page of users with booking counts, newest first, plus the total.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]AdminUser, int, error) {
	const q = `SELECT u.id, u.email, COALESCE(u.first_name,''), COALESCE(u.last_name,''),
		COALESCE(u.profile_pic,''), u.role, u.last_login, u.created_at, COUNT(b.id)
		FROM users u
		LEFT JOIN bookings b ON b.user_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []AdminUser
	for rows.Next() {
		var u AdminUser
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&u.ProfilePic, &u.Role, &u.LastLogin, &u.CreatedAt, &u.BookingsCount); err != nil {
			return nil, 0, err
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
