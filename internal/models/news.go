package models

import (
	"time"

	"github.com/google/uuid"
)

// News represents one item of the studio news feed.
type News struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	CoverImage    string       `json:"cover_image,omitempty"`
	AuthorID      uuid.UUID    `json:"author_id"`
	Author        *UserSummary `json:"author,omitempty"`
	ViewCount     int          `json:"view_count"`
	CommentsCount int          `json:"comments_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
