package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a user comment on a news item.
type Comment struct {
	ID        uuid.UUID    `json:"id"`
	Content   string       `json:"content"`
	NewsID    uuid.UUID    `json:"news_id"`
	UserID    uuid.UUID    `json:"user_id"`
	User      *UserSummary `json:"user,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
