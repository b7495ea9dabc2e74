package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking links one user to one class session, granting a seat.
// The (user_id, class_id) pair is unique.
type Booking struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	ClassID  uuid.UUID `json:"class_id"`
	BookedAt time.Time `json:"booked_at"`

	Class *Class       `json:"class,omitempty"`
	User  *UserSummary `json:"user,omitempty"`
}
