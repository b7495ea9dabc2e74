package models

import (
	"time"

	"github.com/google/uuid"
)

// Class represents a single scheduled occurrence of a yoga class.
// CurrentParticipants is always derived by counting bookings at read time;
// it is never stored as a column.
type Class struct {
	ID                  uuid.UUID `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	Type                string    `json:"type"`
	Color               string    `json:"color"`
	Date                time.Time `json:"date"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	Instructor          string    `json:"instructor"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
