package bookings

import "errors"

// Domain errors surfaced by the admission-control flow. Handlers map these to
// HTTP statuses; everything else is treated as an internal failure.
var (
	// ErrClassNotFound is returned when the requested class does not exist.
	ErrClassNotFound = errors.New("class not found")

	// ErrClassFull is returned when the class has no remaining seats.
	ErrClassFull = errors.New("class is full")

	// ErrAlreadyBooked is returned when the user already holds a booking for
	// the class.
	ErrAlreadyBooked = errors.New("already booked")

	// ErrBookingNotFound is returned when the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotOwner is returned when the requester does not own the booking.
	ErrNotOwner = errors.New("not booking owner")
)
