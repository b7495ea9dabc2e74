package bookings

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/database"
	"github.com/lune-yoga/backend/pkg/retry"
)

// Store is the persistence contract the service depends on. Book must perform
// the capacity re-check and the insert as a single atomic unit.
type Store interface {
	Book(ctx context.Context, userID, classID uuid.UUID) (*models.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Booking, int, error)
}

// Service implements booking admission control over a Store. Transient store
// failures are retried with backoff; domain errors are returned immediately.
type Service struct {
	store     Store
	retryCfg  retry.Config
	retryable func(error) bool
	logger    *zap.Logger
}

// NewService creates a bookings service with the default retry policy.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		retryCfg:  retry.DefaultConfig,
		retryable: database.IsTransient,
		logger:    logger,
	}
}

// RequestBooking admits the user into the class if it exists, has a free seat
// and the user has not already booked it. Preconditions are checked in that
// order inside the store's transaction.
func (s *Service) RequestBooking(ctx context.Context, userID, classID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking
	err := retry.Do(ctx, s.retryCfg, s.retryable, func(ctx context.Context) error {
		var err error
		booking, err = s.store.Book(ctx, userID, classID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("class_id", classID.String()),
	)
	return booking, nil
}

// CancelBooking deletes the booking if the requester owns it. Ownership is the
// only authorization that counts here; admins are not special-cased.
func (s *Service) CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID) error {
	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != requesterID {
		return ErrNotOwner
	}
	if err := s.store.Delete(ctx, bookingID); err != nil {
		return err
	}
	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("user_id", requesterID.String()),
	)
	return nil
}

// ListForUser returns the user's bookings with their classes, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var list []models.Booking
	err := retry.Do(ctx, s.retryCfg, s.retryable, func(ctx context.Context) error {
		var err error
		list, err = s.store.ListByUser(ctx, userID)
		return err
	})
	return list, err
}

// ListAll returns a page of all bookings plus the total (admin listing).
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]models.Booking, int, error) {
	return s.store.ListAll(ctx, limit, offset)
}
