package bookings

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/pkg/retry"
)

// fakeStore is an in-memory Store honoring the same contract as the pgx
// repository: Book performs the capacity check, the duplicate check and the
// insert under one lock.
type fakeStore struct {
	mu       sync.Mutex
	classes  map[uuid.UUID]*models.Class
	bookings map[uuid.UUID]*models.Booking

	// failures is consumed one error per Book call before the real logic runs,
	// to simulate transient store errors.
	failures []error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		classes:  make(map[uuid.UUID]*models.Class),
		bookings: make(map[uuid.UUID]*models.Booking),
	}
}

func (s *fakeStore) addClass(title string, capacity int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.classes[id] = &models.Class{ID: id, Title: title, MaxParticipants: capacity}
	return id
}

func (s *fakeStore) countForClass(classID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.ClassID == classID {
			n++
		}
	}
	return n
}

func (s *fakeStore) Book(ctx context.Context, userID, classID uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		if err != nil {
			return nil, err
		}
	}

	cls, ok := s.classes[classID]
	if !ok {
		return nil, ErrClassNotFound
	}
	taken := 0
	for _, b := range s.bookings {
		if b.ClassID == classID {
			taken++
		}
	}
	if taken >= cls.MaxParticipants {
		return nil, ErrClassFull
	}
	for _, b := range s.bookings {
		if b.UserID == userID && b.ClassID == classID {
			return nil, ErrAlreadyBooked
		}
	}

	copied := *cls
	copied.CurrentParticipants = taken + 1
	b := &models.Booking{
		ID:       uuid.New(),
		UserID:   userID,
		ClassID:  classID,
		BookedAt: time.Now(),
		Class:    &copied,
	}
	s.bookings[b.ID] = b
	return b, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			list = append(list, *b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BookedAt.After(list[j].BookedAt) })
	return list, nil
}

func (s *fakeStore) ListAll(ctx context.Context, limit, offset int) ([]models.Booking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.Booking
	for _, b := range s.bookings {
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BookedAt.After(list[j].BookedAt) })
	total := len(list)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return list[offset:end], total, nil
}

func newTestService(store Store) *Service {
	s := NewService(store, nil)
	s.retryCfg = retry.Config{MaxAttempts: 3, Backoff: time.Millisecond}
	return s
}

func TestRequestBookingAdmitsUpToCapacity(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	classID := store.addClass("Yin Yoga Friday", 3)

	for i := 0; i < 3; i++ {
		b, err := svc.RequestBooking(ctx, uuid.New(), classID)
		require.NoError(t, err)
		require.NotNil(t, b.Class)
		assert.Equal(t, i+1, b.Class.CurrentParticipants)
	}
	assert.Equal(t, 3, store.countForClass(classID))

	_, err := svc.RequestBooking(ctx, uuid.New(), classID)
	assert.ErrorIs(t, err, ErrClassFull)
	assert.Equal(t, 3, store.countForClass(classID), "refused booking must not create a row")
}

func TestRequestBookingRejectsDuplicatePair(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	classID := store.addClass("Hatha doux", 10)
	userID := uuid.New()

	_, err := svc.RequestBooking(ctx, userID, classID)
	require.NoError(t, err)

	_, err = svc.RequestBooking(ctx, userID, classID)
	assert.ErrorIs(t, err, ErrAlreadyBooked)
	assert.Equal(t, 1, store.countForClass(classID))
}

func TestRequestBookingUnknownClass(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.RequestBooking(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.Empty(t, store.bookings)
}

func TestRequestBookingRetriesTransientFailures(t *testing.T) {
	store := newFakeStore()
	classID := store.addClass("Yin du soir", 5)
	store.failures = []error{errors.New("connection refused")}

	svc := NewService(store, nil)
	svc.retryCfg = retry.Config{MaxAttempts: 3, Backoff: time.Millisecond}
	svc.retryable = func(err error) bool { return err.Error() == "connection refused" }

	b, err := svc.RequestBooking(context.Background(), uuid.New(), classID)
	require.NoError(t, err)
	assert.Equal(t, classID, b.ClassID)
}

func TestRequestBookingDoesNotRetryDomainErrors(t *testing.T) {
	store := newFakeStore()
	classID := store.addClass("Complet", 1)
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.RequestBooking(ctx, uuid.New(), classID)
	require.NoError(t, err)

	// A retried ErrClassFull would still fail, but it must come back after a
	// single attempt: the fake returns it without consuming failures.
	_, err = svc.RequestBooking(ctx, uuid.New(), classID)
	assert.ErrorIs(t, err, ErrClassFull)
}

func TestConcurrentBookingsNeverOverbook(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	classID := store.addClass("Une seule place", 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.RequestBooking(context.Background(), uuid.New(), classID)
		}(i)
	}
	wg.Wait()

	successes, fulls := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrClassFull):
			fulls++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, fulls)
	assert.Equal(t, 1, store.countForClass(classID))
}

func TestConcurrentBookingsStayWithinCapacity(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	const capacity = 5
	classID := store.addClass("Vinyasa du matin", capacity)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.RequestBooking(context.Background(), uuid.New(), classID)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, store.countForClass(classID), capacity)
	assert.Equal(t, capacity, store.countForClass(classID))
}

func TestCancelBookingOwnerOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	classID := store.addClass("Yin Yoga Friday", 3)
	owner := uuid.New()
	b, err := svc.RequestBooking(ctx, owner, classID)
	require.NoError(t, err)

	err = svc.CancelBooking(ctx, b.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 1, store.countForClass(classID), "foreign cancellation must not delete the row")

	require.NoError(t, svc.CancelBooking(ctx, b.ID, owner))
	assert.Equal(t, 0, store.countForClass(classID))
}

func TestCancelBookingUnknownID(t *testing.T) {
	svc := newTestService(newFakeStore())
	err := svc.CancelBooking(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelThenRebookSucceeds(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	classID := store.addClass("Yin & lune", 2)
	userID := uuid.New()

	b, err := svc.RequestBooking(ctx, userID, classID)
	require.NoError(t, err)
	require.NoError(t, svc.CancelBooking(ctx, b.ID, userID))

	list, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.RequestBooking(ctx, userID, classID)
	assert.NoError(t, err)
}

func TestListForUserNewestFirst(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	userID := uuid.New()

	first := store.addClass("Lundi", 5)
	second := store.addClass("Mardi", 5)

	_, err := svc.RequestBooking(ctx, userID, first)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = svc.RequestBooking(ctx, userID, second)
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ClassID)
	assert.Equal(t, first, list[1].ClassID)
}

func TestListAllPagination(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()
	classID := store.addClass("Grand cours", 50)

	for i := 0; i < 5; i++ {
		_, err := svc.RequestBooking(ctx, uuid.New(), classID)
		require.NoError(t, err)
	}

	page, total, err := svc.ListAll(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)

	page, total, err = svc.ListAll(ctx, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 1)
}
