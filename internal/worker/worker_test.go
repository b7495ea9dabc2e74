package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lune-yoga/backend/pkg/queue"
)

type failingSender struct{}

func (failingSender) Send(to, subject, body string) error {
	return errors.New("relay unreachable")
}

func emailJob(t *testing.T, attempt int) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.EmailPayload{
		BookingID:      uuid.New(),
		RecipientEmail: "elodie@example.com",
		Subject:        "Réservation confirmée",
	})
	require.NoError(t, err)
	return &queue.Job{
		ID:        uuid.New().String(),
		Type:      queue.JobTypeEmail,
		Payload:   payload,
		Attempt:   attempt,
		CreatedAt: time.Now(),
	}
}

func TestProcessRequeuesFailedDeliveryWithoutBlockingShutdown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := queue.NewQueue(db, nil)
	mock.Regexp().ExpectRPush(queue.QueueEmails, `.*"attempt":1.*`).SetVal(1)

	p := NewEmailProcessor(q, failingSender{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	p.process(ctx, emailJob(t, 0))

	assert.Less(t, time.Since(start), time.Second, "backoff must yield to a cancelled context")
	assert.NoError(t, mock.ExpectationsWereMet(), "failed job must still be requeued")
}

func TestProcessDropsUnknownJobType(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := queue.NewQueue(db, nil)

	p := NewEmailProcessor(q, failingSender{}, nil, nil)
	p.process(context.Background(), &queue.Job{ID: "j", Type: "sms"})

	assert.NoError(t, mock.ExpectationsWereMet())
}
