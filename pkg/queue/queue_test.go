package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueEmailPushesToEmailQueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewQueue(db, nil)

	mock.Regexp().ExpectRPush(QueueEmails, `.*"type":"email".*`).SetVal(1)

	err := q.EnqueueEmail(context.Background(), EmailPayload{
		BookingID:      uuid.New(),
		RecipientEmail: "elodie@example.com",
		RecipientName:  "Élodie",
		Subject:        "Réservation confirmée",
		Body:           "À bientôt sur le tapis",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryReenqueuesBelowMaxAttempts(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewQueue(db, nil)

	job := &Job{
		ID:        uuid.New().String(),
		Type:      JobTypeEmail,
		Payload:   json.RawMessage(`{}`),
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	mock.Regexp().ExpectRPush(QueueEmails, `.*"attempt":1.*`).SetVal(1)

	require.NoError(t, q.Retry(context.Background(), job))
	assert.Equal(t, 1, job.Attempt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryMovesExhaustedJobToDLQ(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewQueue(db, nil)

	job := &Job{
		ID:        uuid.New().String(),
		Type:      JobTypeEmail,
		Payload:   json.RawMessage(`{}`),
		Attempt:   MaxRetries - 1,
		CreatedAt: time.Now(),
	}
	mock.Regexp().ExpectRPush(QueueDLQ, `.*"attempt":3.*`).SetVal(1)

	require.NoError(t, q.Retry(context.Background(), job))
	assert.Equal(t, MaxRetries, job.Attempt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDequeueReturnsJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewQueue(db, nil)

	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeEmail,
		Payload:   json.RawMessage(`{"recipient_email":"elodie@example.com"}`),
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	require.NoError(t, err)

	mock.ExpectBLPop(0, QueueEmails).SetVal([]string{QueueEmails, string(raw)})

	got, key, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, QueueEmails, key)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, JobTypeEmail, got.Type)
}

func TestDequeueSkipsMalformedPayload(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewQueue(db, nil)

	mock.ExpectBLPop(0, QueueEmails).SetVal([]string{QueueEmails, "not-json"})

	got, _, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}
