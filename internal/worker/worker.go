package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lune-yoga/backend/internal/mailer"
	"github.com/lune-yoga/backend/pkg/queue"
)

// EmailProcessor consumes email jobs from the queue, delivers them over SMTP
// and records every attempt in the email log.
type EmailProcessor struct {
	queue  *queue.Queue
	sender mailer.Sender
	logs   *mailer.Repository
	logger *zap.Logger
}

// NewEmailProcessor creates an email processor.
func NewEmailProcessor(q *queue.Queue, sender mailer.Sender, logs *mailer.Repository, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{queue: q, sender: sender, logs: logs, logger: logger}
}

// Run processes jobs until ctx is cancelled.
func (p *EmailProcessor) Run(ctx context.Context) error {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return ctx.Err()
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if job == nil {
			continue
		}
		p.process(ctx, job)
	}
}

func (p *EmailProcessor) process(ctx context.Context, job *queue.Job) {
	if job.Type != queue.JobTypeEmail {
		p.logger.Warn("unknown job type, dropping", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		return
	}

	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		p.logger.Error("invalid email payload, dropping", zap.String("job_id", job.ID), zap.Error(err))
		return
	}

	if err := p.sender.Send(payload.RecipientEmail, payload.Subject, payload.Body); err != nil {
		p.logger.Warn("email delivery failed",
			zap.String("job_id", job.ID),
			zap.String("recipient", payload.RecipientEmail),
			zap.Int("attempt", job.Attempt),
			zap.Error(err),
		)
		if job.Attempt+1 >= queue.MaxRetries {
			p.logFailed(ctx, payload, err)
		}
		// Requeue before pausing, on its own deadline, so a shutdown during
		// the backoff cannot drop the job.
		requeueCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if rerr := p.queue.Retry(requeueCtx, job); rerr != nil {
			p.logger.Error("retry failed", zap.String("job_id", job.ID), zap.Error(rerr))
		}
		cancel()
		select {
		case <-ctx.Done():
		case <-time.After(queue.RetryBackoff):
		}
		return
	}

	if err := p.logs.LogSent(ctx, payload.BookingID, payload.RecipientEmail, payload.Subject); err != nil {
		p.logger.Warn("record sent email failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	p.logger.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("recipient", payload.RecipientEmail),
	)
}

func (p *EmailProcessor) logFailed(ctx context.Context, payload queue.EmailPayload, sendErr error) {
	if err := p.logs.LogFailed(ctx, payload.BookingID, payload.RecipientEmail, payload.Subject, sendErr.Error()); err != nil {
		p.logger.Warn("record failed email failed", zap.Error(err))
	}
}
