package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/pkg/config"
	"github.com/campushour/tutoring-api/pkg/jobs"
)

// NotificationSender delivers one notification to the outside world.
type NotificationSender interface {
	Send(ctx context.Context, notification models.Notification) error
}

// LogSender writes notifications to the log. Stands in for the real email
// delivery service, which is owned by the surrounding application.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a log-backed sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the notification.
func (s *LogSender) Send(_ context.Context, notification models.Notification) error {
	s.logger.Info("notification dispatched",
		zap.String("to", notification.To),
		zap.String("kind", string(notification.Kind)),
	)
	return nil
}

// NotificationService dispatches notifications fire-and-forget through a
// background worker queue. Delivery failure is retried and ultimately logged;
// it never propagates into the operation that triggered it.
type NotificationService struct {
	queue  *jobs.Queue[models.Notification]
	logger *zap.Logger
}

// NewNotificationService wires the sender behind a worker queue.
func NewNotificationService(sender NotificationSender, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(ctx context.Context, job jobs.Job[models.Notification]) error {
		return sender.Send(ctx, job.Payload)
	}

	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})

	return &NotificationService{queue: queue, logger: logger}
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify enqueues a notification. Errors are logged and swallowed.
func (s *NotificationService) Notify(notification models.Notification) {
	job := jobs.Job[models.Notification]{
		ID:      uuid.NewString(),
		Type:    string(notification.Kind),
		Payload: notification,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("to", notification.To),
			zap.String("kind", string(notification.Kind)),
			zap.Error(err),
		)
	}
}
