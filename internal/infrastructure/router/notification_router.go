package router

import (
	"context"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
	"track-wise-service/pkg/logger"
	"track-wise-service/pkg/metrics"
)

// NotificationRouter delivers notifications to every registered channel
type NotificationRouter struct {
	channels []repository.NotificationRepository
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewNotificationRouter creates a new notification router
func NewNotificationRouter(metrics *metrics.Metrics, logger logger.Logger) *NotificationRouter {
	return &NotificationRouter{
		channels: make([]repository.NotificationRepository, 0),
		metrics:  metrics,
		logger:   logger,
	}
}

// Register registers a delivery channel
func (r *NotificationRouter) Register(channel repository.NotificationRepository) {
	r.channels = append(r.channels, channel)
	r.logger.Info("Registered notification channel", "channel", channel.Name())
}

// Channels returns the registered channel names
func (r *NotificationRouter) Channels() []string {
	names := make([]string, 0, len(r.channels))
	for _, ch := range r.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Broadcast sends the notification through every channel. A failing channel
// is logged and does not stop the others; nothing is retried.
func (r *NotificationRouter) Broadcast(ctx context.Context, notification *entity.Notification) int {
	delivered := 0
	for _, ch := range r.channels {
		if err := ch.Send(ctx, notification); err != nil {
			r.metrics.ErrorsCount.WithLabelValues("notify_" + ch.Name()).Inc()
			r.logger.Error("Failed to send notification",
				"channel", ch.Name(),
				"containerNumber", notification.Number,
				"type", notification.Type,
				"error", err)
			continue
		}
		r.metrics.NotificationsSent.WithLabelValues(ch.Name()).Inc()
		delivered++
	}
	return delivered
}
