package repository

import (
	"context"

	"track-wise-service/internal/domain/entity"
)

// NotificationRepository delivers notifications over one channel
type NotificationRepository interface {
	Name() string
	Send(ctx context.Context, notification *entity.Notification) error
}
