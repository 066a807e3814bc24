package usecase

import (
	"context"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
)

// NotificationRouter fans a notification out to every registered channel
type NotificationRouter interface {
	// Register adds a delivery channel
	Register(channel repository.NotificationRepository)

	// Broadcast delivers to every channel and returns how many succeeded
	Broadcast(ctx context.Context, notification *entity.Notification) int
}
