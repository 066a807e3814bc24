package repository

import (
	"context"

	"track-wise-service/internal/domain/entity"
)

// PollRunRepository defines the interface for the poll audit trail
type PollRunRepository interface {
	Create(ctx context.Context, run *entity.PollRun) error
	FindByContainerNumber(ctx context.Context, containerNumber string, limit int) ([]*entity.PollRun, error)
	FindByCycleID(ctx context.Context, cycleID string) ([]*entity.PollRun, error)
}
