package repository

import (
	"context"

	"track-wise-service/internal/domain/entity"
)

// SearchSchedulingRepository defines the interface for the polling schedule
type SearchSchedulingRepository interface {
	// Get returns nil when the schedule was never saved
	Get(ctx context.Context) (*entity.SearchScheduling, error)
	// Save inserts a new schedule
	Save(ctx context.Context, scheduling *entity.SearchScheduling) error
	// Update replaces the schedule if its version is unchanged since it was read,
	// otherwise it returns entity.ErrScheduleConflict
	Update(ctx context.Context, scheduling *entity.SearchScheduling) error
}
