package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
	"track-wise-service/pkg/logger"
	"track-wise-service/pkg/metrics"
)

const maxScheduleAttempts = 3

// SearchSchedulingService allocates and releases polling slots
type SearchSchedulingService struct {
	repo    repository.SearchSchedulingRepository
	window  entity.SchedulingWindow
	metrics *metrics.Metrics
	logger  logger.Logger
	now     func() time.Time
}

// NewSearchSchedulingService creates a new search scheduling service
func NewSearchSchedulingService(
	repo repository.SearchSchedulingRepository,
	window entity.SchedulingWindow,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *SearchSchedulingService {
	return &SearchSchedulingService{
		repo:    repo,
		window:  window,
		metrics: metrics,
		logger:  logger.With("component", "search_scheduling"),
		now:     time.Now,
	}
}

// GetSearchScheduling returns the stored schedule, or an empty one for the window
func (s *SearchSchedulingService) GetSearchScheduling(ctx context.Context) (*entity.SearchScheduling, error) {
	scheduling, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load search scheduling: %w", err)
	}
	if scheduling == nil {
		return entity.NewSearchScheduling(s.window), nil
	}
	return scheduling, nil
}

// AddContainerSchedule assigns the container a slot in the largest free gap.
// A container that already holds a slot keeps it.
func (s *SearchSchedulingService) AddContainerSchedule(ctx context.Context, containerNumber string) (entity.ContainerSchedule, error) {
	var lastErr error
	for attempt := 1; attempt <= maxScheduleAttempts; attempt++ {
		slot, err := s.tryAddContainerSchedule(ctx, containerNumber)
		if err == nil {
			return slot, nil
		}
		if !errors.Is(err, entity.ErrScheduleConflict) {
			return entity.ContainerSchedule{}, err
		}
		lastErr = err
		s.logger.Warn("Search scheduling changed concurrently, retrying",
			"containerNumber", containerNumber,
			"attempt", attempt)
	}
	return entity.ContainerSchedule{}, lastErr
}

func (s *SearchSchedulingService) tryAddContainerSchedule(ctx context.Context, containerNumber string) (entity.ContainerSchedule, error) {
	scheduling, err := s.repo.Get(ctx)
	if err != nil {
		return entity.ContainerSchedule{}, fmt.Errorf("failed to load search scheduling: %w", err)
	}

	isNew := scheduling == nil
	if isNew {
		scheduling = entity.NewSearchScheduling(s.window)
	}

	if existing, ok := scheduling.Find(containerNumber); ok {
		return existing, nil
	}

	slot := entity.ContainerSchedule{
		ContainerNumber: containerNumber,
		SearchTime:      CalculateNextSearchTime(scheduling),
	}
	scheduling.AddContainerSchedule(slot)
	scheduling.UpdatedAt = s.now()

	if isNew {
		err = s.repo.Save(ctx, scheduling)
	} else {
		err = s.repo.Update(ctx, scheduling)
	}
	if err != nil {
		return entity.ContainerSchedule{}, err
	}

	s.metrics.ScheduledContainers.Set(float64(len(scheduling.Containers)))
	s.logger.Info("Container scheduled",
		"containerNumber", containerNumber,
		"searchTime", slot.SearchTime.String(),
		"scheduled", len(scheduling.Containers))

	return slot, nil
}

// RemoveContainerSchedule releases every slot held by the container.
// Neighbouring slots are left where they are.
func (s *SearchSchedulingService) RemoveContainerSchedule(ctx context.Context, containerNumber string) error {
	var lastErr error
	for attempt := 1; attempt <= maxScheduleAttempts; attempt++ {
		err := s.tryRemoveContainerSchedule(ctx, containerNumber)
		if err == nil {
			return nil
		}
		if !errors.Is(err, entity.ErrScheduleConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (s *SearchSchedulingService) tryRemoveContainerSchedule(ctx context.Context, containerNumber string) error {
	scheduling, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load search scheduling: %w", err)
	}
	if scheduling == nil {
		return nil
	}

	if scheduling.RemoveContainerSchedule(containerNumber) == 0 {
		return nil
	}
	scheduling.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, scheduling); err != nil {
		return err
	}

	s.metrics.ScheduledContainers.Set(float64(len(scheduling.Containers)))
	s.logger.Info("Container unscheduled",
		"containerNumber", containerNumber,
		"scheduled", len(scheduling.Containers))

	return nil
}

// CalculateNextSearchTime picks the slot for the next container: the window
// start first, the window end second, then the midpoint of the widest gap
// between existing slots (the earliest gap wins ties).
func CalculateNextSearchTime(scheduling *entity.SearchScheduling) entity.TimeOfDay {
	sorted := scheduling.SortedSearchTimes()
	switch len(sorted) {
	case 0:
		return scheduling.StartSearchTime
	case 1:
		return scheduling.EndSearchTime
	}

	i := findMaxGapIndex(sorted)
	return midTime(sorted[i], sorted[i+1])
}

func findMaxGapIndex(sorted []entity.TimeOfDay) int {
	maxGap := 0
	maxGapIndex := 0
	for i := 0; i < len(sorted)-1; i++ {
		gap := sorted[i+1].Seconds() - sorted[i].Seconds()
		if gap > maxGap {
			maxGap = gap
			maxGapIndex = i
		}
	}
	return maxGapIndex
}

func midTime(start, end entity.TimeOfDay) entity.TimeOfDay {
	return entity.TimeOfDay((start.Seconds() + end.Seconds()) / 2)
}
