package usecase

import (
	"context"
	"errors"
	"testing"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/pkg/logger"
	"track-wise-service/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = entity.SchedulingWindow{
	ID:    "default",
	Start: entity.NewTimeOfDay(8, 0, 0),
	End:   entity.NewTimeOfDay(20, 0, 0),
}

func newTestSchedulingService(repo *fakeSchedulingRepo) *SearchSchedulingService {
	return NewSearchSchedulingService(repo, testWindow, metrics.NewTestMetrics(), logger.NewNopLogger())
}

func tod(h, m int) entity.TimeOfDay {
	return entity.NewTimeOfDay(h, m, 0)
}

func TestCalculateNextSearchTime(t *testing.T) {
	tests := []struct {
		name  string
		times []entity.TimeOfDay
		want  entity.TimeOfDay
	}{
		{"empty schedule takes window start", nil, tod(8, 0)},
		{"single slot takes window end", []entity.TimeOfDay{tod(8, 0)}, tod(20, 0)},
		{"midpoint of the only gap", []entity.TimeOfDay{tod(20, 0), tod(8, 0)}, tod(14, 0)},
		{"tie goes to the earliest gap", []entity.TimeOfDay{tod(8, 0), tod(14, 0), tod(20, 0)}, tod(11, 0)},
		{"widest gap wins", []entity.TimeOfDay{tod(8, 0), tod(11, 0), tod(14, 0), tod(20, 0)}, tod(17, 0)},
		{"odd gap floors the second", []entity.TimeOfDay{entity.NewTimeOfDay(8, 0, 0), entity.NewTimeOfDay(8, 0, 3)}, entity.NewTimeOfDay(8, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := entity.NewSearchScheduling(testWindow)
			for i, at := range tt.times {
				s.AddContainerSchedule(entity.ContainerSchedule{ContainerNumber: string(rune('A' + i)), SearchTime: at})
			}
			assert.Equal(t, tt.want, CalculateNextSearchTime(s))
		})
	}
}

func TestAddContainerScheduleSequence(t *testing.T) {
	ctx := context.Background()
	repo := &fakeSchedulingRepo{}
	service := newTestSchedulingService(repo)

	want := map[string]entity.TimeOfDay{
		"A": tod(8, 0),
		"B": tod(20, 0),
		"C": tod(14, 0),
		"D": tod(11, 0),
		"E": tod(17, 0),
	}
	for _, number := range []string{"A", "B", "C", "D", "E"} {
		slot, err := service.AddContainerSchedule(ctx, number)
		require.NoError(t, err)
		assert.Equal(t, want[number], slot.SearchTime, number)
	}

	assert.Equal(t, want, repo.slots())
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, 4, repo.updates)
}

func TestAddContainerScheduleKeepsExistingSlot(t *testing.T) {
	ctx := context.Background()
	repo := &fakeSchedulingRepo{}
	service := newTestSchedulingService(repo)

	_, err := service.AddContainerSchedule(ctx, "A")
	require.NoError(t, err)
	_, err = service.AddContainerSchedule(ctx, "B")
	require.NoError(t, err)

	slot, err := service.AddContainerSchedule(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, tod(8, 0), slot.SearchTime)
	assert.Len(t, repo.slots(), 2)
	assert.Equal(t, 1, repo.updates)
}

func TestRemovedSlotIsReused(t *testing.T) {
	ctx := context.Background()
	repo := &fakeSchedulingRepo{}
	service := newTestSchedulingService(repo)

	for _, number := range []string{"A", "C", "B"} {
		_, err := service.AddContainerSchedule(ctx, number)
		require.NoError(t, err)
	}
	require.Equal(t, map[string]entity.TimeOfDay{"A": tod(8, 0), "B": tod(14, 0), "C": tod(20, 0)}, repo.slots())

	require.NoError(t, service.RemoveContainerSchedule(ctx, "B"))
	assert.Equal(t, map[string]entity.TimeOfDay{"A": tod(8, 0), "C": tod(20, 0)}, repo.slots())

	slot, err := service.AddContainerSchedule(ctx, "D")
	require.NoError(t, err)
	assert.Equal(t, tod(14, 0), slot.SearchTime)
}

func TestRemoveContainerScheduleWithoutSlotDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	repo := &fakeSchedulingRepo{}
	service := newTestSchedulingService(repo)

	require.NoError(t, service.RemoveContainerSchedule(ctx, "A"))

	_, err := service.AddContainerSchedule(ctx, "A")
	require.NoError(t, err)
	require.NoError(t, service.RemoveContainerSchedule(ctx, "Z"))
	assert.Equal(t, 0, repo.updates)
}

func TestAddContainerScheduleRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	repo := &fakeSchedulingRepo{}
	service := newTestSchedulingService(repo)

	_, err := service.AddContainerSchedule(ctx, "A")
	require.NoError(t, err)

	repo.conflicts = maxScheduleAttempts - 1
	slot, err := service.AddContainerSchedule(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, tod(20, 0), slot.SearchTime)
	assert.Equal(t, 1, repo.updates)
}

func TestAddContainerScheduleGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	repo := &fakeSchedulingRepo{}
	service := newTestSchedulingService(repo)

	_, err := service.AddContainerSchedule(ctx, "A")
	require.NoError(t, err)

	repo.conflicts = maxScheduleAttempts
	_, err = service.AddContainerSchedule(ctx, "B")
	assert.True(t, errors.Is(err, entity.ErrScheduleConflict))
	assert.Len(t, repo.slots(), 1)
}

func TestGetSearchSchedulingDefaultsToEmptyWindow(t *testing.T) {
	service := newTestSchedulingService(&fakeSchedulingRepo{})

	s, err := service.GetSearchScheduling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", s.ID)
	assert.Equal(t, tod(8, 0), s.StartSearchTime)
	assert.Equal(t, tod(20, 0), s.EndSearchTime)
	assert.Empty(t, s.Containers)
}
