package entity

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("14:30:05")
	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(14, 30, 5), tod)
	assert.Equal(t, "14:30:05", tod.String())
	assert.Equal(t, 14*3600+30*60+5, tod.Seconds())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)

	day := time.Date(2025, 3, 1, 22, 10, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 1, 14, 30, 5, 0, time.UTC), tod.On(day))
	assert.Equal(t, NewTimeOfDay(22, 10, 0), TimeOfDayOf(day))
}

func TestTimeOfDayOnDaylightSavingDay(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Clocks jump from 02:00 to 03:00 on this day
	day := time.Date(2025, 3, 30, 0, 0, 0, 0, berlin)
	slot := NewTimeOfDay(10, 0, 0).On(day)

	assert.Equal(t, 10, slot.Hour())
	assert.Equal(t, 0, slot.Minute())
	assert.Equal(t, NewTimeOfDay(10, 0, 0), TimeOfDayOf(slot))
}

func TestSearchSchedulingSlots(t *testing.T) {
	s := NewSearchScheduling(SchedulingWindow{
		ID:    "default",
		Start: NewTimeOfDay(8, 0, 0),
		End:   NewTimeOfDay(20, 0, 0),
	})
	assert.Empty(t, s.Containers)

	s.AddContainerSchedule(ContainerSchedule{ContainerNumber: "A", SearchTime: NewTimeOfDay(20, 0, 0)})
	s.AddContainerSchedule(ContainerSchedule{ContainerNumber: "B", SearchTime: NewTimeOfDay(8, 0, 0)})
	s.AddContainerSchedule(ContainerSchedule{ContainerNumber: "C", SearchTime: NewTimeOfDay(8, 30, 0)})

	assert.Equal(t, []TimeOfDay{NewTimeOfDay(8, 0, 0), NewTimeOfDay(8, 30, 0), NewTimeOfDay(20, 0, 0)}, s.SortedSearchTimes())
	slot, ok := s.Find("C")
	require.True(t, ok)
	assert.Equal(t, NewTimeOfDay(8, 30, 0), slot.SearchTime)

	due := s.DueBetween(NewTimeOfDay(8, 0, 0), NewTimeOfDay(8, 59, 59))
	require.Len(t, due, 2)
	assert.Equal(t, "B", due[0].ContainerNumber)
	assert.Equal(t, "C", due[1].ContainerNumber)

	assert.Equal(t, 1, s.RemoveContainerSchedule("C"))
	assert.Equal(t, 0, s.RemoveContainerSchedule("C"))
	_, ok = s.Find("C")
	assert.False(t, ok)
	assert.Equal(t, NewTimeOfDay(20, 0, 0), s.Containers[0].SearchTime)
}
