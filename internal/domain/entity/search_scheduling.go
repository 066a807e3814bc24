package entity

import (
	"fmt"
	"sort"
	"time"
)

const timeOfDayLayout = "15:04:05"

// TimeOfDay is a wall-clock time without a date, in seconds since midnight
type TimeOfDay int

// NewTimeOfDay builds a time of day from its components
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// ParseTimeOfDay parses "15:04:05"
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse(timeOfDayLayout, value)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", value, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
}

// TimeOfDayOf extracts the wall-clock part of t
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// Seconds since midnight
func (t TimeOfDay) Seconds() int {
	return int(t)
}

// On returns the instant of this time of day on the date of day
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	s := int(t)
	return time.Date(y, m, d, s/3600, (s%3600)/60, s%60, 0, day.Location())
}

func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// ContainerSchedule is the polling slot assigned to one container
type ContainerSchedule struct {
	ContainerNumber string
	SearchTime      TimeOfDay
}

// SchedulingWindow identifies a schedule document and its daily bounds
type SchedulingWindow struct {
	ID    string
	Start TimeOfDay
	End   TimeOfDay
}

// SearchScheduling holds every polling slot of a window.
// Version increments on each persisted change.
type SearchScheduling struct {
	ID              string
	StartSearchTime TimeOfDay
	EndSearchTime   TimeOfDay
	Containers      []ContainerSchedule
	Version         int64
	UpdatedAt       time.Time
}

// NewSearchScheduling creates an empty schedule for the window
func NewSearchScheduling(window SchedulingWindow) *SearchScheduling {
	return &SearchScheduling{
		ID:              window.ID,
		StartSearchTime: window.Start,
		EndSearchTime:   window.End,
		Containers:      []ContainerSchedule{},
	}
}

// AddContainerSchedule appends a slot
func (s *SearchScheduling) AddContainerSchedule(schedule ContainerSchedule) {
	s.Containers = append(s.Containers, schedule)
}

// RemoveContainerSchedule drops every slot of the container and reports how
// many were removed. Remaining slots keep their times.
func (s *SearchScheduling) RemoveContainerSchedule(containerNumber string) int {
	kept := s.Containers[:0]
	removed := 0
	for _, cs := range s.Containers {
		if cs.ContainerNumber == containerNumber {
			removed++
			continue
		}
		kept = append(kept, cs)
	}
	s.Containers = kept
	return removed
}

// SortedSearchTimes returns every scheduled time ascending
func (s *SearchScheduling) SortedSearchTimes() []TimeOfDay {
	times := make([]TimeOfDay, 0, len(s.Containers))
	for _, cs := range s.Containers {
		times = append(times, cs.SearchTime)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

// DueBetween returns the slots within [from, to], ascending by search time
func (s *SearchScheduling) DueBetween(from, to TimeOfDay) []ContainerSchedule {
	var due []ContainerSchedule
	for _, cs := range s.Containers {
		if cs.SearchTime >= from && cs.SearchTime <= to {
			due = append(due, cs)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].SearchTime < due[j].SearchTime
	})
	return due
}

// Find returns the slot held by the container
func (s *SearchScheduling) Find(containerNumber string) (ContainerSchedule, bool) {
	for _, cs := range s.Containers {
		if cs.ContainerNumber == containerNumber {
			return cs, true
		}
	}
	return ContainerSchedule{}, false
}
