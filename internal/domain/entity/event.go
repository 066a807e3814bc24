package entity

import "strings"

// EventStatus tells whether an event already happened or is only forecast
type EventStatus string

const (
	EventStatusEstimated EventStatus = "ESTIMATED"
	EventStatusEffective EventStatus = "EFFECTIVE"
)

// EventTiming holds exactly one of an estimated or an effective date.
// The zero value is an estimated timing without a date.
type EventTiming struct {
	effective bool
	date      string
}

// Estimated builds a forecast timing
func Estimated(date string) EventTiming {
	return EventTiming{date: date}
}

// Effective builds a timing for an event that already happened
func Effective(date string) EventTiming {
	return EventTiming{effective: true, date: date}
}

// Status returns ESTIMATED unless the timing is effective
func (t EventTiming) Status() EventStatus {
	if t.effective {
		return EventStatusEffective
	}
	return EventStatusEstimated
}

// Date returns whichever date is authoritative
func (t EventTiming) Date() string {
	return t.date
}

// EstimatedDate returns the date when the timing is estimated
func (t EventTiming) EstimatedDate() (string, bool) {
	if t.Status() != EventStatusEstimated {
		return "", false
	}
	return t.date, true
}

// EffectiveDate returns the date when the timing is effective
func (t EventTiming) EffectiveDate() (string, bool) {
	if t.Status() != EventStatusEffective {
		return "", false
	}
	return t.date, true
}

func (t EventTiming) String() string {
	return string(t.Status()) + " " + t.date
}

// Event is one step of a container's journey. Order is its identity within
// the container and never changes once set.
type Event struct {
	Order          int
	Location       string
	UnLocationCode string
	Description    string
	Detail         []string
	Timing         EventTiming
}

// EventFields are the mutable parts of an event
type EventFields struct {
	Location       string
	UnLocationCode string
	Description    string
	Detail         []string
	Timing         EventTiming
}

// Status is derived from the timing
func (e Event) Status() EventStatus {
	return e.Timing.Status()
}

// Fields returns the mutable parts of the event
func (e Event) Fields() EventFields {
	return EventFields{
		Location:       e.Location,
		UnLocationCode: e.UnLocationCode,
		Description:    e.Description,
		Detail:         append([]string(nil), e.Detail...),
		Timing:         e.Timing,
	}
}

// DetailText joins the detail lines with spaces
func (e Event) DetailText() string {
	return strings.Join(e.Detail, " ")
}

// SameFields reports whether both events carry identical mutable fields
func (e Event) SameFields(other Event) bool {
	return e.Location == other.Location &&
		e.UnLocationCode == other.UnLocationCode &&
		e.Description == other.Description &&
		e.Timing == other.Timing &&
		equalStrings(e.Detail, other.Detail)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
