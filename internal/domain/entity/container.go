package entity

import (
	"sort"
	"strings"
	"time"
)

// Shipping status of a tracked container
type ShippingStatus string

const (
	ShippingStatusProcessing ShippingStatus = "PROCESSING"
	ShippingStatusFinished   ShippingStatus = "FINISHED"
)

// Shipowner identifies the carrier a container is tracked against
type Shipowner string

const (
	ShipownerMSC Shipowner = "MSC"
)

// Valid reports whether the shipowner is one the service can poll
func (s Shipowner) Valid() bool {
	switch s {
	case ShipownerMSC:
		return true
	}
	return false
}

// Search outcome recorded on every poll
type SearchStatus string

const (
	SearchStatusSuccess SearchStatus = "SUCCESS"
	SearchStatusFailure SearchStatus = "FAILURE"
)

// Terminal event markers
const (
	FinishedEventDescription = "Empty received at CY"
	FinishedEventDetail      = "EMPTY"
)

// SearchLog is an append-only record of one poll attempt
type SearchLog struct {
	Timestamp time.Time
	Status    SearchStatus
}

// Container is a tracked shipping container and its event history.
// The natural key is (Number, Shipowner); ID is set once persisted.
type Container struct {
	ID                       string
	Number                   string
	Shipowner                Shipowner
	ShippedFrom              string
	ShippedTo                string
	PortOfLoad               string
	PortOfDischarge          string
	BookingNumber            string
	MasterBillOfLadingNumber string
	HouseBillOfLadingNumber  string
	Events                   []Event
	SearchLogs               []SearchLog
	ShippingStatus           ShippingStatus
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// FindEvent returns the event with the given order
func (c *Container) FindEvent(order int) (*Event, bool) {
	for i := range c.Events {
		if c.Events[i].Order == order {
			return &c.Events[i], true
		}
	}
	return nil, false
}

// AddEvent appends the event unless one with the same order already exists
func (c *Container) AddEvent(event Event) {
	if _, exists := c.FindEvent(event.Order); exists {
		return
	}
	event.Detail = append([]string(nil), event.Detail...)
	c.Events = append(c.Events, event)
}

// UpdateEvent overwrites the mutable fields of the event with the given order.
// Unknown orders are ignored.
func (c *Container) UpdateEvent(order int, fields EventFields) {
	event, ok := c.FindEvent(order)
	if !ok {
		return
	}
	event.Location = fields.Location
	event.UnLocationCode = fields.UnLocationCode
	event.Description = fields.Description
	event.Detail = append([]string(nil), fields.Detail...)
	event.Timing = fields.Timing
}

// RemoveEventByOrder drops every event matching order
func (c *Container) RemoveEventByOrder(order int) {
	kept := c.Events[:0]
	for _, event := range c.Events {
		if event.Order != order {
			kept = append(kept, event)
		}
	}
	c.Events = kept
}

// SortedEvents returns a copy of the events ordered by Order
func (c *Container) SortedEvents() []Event {
	events := append([]Event(nil), c.Events...)
	sort.Slice(events, func(i, j int) bool {
		return events[i].Order < events[j].Order
	})
	return events
}

// LastEvent returns the event with the highest order
func (c *Container) LastEvent() (*Event, bool) {
	if len(c.Events) == 0 {
		return nil, false
	}
	last := 0
	for i := range c.Events {
		if c.Events[i].Order > c.Events[last].Order {
			last = i
		}
	}
	return &c.Events[last], true
}

// SetShippingStatus recomputes ShippingStatus from the last event.
// A container without events is PROCESSING.
func (c *Container) SetShippingStatus() {
	c.ShippingStatus = ShippingStatusProcessing

	last, ok := c.LastEvent()
	if !ok {
		return
	}
	if last.Description == FinishedEventDescription &&
		strings.Join(last.Detail, " ") == FinishedEventDetail &&
		last.Status() == EventStatusEffective {
		c.ShippingStatus = ShippingStatusFinished
	}
}

// AddSearchLog appends a search log entry
func (c *Container) AddSearchLog(status SearchStatus, at time.Time) {
	c.SearchLogs = append(c.SearchLogs, SearchLog{
		Timestamp: at,
		Status:    status,
	})
}

// LastSearchLog returns the most recent search log
func (c *Container) LastSearchLog() (SearchLog, bool) {
	if len(c.SearchLogs) == 0 {
		return SearchLog{}, false
	}
	return c.SearchLogs[len(c.SearchLogs)-1], true
}

// IsFinished reports whether tracking has reached its terminal status
func (c *Container) IsFinished() bool {
	return c.ShippingStatus == ShippingStatusFinished
}
