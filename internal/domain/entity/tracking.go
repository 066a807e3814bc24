package entity

import (
	"strings"
	"time"
)

// Carrier date layout used by tracking events
const TrackingDateLayout = "02/01/2006"

// TrackingResponse is the carrier's tracking payload
type TrackingResponse struct {
	IsSuccess bool          `json:"IsSuccess"`
	Data      *TrackingData `json:"Data"`
}

type TrackingData struct {
	BillOfLadings []BillOfLading `json:"BillOfLadings"`
}

type BillOfLading struct {
	BillOfLadingNumber  string               `json:"BillOfLadingNumber"`
	GeneralTrackingInfo *GeneralTrackingInfo `json:"GeneralTrackingInfo"`
	ContainersInfo      []ContainerInfo      `json:"ContainersInfo"`
}

type GeneralTrackingInfo struct {
	ShippedFrom     string `json:"ShippedFrom"`
	ShippedTo       string `json:"ShippedTo"`
	PortOfLoad      string `json:"PortOfLoad"`
	PortOfDischarge string `json:"PortOfDischarge"`
}

type ContainerInfo struct {
	ContainerNumber string          `json:"ContainerNumber"`
	Events          []TrackingEvent `json:"Events"`
}

// TrackingEvent is a raw carrier event before its timing is finalized
type TrackingEvent struct {
	Order          int      `json:"Order"`
	Date           *string  `json:"Date"`
	Location       string   `json:"Location"`
	UnLocationCode string   `json:"UnLocationCode"`
	Description    string   `json:"Description"`
	Detail         []string `json:"Detail"`
}

// ToEvent finalizes the raw event. A dated event is effective unless its
// date lies after the day it was fetched on.
func (e TrackingEvent) ToEvent(fetchedAt time.Time) Event {
	return Event{
		Order:          e.Order,
		Location:       e.Location,
		UnLocationCode: e.UnLocationCode,
		Description:    e.Description,
		Detail:         append([]string{}, e.Detail...),
		Timing:         timingFor(e.Date, fetchedAt),
	}
}

func timingFor(date *string, fetchedAt time.Time) EventTiming {
	if date == nil || strings.TrimSpace(*date) == "" {
		return Estimated("")
	}
	value := strings.TrimSpace(*date)

	parsed, err := time.ParseInLocation(TrackingDateLayout, value, fetchedAt.Location())
	if err != nil {
		return Effective(value)
	}
	y, m, d := fetchedAt.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, fetchedAt.Location())
	if parsed.After(today) {
		return Estimated(value)
	}
	return Effective(value)
}

// BuildContainer normalizes a successful tracking response into a container
// with finalized events and shipping status. The first bill of lading and its
// first container are authoritative.
func BuildContainer(resp *TrackingResponse, shipowner Shipowner, fetchedAt time.Time) (*Container, error) {
	if resp == nil || resp.Data == nil {
		return nil, &ValidationError{Field: "Data", Reason: "missing"}
	}
	if len(resp.Data.BillOfLadings) == 0 {
		return nil, &ValidationError{Field: "Data.BillOfLadings", Reason: "empty"}
	}
	bl := resp.Data.BillOfLadings[0]
	if bl.GeneralTrackingInfo == nil {
		return nil, &ValidationError{Field: "GeneralTrackingInfo", Reason: "missing"}
	}
	if len(bl.ContainersInfo) == 0 {
		return nil, &ValidationError{Field: "ContainersInfo", Reason: "empty"}
	}
	info := bl.ContainersInfo[0]
	if info.ContainerNumber == "" {
		return nil, &ValidationError{Field: "ContainerNumber", Reason: "missing"}
	}

	container := &Container{
		Number:                   info.ContainerNumber,
		Shipowner:                shipowner,
		ShippedFrom:              bl.GeneralTrackingInfo.ShippedFrom,
		ShippedTo:                bl.GeneralTrackingInfo.ShippedTo,
		PortOfLoad:               bl.GeneralTrackingInfo.PortOfLoad,
		PortOfDischarge:          bl.GeneralTrackingInfo.PortOfDischarge,
		MasterBillOfLadingNumber: bl.BillOfLadingNumber,
		Events:                   make([]Event, 0, len(info.Events)),
	}
	for _, raw := range info.Events {
		container.AddEvent(raw.ToEvent(fetchedAt))
	}
	container.SetShippingStatus()

	return container, nil
}
