package entity

import "time"

// Poll outcomes
const (
	PollOutcomeSuccess  = "SUCCESS"
	PollOutcomeFailure  = "FAILURE"
	PollOutcomeNotFound = "NOT_FOUND"
	PollOutcomeError    = "ERROR"
)

// PollRun records a single poll attempt made by the dispatcher
type PollRun struct {
	ID              uint      `json:"id"`
	CycleID         string    `json:"cycle_id"`
	ContainerNumber string    `json:"container_number"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Outcome         string    `json:"outcome"`
	ShippingStatus  string    `json:"shipping_status,omitempty"`
	ChangeCount     int       `json:"change_count"`
	ErrorDetail     string    `json:"error_detail,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
