package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var containerNumberPattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{7}$`)

// ValidContainerNumber checks the 4 letters + 7 digits format (e.g. MSCU1234567)
func ValidContainerNumber(number string) bool {
	return containerNumberPattern.MatchString(number)
}

// CreateContainerRequest registers a container for tracking
type CreateContainerRequest struct {
	Number                  string    `json:"number" binding:"required"`
	Shipowner               Shipowner `json:"shipowner" binding:"required"`
	BookingNumber           string    `json:"booking_number,omitempty"`
	HouseBillOfLadingNumber string    `json:"house_bill_of_lading_number,omitempty"`
}

// Validate checks the request fields
func (r CreateContainerRequest) Validate() error {
	if !ValidContainerNumber(r.Number) {
		return &ValidationError{Field: "number", Reason: "must be 4 uppercase letters followed by 7 digits"}
	}
	if !r.Shipowner.Valid() {
		return &ValidationError{Field: "shipowner", Reason: fmt.Sprintf("unsupported shipowner %q", r.Shipowner)}
	}
	return nil
}

// UpdateContainerRequest carries the user-editable references
type UpdateContainerRequest struct {
	BookingNumber           *string `json:"booking_number"`
	HouseBillOfLadingNumber *string `json:"house_bill_of_lading_number"`
}

// EventView is the read model of an event
type EventView struct {
	Order          int      `json:"order"`
	Date           string   `json:"date"`
	Status         string   `json:"status"`
	Location       string   `json:"location"`
	UnLocationCode string   `json:"un_location_code"`
	Description    string   `json:"description"`
	Detail         []string `json:"detail"`
}

// SearchLogView is the read model of a search log
type SearchLogView struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// ContainerView is the read model of a container
type ContainerView struct {
	ID                       string          `json:"id"`
	Number                   string          `json:"number"`
	Shipowner                string          `json:"shipowner"`
	ShippedFrom              string          `json:"shipped_from"`
	ShippedTo                string          `json:"shipped_to"`
	PortOfLoad               string          `json:"port_of_load"`
	PortOfDischarge          string          `json:"port_of_discharge"`
	BookingNumber            string          `json:"booking_number"`
	MasterBillOfLadingNumber string          `json:"master_bill_of_lading_number"`
	HouseBillOfLadingNumber  string          `json:"house_bill_of_lading_number"`
	ShippingStatus           string          `json:"shipping_status"`
	Events                   []EventView     `json:"events"`
	SearchLogs               []SearchLogView `json:"search_logs"`
}

// NewContainerView builds the read model, events ordered by order
func NewContainerView(c *Container) ContainerView {
	view := ContainerView{
		ID:                       c.ID,
		Number:                   c.Number,
		Shipowner:                string(c.Shipowner),
		ShippedFrom:              c.ShippedFrom,
		ShippedTo:                c.ShippedTo,
		PortOfLoad:               c.PortOfLoad,
		PortOfDischarge:          c.PortOfDischarge,
		BookingNumber:            c.BookingNumber,
		MasterBillOfLadingNumber: c.MasterBillOfLadingNumber,
		HouseBillOfLadingNumber:  c.HouseBillOfLadingNumber,
		ShippingStatus:           string(c.ShippingStatus),
		Events:                   []EventView{},
		SearchLogs:               []SearchLogView{},
	}
	for _, e := range c.SortedEvents() {
		view.Events = append(view.Events, EventView{
			Order:          e.Order,
			Date:           e.Timing.Date(),
			Status:         string(e.Status()),
			Location:       e.Location,
			UnLocationCode: e.UnLocationCode,
			Description:    e.Description,
			Detail:         append([]string{}, e.Detail...),
		})
	}
	for _, l := range c.SearchLogs {
		view.SearchLogs = append(view.SearchLogs, SearchLogView{Timestamp: l.Timestamp, Status: string(l.Status)})
	}
	return view
}

// markdownEscaper escapes the characters Telegram Markdown treats as entity
// delimiters
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown makes text safe to embed in a Markdown chat message
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// ToChatText renders the container as a Markdown chat message
func (v ContainerView) ToChatText() string {
	md := EscapeMarkdown

	var b strings.Builder
	fmt.Fprintf(&b, "📦 *Container*: %s (%s)\n", md(v.Number), md(v.Shipowner))
	fmt.Fprintf(&b, "📄 *Bill of Lading*: %s\n", md(v.MasterBillOfLadingNumber))
	if v.BookingNumber != "" {
		fmt.Fprintf(&b, "🔢 *Booking*: %s\n", md(v.BookingNumber))
	}
	fmt.Fprintf(&b, "🌍 *From*: %s ➡️ *To*: %s\n", md(v.ShippedFrom), md(v.ShippedTo))
	fmt.Fprintf(&b, "⚓ *Port of load*: %s\n", md(v.PortOfLoad))
	fmt.Fprintf(&b, "⚓ *Port of discharge*: %s\n", md(v.PortOfDischarge))
	fmt.Fprintf(&b, "🚦 *Status*: %s\n", md(v.ShippingStatus))
	if len(v.Events) == 0 {
		return b.String()
	}
	b.WriteString("📝 *Events*:\n\n")
	for _, e := range v.Events {
		fmt.Fprintf(&b, "📅 %s (%s) - %s\n", md(e.Date), strings.ToLower(e.Status), md(e.Description))
		fmt.Fprintf(&b, "📍 %s \\[%s]\n", md(e.Location), md(e.UnLocationCode))
		if len(e.Detail) > 0 {
			fmt.Fprintf(&b, "ℹ️ %s\n", md(strings.Join(e.Detail, " ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ContainerGridItem is one row of the paginated container grid
type ContainerGridItem struct {
	ID                       string     `json:"id"`
	Number                   string     `json:"number"`
	Shipowner                string     `json:"shipowner"`
	MasterBillOfLadingNumber string     `json:"master_bill_of_lading_number"`
	BookingNumber            string     `json:"booking_number"`
	Description              string     `json:"description"`
	LastUpdate               *time.Time `json:"last_update"`
	ShippingStatus           string     `json:"shipping_status"`
}

// NewContainerGridItem summarizes a container by its latest event and search
func NewContainerGridItem(c *Container) ContainerGridItem {
	item := ContainerGridItem{
		ID:                       c.ID,
		Number:                   c.Number,
		Shipowner:                string(c.Shipowner),
		MasterBillOfLadingNumber: c.MasterBillOfLadingNumber,
		BookingNumber:            c.BookingNumber,
		ShippingStatus:           string(c.ShippingStatus),
	}
	if last, ok := c.LastEvent(); ok {
		item.Description = last.Description
	}
	if log, ok := c.LastSearchLog(); ok {
		ts := log.Timestamp
		item.LastUpdate = &ts
	}
	return item
}

// GridPaginatedResponse is a page of grid rows
type GridPaginatedResponse struct {
	Items    []ContainerGridItem `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// DeleteContainerResult acknowledges a deletion
type DeleteContainerResult struct {
	Message     string `json:"message"`
	ContainerID string `json:"container_id"`
}
