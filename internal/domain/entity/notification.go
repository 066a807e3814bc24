package entity

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType tells subscribers why they are notified
type NotificationType string

const (
	NotificationContainerChanged  NotificationType = "container.changed"
	NotificationContainerFinished NotificationType = "container.finished"
)

// Notification is fanned out to every channel after a poll changed a container
type Notification struct {
	Type           NotificationType `json:"type"`
	ContainerID    string           `json:"containerId"`
	Number         string           `json:"number"`
	Shipowner      Shipowner        `json:"shipowner"`
	ShippingStatus ShippingStatus   `json:"shippingStatus"`
	Changes        []string         `json:"changes"`
	Container      ContainerView    `json:"container"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

// NewNotification describes the changes applied to a container
func NewNotification(c *Container, changes []string, at time.Time) *Notification {
	kind := NotificationContainerChanged
	if c.IsFinished() {
		kind = NotificationContainerFinished
	}
	return &Notification{
		Type:           kind,
		ContainerID:    c.ID,
		Number:         c.Number,
		Shipowner:      c.Shipowner,
		ShippingStatus: c.ShippingStatus,
		Changes:        changes,
		Container:      NewContainerView(c),
		OccurredAt:     at,
	}
}

// Subject is a one-line headline for the notification
func (n *Notification) Subject() string {
	if n.Type == NotificationContainerFinished {
		return fmt.Sprintf("Container %s finished", n.Number)
	}
	return fmt.Sprintf("Container %s updated", n.Number)
}

// Text renders the headline, the change list and the container as Markdown
func (n *Notification) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 *%s*\n", EscapeMarkdown(n.Subject()))
	for _, c := range n.Changes {
		fmt.Fprintf(&b, "• %s\n", EscapeMarkdown(c))
	}
	b.WriteString("\n")
	b.WriteString(n.Container.ToChatText())
	return b.String()
}
