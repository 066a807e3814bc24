package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
	"track-wise-service/pkg/logger"
)

// ChangeKind classifies a detected change
type ChangeKind string

const (
	ChangeField        ChangeKind = "field"
	ChangeEventAdded   ChangeKind = "added"
	ChangeEventRemoved ChangeKind = "removed"
	ChangeEventUpdated ChangeKind = "updated"
)

// Change is one difference applied to a stored container
type Change struct {
	Kind        ChangeKind
	Field       string
	Order       int
	Description string
}

func (c Change) String() string {
	return c.Description
}

// ChangeDescriptions renders changes in order
func ChangeDescriptions(changes []Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.String())
	}
	return out
}

// ContainerReconciler applies freshly fetched carrier data to stored containers
type ContainerReconciler struct {
	containerRepo repository.ContainerRepository
	logger        logger.Logger
	now           func() time.Time
}

// NewContainerReconciler creates a new container reconciler
func NewContainerReconciler(containerRepo repository.ContainerRepository, logger logger.Logger) *ContainerReconciler {
	return &ContainerReconciler{
		containerRepo: containerRepo,
		logger:        logger.With("component", "reconciler"),
		now:           time.Now,
	}
}

// Reconcile mutates existing to match fetched, records a successful search,
// recomputes the shipping status and replaces the stored document.
func (r *ContainerReconciler) Reconcile(ctx context.Context, existing, fetched *entity.Container) (*entity.Container, []Change, error) {
	if existing.ID == "" {
		return nil, nil, entity.ErrMissingID
	}

	changes := ApplyChanges(existing, fetched)
	existing.AddSearchLog(entity.SearchStatusSuccess, r.now())
	existing.SetShippingStatus()

	updated, err := r.containerRepo.Update(ctx, existing)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update container %s: %w", existing.Number, err)
	}
	if !updated {
		return nil, nil, fmt.Errorf("update container %s: %w", existing.ID, entity.ErrContainerNotFound)
	}

	r.logger.Debug("Container reconciled",
		"containerId", existing.ID,
		"containerNumber", existing.Number,
		"changes", len(changes),
		"shippingStatus", existing.ShippingStatus)

	return existing, changes, nil
}

// ApplyChanges copies differing scalar fields and events from fetched onto
// existing and returns what changed. Events are matched by order only.
func ApplyChanges(existing, fetched *entity.Container) []Change {
	var changes []Change

	fields := []struct {
		name    string
		current *string
		next    string
	}{
		{"master_bill_of_lading_number", &existing.MasterBillOfLadingNumber, fetched.MasterBillOfLadingNumber},
		{"shipped_from", &existing.ShippedFrom, fetched.ShippedFrom},
		{"shipped_to", &existing.ShippedTo, fetched.ShippedTo},
		{"port_of_load", &existing.PortOfLoad, fetched.PortOfLoad},
		{"port_of_discharge", &existing.PortOfDischarge, fetched.PortOfDischarge},
	}
	for _, f := range fields {
		if *f.current == f.next {
			continue
		}
		changes = append(changes, Change{
			Kind:        ChangeField,
			Field:       f.name,
			Description: fmt.Sprintf("%s changed: '%s' -> '%s'", f.name, *f.current, f.next),
		})
		*f.current = f.next
	}

	oldEvents := eventsByOrder(existing.Events)
	newEvents := eventsByOrder(fetched.Events)

	var added, removed, common []int
	for order := range newEvents {
		if _, ok := oldEvents[order]; ok {
			common = append(common, order)
		} else {
			added = append(added, order)
		}
	}
	for order := range oldEvents {
		if _, ok := newEvents[order]; !ok {
			removed = append(removed, order)
		}
	}
	sort.Ints(added)
	sort.Ints(removed)
	sort.Ints(common)

	for _, order := range added {
		event := newEvents[order]
		existing.AddEvent(event)
		changes = append(changes, Change{
			Kind:        ChangeEventAdded,
			Order:       order,
			Description: fmt.Sprintf("event %d added: %s at %s (%s %s)", order, event.Description, event.Location, strings.ToLower(string(event.Status())), event.Timing.Date()),
		})
	}

	for _, order := range removed {
		event := oldEvents[order]
		existing.RemoveEventByOrder(order)
		changes = append(changes, Change{
			Kind:        ChangeEventRemoved,
			Order:       order,
			Description: fmt.Sprintf("event %d removed: %s at %s", order, event.Description, event.Location),
		})
	}

	for _, order := range common {
		oldEvent, newEvent := oldEvents[order], newEvents[order]
		if oldEvent.SameFields(newEvent) {
			continue
		}
		existing.UpdateEvent(order, newEvent.Fields())
		changes = append(changes, Change{
			Kind:        ChangeEventUpdated,
			Order:       order,
			Description: fmt.Sprintf("event %d updated: %s", order, strings.Join(eventDiff(oldEvent, newEvent), "; ")),
		})
	}

	return changes
}

func eventsByOrder(events []entity.Event) map[int]entity.Event {
	byOrder := make(map[int]entity.Event, len(events))
	for _, e := range events {
		if _, exists := byOrder[e.Order]; !exists {
			byOrder[e.Order] = e
		}
	}
	return byOrder
}

func eventDiff(prev, next entity.Event) []string {
	var diff []string
	if prev.Timing != next.Timing {
		diff = append(diff, fmt.Sprintf("date '%s' (%s) -> '%s' (%s)",
			prev.Timing.Date(), prev.Status(), next.Timing.Date(), next.Status()))
	}
	if prev.Location != next.Location {
		diff = append(diff, fmt.Sprintf("location '%s' -> '%s'", prev.Location, next.Location))
	}
	if prev.UnLocationCode != next.UnLocationCode {
		diff = append(diff, fmt.Sprintf("code '%s' -> '%s'", prev.UnLocationCode, next.UnLocationCode))
	}
	if prev.Description != next.Description {
		diff = append(diff, fmt.Sprintf("description '%s' -> '%s'", prev.Description, next.Description))
	}
	if len(diff) == 0 || prev.DetailText() != next.DetailText() {
		diff = append(diff, fmt.Sprintf("detail '%s' -> '%s'", strings.Join(prev.Detail, " | "), strings.Join(next.Detail, " | ")))
	}
	return diff
}
