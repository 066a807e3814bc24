package usecase

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
	"track-wise-service/pkg/logger"
	"track-wise-service/pkg/metrics"

	"github.com/google/uuid"
)

// CycleReport summarizes one dispatch cycle
type CycleReport struct {
	CycleID     string
	WindowStart time.Time
	WindowEnd   time.Time
	Outcomes    map[string]int
	Polled      []string
}

// PollDispatcher wakes at the top of every hour and polls each container
// whose slot falls inside that hour, one at a time and in slot order.
type PollDispatcher struct {
	schedulingService *SearchSchedulingService
	reconciler        *ContainerReconciler
	containerRepo     repository.ContainerRepository
	carrierRepo       repository.CarrierRepository
	pollRunRepo       repository.PollRunRepository
	notifier          NotificationRouter
	metrics           *metrics.Metrics
	logger            logger.Logger
	pollTimeout       time.Duration
	now               func() time.Time
}

// NewPollDispatcher creates a new poll dispatcher
func NewPollDispatcher(
	schedulingService *SearchSchedulingService,
	reconciler *ContainerReconciler,
	containerRepo repository.ContainerRepository,
	carrierRepo repository.CarrierRepository,
	pollRunRepo repository.PollRunRepository,
	notifier NotificationRouter,
	metrics *metrics.Metrics,
	logger logger.Logger,
	pollTimeout time.Duration,
) *PollDispatcher {
	return &PollDispatcher{
		schedulingService: schedulingService,
		reconciler:        reconciler,
		containerRepo:     containerRepo,
		carrierRepo:       carrierRepo,
		pollRunRepo:       pollRunRepo,
		notifier:          notifier,
		metrics:           metrics,
		logger:            logger.With("component", "poll_dispatcher"),
		pollTimeout:       pollTimeout,
		now:               time.Now,
	}
}

// Start runs a cycle at the top of every hour until ctx is cancelled.
// A missed hour is not caught up.
func (d *PollDispatcher) Start(ctx context.Context) {
	timer := time.NewTimer(time.Until(nextHour(d.now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Poll dispatcher stopped")
			return
		case <-timer.C:
			if _, err := d.RunCycle(ctx, d.now()); err != nil && !errors.Is(err, context.Canceled) {
				d.metrics.ErrorsCount.WithLabelValues("dispatch_cycle").Inc()
				d.logger.Error("Error running search routine", "error", err)
			}
			wait := time.Until(nextHour(d.now()))
			d.logger.Info("Waiting for next search routine", "wait", wait.Round(time.Second).String())
			timer.Reset(wait)
		}
	}
}

// RunCycle polls every container scheduled within the hour containing at
func (d *PollDispatcher) RunCycle(ctx context.Context, at time.Time) (*CycleReport, error) {
	start := hourStart(at)
	end := start.Add(time.Hour - time.Second)

	report := &CycleReport{
		CycleID:     uuid.NewString(),
		WindowStart: start,
		WindowEnd:   end,
		Outcomes:    make(map[string]int),
	}
	log := d.logger.With("cycleId", report.CycleID)

	log.Info("Searching containers scheduled in window",
		"from", start.Format("15:04:05"),
		"to", end.Format("15:04:05"))

	scheduling, err := d.schedulingService.GetSearchScheduling(ctx)
	if err != nil {
		return report, err
	}
	if len(scheduling.Containers) == 0 {
		log.Info("No schedule this hour")
		return report, nil
	}

	due := scheduling.DueBetween(entity.TimeOfDayOf(start), entity.TimeOfDayOf(end))
	if len(due) == 0 {
		log.Info("No schedule this hour")
		return report, nil
	}

	queue := newPollQueue()
	for _, cs := range due {
		queue.push(pollTask{wakeAt: cs.SearchTime.On(start), schedule: cs})
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for queue.Len() > 0 {
		task := queue.pop()

		if wait := task.wakeAt.Sub(d.now()); wait > 0 {
			log.Debug("Waiting for container slot",
				"containerNumber", task.schedule.ContainerNumber,
				"wait", wait.Round(time.Second).String())
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-timer.C:
			}
		}

		outcome := d.PollContainer(ctx, report.CycleID, task.schedule, task.wakeAt)
		report.Outcomes[outcome]++
		report.Polled = append(report.Polled, task.schedule.ContainerNumber)
	}

	log.Info("Search routine finished", "polled", len(report.Polled), "outcomes", report.Outcomes)
	return report, nil
}

// PollContainer fetches fresh carrier data for one scheduled container and
// reconciles it. Failures are recorded and never propagate to the cycle.
func (d *PollDispatcher) PollContainer(ctx context.Context, cycleID string, cs entity.ContainerSchedule, scheduledAt time.Time) (outcome string) {
	run := &entity.PollRun{
		CycleID:         cycleID,
		ContainerNumber: cs.ContainerNumber,
		ScheduledAt:     scheduledAt,
		StartedAt:       d.now(),
	}
	log := d.logger.With("cycleId", cycleID, "containerNumber", cs.ContainerNumber)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while polling container", "panic", r)
			outcome = entity.PollOutcomeError
			run.ErrorDetail = fmt.Sprint(r)
		}
		run.Outcome = outcome
		run.FinishedAt = d.now()
		d.metrics.PollsTotal.WithLabelValues(outcome).Inc()
		d.metrics.PollDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
		if err := d.pollRunRepo.Create(ctx, run); err != nil {
			log.Warn("Failed to record poll run", "error", err)
		}
	}()

	log.Info("Executing search for container")

	existing, err := d.containerRepo.GetByNumberAndStatus(ctx, cs.ContainerNumber, entity.ShippingStatusProcessing)
	if err != nil {
		log.Error("Failed to load container", "error", err)
		run.ErrorDetail = err.Error()
		return entity.PollOutcomeError
	}
	if existing == nil {
		log.Warn("Container not found during poll, skipping", "error", entity.ErrContainerNotFound)
		run.ErrorDetail = entity.ErrContainerNotFound.Error()
		// Nothing is tracked under this number any more, so the slot is stale
		if err := d.schedulingService.RemoveContainerSchedule(ctx, cs.ContainerNumber); err != nil {
			log.Error("Failed to release stale container slot", "error", err)
		}
		return entity.PollOutcomeNotFound
	}
	log = log.With("containerId", existing.ID)

	fetched, err := d.fetch(ctx, existing)
	if err != nil {
		log.Warn("Search failed", "error", err)
		run.ErrorDetail = err.Error()
		existing.AddSearchLog(entity.SearchStatusFailure, d.now())
		if ok, err := d.containerRepo.Update(ctx, existing); err != nil {
			log.Error("Failed to record failed search", "error", err)
		} else if !ok {
			log.Warn("Container disappeared before the failed search was recorded")
		}
		run.ShippingStatus = string(existing.ShippingStatus)
		return entity.PollOutcomeFailure
	}

	updated, changes, err := d.reconciler.Reconcile(ctx, existing, fetched)
	if err != nil {
		log.Error("Failed to reconcile container", "error", err)
		run.ErrorDetail = err.Error()
		return entity.PollOutcomeError
	}
	run.ChangeCount = len(changes)
	run.ShippingStatus = string(updated.ShippingStatus)

	if len(changes) == 0 {
		log.Info("No changes detected in container information")
	} else {
		d.metrics.ChangesDetected.Add(float64(len(changes)))
		for _, change := range changes {
			log.Info("Container change detected", "kind", change.Kind, "change", change.String())
		}
	}

	if len(changes) > 0 || updated.IsFinished() {
		d.notifier.Broadcast(ctx, entity.NewNotification(updated, ChangeDescriptions(changes), d.now()))
	}

	if updated.IsFinished() {
		log.Info("Container tracking finished, releasing slot")
		if err := d.schedulingService.RemoveContainerSchedule(ctx, updated.Number); err != nil {
			log.Error("Failed to release container slot", "error", err)
		}
	}

	return entity.PollOutcomeSuccess
}

// fetch asks the carrier for fresh data under the poll timeout
func (d *PollDispatcher) fetch(ctx context.Context, existing *entity.Container) (*entity.Container, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, d.pollTimeout)
	defer cancel()

	resp, err := d.carrierRepo.GetTrackingInfo(fetchCtx, existing.Number)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess {
		return nil, entity.ErrCarrierUnavailable
	}
	return entity.BuildContainer(resp, existing.Shipowner, d.now())
}

func hourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func nextHour(t time.Time) time.Time {
	return hourStart(t).Add(time.Hour)
}

// pollTask is a container waiting for its slot
type pollTask struct {
	wakeAt   time.Time
	schedule entity.ContainerSchedule
	seq      int
}

// pollQueue is a min-heap of tasks by wake time, ties in insertion order
type pollQueue struct {
	tasks []pollTask
	next  int
}

func newPollQueue() *pollQueue {
	q := &pollQueue{}
	heap.Init(q)
	return q
}

func (q *pollQueue) push(t pollTask) {
	t.seq = q.next
	q.next++
	heap.Push(q, t)
}

func (q *pollQueue) pop() pollTask {
	return heap.Pop(q).(pollTask)
}

func (q *pollQueue) Len() int { return len(q.tasks) }

func (q *pollQueue) Less(i, j int) bool {
	if q.tasks[i].wakeAt.Equal(q.tasks[j].wakeAt) {
		return q.tasks[i].seq < q.tasks[j].seq
	}
	return q.tasks[i].wakeAt.Before(q.tasks[j].wakeAt)
}

func (q *pollQueue) Swap(i, j int) { q.tasks[i], q.tasks[j] = q.tasks[j], q.tasks[i] }

func (q *pollQueue) Push(x any) { q.tasks = append(q.tasks, x.(pollTask)) }

func (q *pollQueue) Pop() any {
	old := q.tasks
	n := len(old)
	t := old[n-1]
	q.tasks = old[:n-1]
	return t
}
