package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
)

func cloneContainer(c *entity.Container) *entity.Container {
	cp := *c
	cp.Events = make([]entity.Event, len(c.Events))
	for i, e := range c.Events {
		e.Detail = append([]string(nil), e.Detail...)
		cp.Events[i] = e
	}
	cp.SearchLogs = append([]entity.SearchLog(nil), c.SearchLogs...)
	return &cp
}

type fakeContainerRepo struct {
	mu         sync.Mutex
	containers map[string]*entity.Container
	nextID     int
	getErr     error
	updateErr  error
	updates    int
}

func newFakeContainerRepo() *fakeContainerRepo {
	return &fakeContainerRepo{containers: make(map[string]*entity.Container)}
}

func (r *fakeContainerRepo) GetByNumberAndStatus(_ context.Context, number string, status entity.ShippingStatus) (*entity.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, c := range r.sorted() {
		if c.Number == number && c.ShippingStatus == status {
			return cloneContainer(c), nil
		}
	}
	return nil, nil
}

func (r *fakeContainerRepo) GetAllByNumber(_ context.Context, number string) ([]*entity.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Container
	for _, c := range r.sorted() {
		if c.Number == number {
			out = append(out, cloneContainer(c))
		}
	}
	return out, nil
}

func (r *fakeContainerRepo) Save(_ context.Context, c *entity.Container) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.containers {
		if existing.Number == c.Number && existing.Shipowner == c.Shipowner &&
			!existing.IsFinished() && !c.IsFinished() {
			return entity.ErrAlreadyTracked
		}
	}
	r.nextID++
	c.ID = fmt.Sprintf("c%03d", r.nextID)
	r.containers[c.ID] = cloneContainer(c)
	return nil
}

func (r *fakeContainerRepo) Update(_ context.Context, c *entity.Container) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		return false, entity.ErrMissingID
	}
	if r.updateErr != nil {
		return false, r.updateErr
	}
	if _, ok := r.containers[c.ID]; !ok {
		return false, nil
	}
	r.updates++
	r.containers[c.ID] = cloneContainer(c)
	return true, nil
}

func (r *fakeContainerRepo) GetByID(_ context.Context, id string) (*entity.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.containers[id]
	if !ok {
		return nil, nil
	}
	return cloneContainer(c), nil
}

func (r *fakeContainerRepo) FindAllForGrid(_ context.Context, search string, page, pageSize int) ([]*entity.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.matching(search)
	from := (page - 1) * pageSize
	if from >= len(matched) {
		return []*entity.Container{}, nil
	}
	to := from + pageSize
	if to > len(matched) {
		to = len(matched)
	}
	return matched[from:to], nil
}

func (r *fakeContainerRepo) CountAllForGrid(_ context.Context, search string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(search))), nil
}

func (r *fakeContainerRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.containers[id]; !ok {
		return false, nil
	}
	delete(r.containers, id)
	return true, nil
}

func (r *fakeContainerRepo) put(c *entity.Container) *entity.Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		r.nextID++
		c.ID = fmt.Sprintf("c%03d", r.nextID)
	}
	r.containers[c.ID] = cloneContainer(c)
	return c
}

func (r *fakeContainerRepo) stored(id string) *entity.Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.containers[id]
}

func (r *fakeContainerRepo) sorted() []*entity.Container {
	out := make([]*entity.Container, 0, len(r.containers))
	for _, c := range r.containers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeContainerRepo) matching(search string) []*entity.Container {
	var out []*entity.Container
	for _, c := range r.sorted() {
		if search == "" || c.Number == search || c.MasterBillOfLadingNumber == search {
			out = append(out, cloneContainer(c))
		}
	}
	return out
}

type fakeSchedulingRepo struct {
	mu        sync.Mutex
	stored    *entity.SearchScheduling
	conflicts int
	saves     int
	updates   int
}

func copyScheduling(s *entity.SearchScheduling) *entity.SearchScheduling {
	cp := *s
	cp.Containers = append([]entity.ContainerSchedule{}, s.Containers...)
	return &cp
}

func (r *fakeSchedulingRepo) Get(context.Context) (*entity.SearchScheduling, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored == nil {
		return nil, nil
	}
	return copyScheduling(r.stored), nil
}

func (r *fakeSchedulingRepo) Save(_ context.Context, s *entity.SearchScheduling) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored != nil {
		return entity.ErrScheduleConflict
	}
	r.saves++
	s.Version = 1
	r.stored = copyScheduling(s)
	return nil
}

func (r *fakeSchedulingRepo) Update(_ context.Context, s *entity.SearchScheduling) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts > 0 {
		r.conflicts--
		r.stored.Version++
		return entity.ErrScheduleConflict
	}
	if r.stored == nil || r.stored.Version != s.Version {
		return entity.ErrScheduleConflict
	}
	r.updates++
	s.Version++
	r.stored = copyScheduling(s)
	return nil
}

func (r *fakeSchedulingRepo) slots() map[string]entity.TimeOfDay {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]entity.TimeOfDay)
	if r.stored == nil {
		return out
	}
	for _, cs := range r.stored.Containers {
		out[cs.ContainerNumber] = cs.SearchTime
	}
	return out
}

type fakeCarrierRepo struct {
	mu        sync.Mutex
	responses map[string]*entity.TrackingResponse
	errs      map[string]error
	panics    map[string]bool
	calls     []string
	onFetch   func(number string)
}

func newFakeCarrierRepo() *fakeCarrierRepo {
	return &fakeCarrierRepo{
		responses: make(map[string]*entity.TrackingResponse),
		errs:      make(map[string]error),
		panics:    make(map[string]bool),
	}
}

func (r *fakeCarrierRepo) GetTrackingInfo(_ context.Context, number string) (*entity.TrackingResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, number)
	if r.onFetch != nil {
		r.onFetch(number)
	}
	if r.panics[number] {
		panic("carrier exploded")
	}
	if err := r.errs[number]; err != nil {
		return nil, err
	}
	if resp, ok := r.responses[number]; ok {
		return resp, nil
	}
	return &entity.TrackingResponse{IsSuccess: false}, nil
}

type fakePollRunRepo struct {
	mu   sync.Mutex
	runs []*entity.PollRun
}

func (r *fakePollRunRepo) Create(_ context.Context, run *entity.PollRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uint(len(r.runs) + 1)
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakePollRunRepo) FindByContainerNumber(_ context.Context, number string, limit int) ([]*entity.PollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PollRun
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.runs[i].ContainerNumber == number {
			out = append(out, r.runs[i])
		}
	}
	return out, nil
}

func (r *fakePollRunRepo) FindByCycleID(_ context.Context, cycleID string) ([]*entity.PollRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PollRun
	for _, run := range r.runs {
		if run.CycleID == cycleID {
			out = append(out, run)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	notifications []*entity.Notification
}

func (n *fakeNotifier) Register(repository.NotificationRepository) {}

func (n *fakeNotifier) Broadcast(_ context.Context, notification *entity.Notification) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
	return 1
}

func strPtr(s string) *string { return &s }

// trackingFor builds a successful carrier response for one container
func trackingFor(number, masterBL string, events ...entity.TrackingEvent) *entity.TrackingResponse {
	return &entity.TrackingResponse{
		IsSuccess: true,
		Data: &entity.TrackingData{
			BillOfLadings: []entity.BillOfLading{{
				BillOfLadingNumber: masterBL,
				GeneralTrackingInfo: &entity.GeneralTrackingInfo{
					ShippedFrom:     "SANTOS, BR",
					ShippedTo:       "ROTTERDAM, NL",
					PortOfLoad:      "SANTOS, BR",
					PortOfDischarge: "ROTTERDAM, NL",
				},
				ContainersInfo: []entity.ContainerInfo{{
					ContainerNumber: number,
					Events:          events,
				}},
			}},
		},
	}
}
