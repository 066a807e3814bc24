package usecase

import (
	"context"
	"errors"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
	"track-wise-service/pkg/logger"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxPollRuns     = 50
)

// ContainerService handles container registration and maintenance
type ContainerService struct {
	containerRepo     repository.ContainerRepository
	carrierRepo       repository.CarrierRepository
	pollRunRepo       repository.PollRunRepository
	schedulingService *SearchSchedulingService
	logger            logger.Logger
	now               func() time.Time
}

// NewContainerService creates a new container service
func NewContainerService(
	containerRepo repository.ContainerRepository,
	carrierRepo repository.CarrierRepository,
	pollRunRepo repository.PollRunRepository,
	schedulingService *SearchSchedulingService,
	logger logger.Logger,
) *ContainerService {
	return &ContainerService{
		containerRepo:     containerRepo,
		carrierRepo:       carrierRepo,
		pollRunRepo:       pollRunRepo,
		schedulingService: schedulingService,
		logger:            logger.With("component", "container_service"),
		now:               time.Now,
	}
}

// RegisterContainer validates the container at the carrier, stores it and
// allocates a polling slot
func (s *ContainerService) RegisterContainer(ctx context.Context, req entity.CreateContainerRequest) (*entity.Container, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	previous, err := s.containerRepo.GetAllByNumber(ctx, req.Number)
	if err != nil {
		return nil, unexpected("load registered containers", err)
	}
	for _, c := range previous {
		if c.Shipowner == req.Shipowner && !c.IsFinished() {
			return nil, entity.ErrAlreadyTracked
		}
	}

	resp, err := s.carrierRepo.GetTrackingInfo(ctx, req.Number)
	if err != nil {
		return nil, unexpected("fetch tracking info", err)
	}
	if !resp.IsSuccess {
		return nil, entity.ErrNotFoundAtCarrier
	}

	now := s.now()
	container, err := entity.BuildContainer(resp, req.Shipowner, now)
	if err != nil {
		return nil, unexpected("build container", err)
	}

	for _, c := range previous {
		if c.Shipowner == req.Shipowner && c.MasterBillOfLadingNumber == container.MasterBillOfLadingNumber {
			return nil, entity.ErrAlreadyTracked
		}
	}

	container.BookingNumber = req.BookingNumber
	container.HouseBillOfLadingNumber = req.HouseBillOfLadingNumber
	container.AddSearchLog(entity.SearchStatusSuccess, now)
	container.CreatedAt = now
	container.UpdatedAt = now

	if err := s.containerRepo.Save(ctx, container); err != nil {
		return nil, unexpected("save container", err)
	}

	s.logger.Info("Container registered",
		"containerId", container.ID,
		"containerNumber", container.Number,
		"shipowner", container.Shipowner,
		"shippingStatus", container.ShippingStatus)

	if container.IsFinished() {
		return container, nil
	}

	// Every active container holds a slot
	if _, err := s.schedulingService.AddContainerSchedule(ctx, container.Number); err != nil {
		if _, delErr := s.containerRepo.DeleteByID(ctx, container.ID); delErr != nil {
			s.logger.Error("Failed to roll back unscheduled container",
				"containerId", container.ID,
				"containerNumber", container.Number,
				"error", delErr)
		}
		return nil, unexpected("schedule container", err)
	}

	return container, nil
}

// GetContainerByID returns a stored container
func (s *ContainerService) GetContainerByID(ctx context.Context, id string) (*entity.Container, error) {
	container, err := s.containerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, unexpected("get container", err)
	}
	if container == nil {
		return nil, entity.ErrContainerNotFound
	}
	return container, nil
}

// GetContainerByNumber returns the tracked registration of a number, or the
// most recent one when all of them finished
func (s *ContainerService) GetContainerByNumber(ctx context.Context, number string) (*entity.Container, error) {
	containers, err := s.containerRepo.GetAllByNumber(ctx, number)
	if err != nil {
		return nil, unexpected("get containers by number", err)
	}
	if len(containers) == 0 {
		return nil, entity.ErrContainerNotFound
	}

	latest := containers[0]
	for _, c := range containers {
		if !c.IsFinished() {
			return c, nil
		}
		if c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	return latest, nil
}

// GetPaginatedGrid lists containers matching search, one page at a time.
// Pages start at 1.
func (s *ContainerService) GetPaginatedGrid(ctx context.Context, search string, page, pageSize int) (*entity.GridPaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	containers, err := s.containerRepo.FindAllForGrid(ctx, search, page, pageSize)
	if err != nil {
		return nil, unexpected("list containers", err)
	}
	total, err := s.containerRepo.CountAllForGrid(ctx, search)
	if err != nil {
		return nil, unexpected("count containers", err)
	}

	items := make([]entity.ContainerGridItem, 0, len(containers))
	for _, c := range containers {
		items = append(items, entity.NewContainerGridItem(c))
	}

	return &entity.GridPaginatedResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// DeleteContainerByID removes a container. Its slot is released unless
// another container with the same number is still being tracked.
func (s *ContainerService) DeleteContainerByID(ctx context.Context, id string) (*entity.DeleteContainerResult, error) {
	container, err := s.GetContainerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.containerRepo.DeleteByID(ctx, id)
	if err != nil {
		return nil, unexpected("delete container", err)
	}
	if !deleted {
		return nil, entity.ErrContainerNotFound
	}

	if !container.IsFinished() {
		active, err := s.containerRepo.GetByNumberAndStatus(ctx, container.Number, entity.ShippingStatusProcessing)
		if err != nil {
			return nil, unexpected("check remaining containers", err)
		}
		if active == nil {
			if err := s.schedulingService.RemoveContainerSchedule(ctx, container.Number); err != nil {
				return nil, unexpected("release container slot", err)
			}
		}
	}

	s.logger.Info("Container deleted", "containerId", id, "containerNumber", container.Number)

	return &entity.DeleteContainerResult{
		Message:     "Container deleted successfully",
		ContainerID: id,
	}, nil
}

// UpdateContainer changes the user-provided references of a container
func (s *ContainerService) UpdateContainer(ctx context.Context, id string, req entity.UpdateContainerRequest) (*entity.Container, error) {
	container, err := s.GetContainerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.BookingNumber != nil {
		container.BookingNumber = *req.BookingNumber
	}
	if req.HouseBillOfLadingNumber != nil {
		container.HouseBillOfLadingNumber = *req.HouseBillOfLadingNumber
	}
	container.UpdatedAt = s.now()

	updated, err := s.containerRepo.Update(ctx, container)
	if err != nil {
		return nil, unexpected("update container", err)
	}
	if !updated {
		return nil, entity.ErrContainerNotFound
	}
	return container, nil
}

// ListPollRuns returns the latest poll attempts for a container number
func (s *ContainerService) ListPollRuns(ctx context.Context, containerNumber string) ([]*entity.PollRun, error) {
	runs, err := s.pollRunRepo.FindByContainerNumber(ctx, containerNumber, maxPollRuns)
	if err != nil {
		return nil, unexpected("list poll runs", err)
	}
	return runs, nil
}

// ListCyclePollRuns returns every poll attempt of one dispatch cycle
func (s *ContainerService) ListCyclePollRuns(ctx context.Context, cycleID string) ([]*entity.PollRun, error) {
	runs, err := s.pollRunRepo.FindByCycleID(ctx, cycleID)
	if err != nil {
		return nil, unexpected("list cycle poll runs", err)
	}
	return runs, nil
}

// unexpected wraps err unless it already is a known kind
func unexpected(op string, err error) error {
	var validation *entity.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, entity.ErrAlreadyTracked),
		errors.Is(err, entity.ErrNotFoundAtCarrier),
		errors.Is(err, entity.ErrContainerNotFound),
		errors.Is(err, entity.ErrMissingID):
		return err
	}
	return &entity.UnexpectedError{Op: op, Err: err}
}
