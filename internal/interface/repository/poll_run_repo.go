package repository

import (
	"context"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormPollRunRepository implements the PollRunRepository interface
type GormPollRunRepository struct {
	db *gorm.DB
}

// NewGormPollRunRepository creates a new GORM poll run repository
func NewGormPollRunRepository(db *gorm.DB) repository.PollRunRepository {
	return &GormPollRunRepository{
		db: db,
	}
}

// PollRuns GORM model for database mapping
type PollRuns struct {
	ID              uint      `gorm:"primaryKey"`
	CycleID         string    `gorm:"column:cycle_id;index"`
	ContainerNumber string    `gorm:"column:container_number;index"`
	ScheduledAt     time.Time `gorm:"column:scheduled_at"`
	StartedAt       time.Time `gorm:"column:started_at"`
	FinishedAt      time.Time `gorm:"column:finished_at"`
	Outcome         string    `gorm:"column:outcome"`
	ShippingStatus  string    `gorm:"column:shipping_status"`
	ChangeCount     int       `gorm:"column:change_count"`
	ErrorDetail     string    `gorm:"column:error_detail"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name
func (PollRuns) TableName() string {
	return "poll_runs"
}

func toPollRunEntity(m PollRuns) *entity.PollRun {
	return &entity.PollRun{
		ID:              m.ID,
		CycleID:         m.CycleID,
		ContainerNumber: m.ContainerNumber,
		ScheduledAt:     m.ScheduledAt,
		StartedAt:       m.StartedAt,
		FinishedAt:      m.FinishedAt,
		Outcome:         m.Outcome,
		ShippingStatus:  m.ShippingStatus,
		ChangeCount:     m.ChangeCount,
		ErrorDetail:     m.ErrorDetail,
		CreatedAt:       m.CreatedAt,
	}
}

// Create inserts a new poll run into the database
func (r *GormPollRunRepository) Create(ctx context.Context, run *entity.PollRun) error {
	model := PollRuns{
		CycleID:         run.CycleID,
		ContainerNumber: run.ContainerNumber,
		ScheduledAt:     run.ScheduledAt,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
		Outcome:         run.Outcome,
		ShippingStatus:  run.ShippingStatus,
		ChangeCount:     run.ChangeCount,
		ErrorDetail:     run.ErrorDetail,
	}

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return result.Error
	}

	// Update the entity with the generated ID
	run.ID = model.ID
	run.CreatedAt = model.CreatedAt

	return nil
}

// FindByContainerNumber returns the latest poll runs of a container
func (r *GormPollRunRepository) FindByContainerNumber(ctx context.Context, containerNumber string, limit int) ([]*entity.PollRun, error) {
	var runs []PollRuns
	result := r.db.WithContext(ctx).
		Where("container_number = ?", containerNumber).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs)

	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.PollRun, 0, len(runs))
	for _, run := range runs {
		entities = append(entities, toPollRunEntity(run))
	}
	return entities, nil
}

// FindByCycleID returns every poll run of one dispatch cycle in poll order
func (r *GormPollRunRepository) FindByCycleID(ctx context.Context, cycleID string) ([]*entity.PollRun, error) {
	var runs []PollRuns
	result := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("started_at ASC").
		Find(&runs)

	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.PollRun, 0, len(runs))
	for _, run := range runs {
		entities = append(entities, toPollRunEntity(run))
	}
	return entities, nil
}

// NopPollRunRepository discards poll runs when no audit database is configured
type NopPollRunRepository struct{}

// NewNopPollRunRepository creates a poll run repository that stores nothing
func NewNopPollRunRepository() repository.PollRunRepository {
	return NopPollRunRepository{}
}

func (NopPollRunRepository) Create(context.Context, *entity.PollRun) error {
	return nil
}

func (NopPollRunRepository) FindByContainerNumber(context.Context, string, int) ([]*entity.PollRun, error) {
	return []*entity.PollRun{}, nil
}

func (NopPollRunRepository) FindByCycleID(context.Context, string) ([]*entity.PollRun, error) {
	return []*entity.PollRun{}, nil
}
