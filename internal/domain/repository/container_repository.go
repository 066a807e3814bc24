package repository

import (
	"context"

	"track-wise-service/internal/domain/entity"
)

// ContainerRepository defines the interface for container storage operations
type ContainerRepository interface {
	GetByNumberAndStatus(ctx context.Context, number string, status entity.ShippingStatus) (*entity.Container, error)
	GetAllByNumber(ctx context.Context, number string) ([]*entity.Container, error)
	Save(ctx context.Context, container *entity.Container) error
	// Update replaces the stored document. It fails with entity.ErrMissingID
	// when the container was never saved.
	Update(ctx context.Context, container *entity.Container) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Container, error)
	FindAllForGrid(ctx context.Context, search string, page, pageSize int) ([]*entity.Container, error)
	CountAllForGrid(ctx context.Context, search string) (int64, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}
