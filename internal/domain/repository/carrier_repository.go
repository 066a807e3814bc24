package repository

import (
	"context"

	"track-wise-service/internal/domain/entity"
)

// CarrierRepository defines the interface for the shipowner tracking API
type CarrierRepository interface {
	GetTrackingInfo(ctx context.Context, containerNumber string) (*entity.TrackingResponse, error)
}
