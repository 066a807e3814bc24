package repository

import (
	"context"
	"fmt"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSearchSchedulingRepository stores one schedule document per window
type MongoSearchSchedulingRepository struct {
	collection *mongo.Collection
	windowID   string
}

// NewMongoSearchSchedulingRepository creates a new search scheduling repository
func NewMongoSearchSchedulingRepository(db *mongo.Database, windowID string) repository.SearchSchedulingRepository {
	return &MongoSearchSchedulingRepository{
		collection: db.Collection("search_scheduling"),
		windowID:   windowID,
	}
}

type containerScheduleDocument struct {
	ContainerNumber string `bson:"container_number"`
	SearchTime      string `bson:"search_time"`
}

type searchSchedulingDocument struct {
	ID              string                      `bson:"_id"`
	StartSearchTime string                      `bson:"start_search_time"`
	EndSearchTime   string                      `bson:"end_search_time"`
	Containers      []containerScheduleDocument `bson:"containers"`
	Version         int64                       `bson:"version"`
	UpdatedAt       time.Time                   `bson:"updated_at"`
}

func toSearchSchedulingDocument(s *entity.SearchScheduling, version int64) searchSchedulingDocument {
	doc := searchSchedulingDocument{
		ID:              s.ID,
		StartSearchTime: s.StartSearchTime.String(),
		EndSearchTime:   s.EndSearchTime.String(),
		Containers:      make([]containerScheduleDocument, 0, len(s.Containers)),
		Version:         version,
		UpdatedAt:       s.UpdatedAt,
	}
	for _, cs := range s.Containers {
		doc.Containers = append(doc.Containers, containerScheduleDocument{
			ContainerNumber: cs.ContainerNumber,
			SearchTime:      cs.SearchTime.String(),
		})
	}
	return doc
}

func fromSearchSchedulingDocument(doc searchSchedulingDocument) (*entity.SearchScheduling, error) {
	start, err := entity.ParseTimeOfDay(doc.StartSearchTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_search_time: %w", err)
	}
	end, err := entity.ParseTimeOfDay(doc.EndSearchTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end_search_time: %w", err)
	}

	s := &entity.SearchScheduling{
		ID:              doc.ID,
		StartSearchTime: start,
		EndSearchTime:   end,
		Containers:      make([]entity.ContainerSchedule, 0, len(doc.Containers)),
		Version:         doc.Version,
		UpdatedAt:       doc.UpdatedAt,
	}
	for _, cd := range doc.Containers {
		at, err := entity.ParseTimeOfDay(cd.SearchTime)
		if err != nil {
			return nil, fmt.Errorf("invalid search_time for %s: %w", cd.ContainerNumber, err)
		}
		s.Containers = append(s.Containers, entity.ContainerSchedule{
			ContainerNumber: cd.ContainerNumber,
			SearchTime:      at,
		})
	}
	return s, nil
}

// Get loads the schedule of the configured window
func (r *MongoSearchSchedulingRepository) Get(ctx context.Context) (*entity.SearchScheduling, error) {
	var doc searchSchedulingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": r.windowID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return fromSearchSchedulingDocument(doc)
}

// Save inserts the first version of the schedule
func (r *MongoSearchSchedulingRepository) Save(ctx context.Context, scheduling *entity.SearchScheduling) error {
	if scheduling.ID == "" {
		scheduling.ID = r.windowID
	}

	_, err := r.collection.InsertOne(ctx, toSearchSchedulingDocument(scheduling, 1))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrScheduleConflict
		}
		return fmt.Errorf("failed to insert search scheduling: %w", err)
	}

	scheduling.Version = 1
	return nil
}

// Update replaces the schedule when nobody wrote it since it was loaded
func (r *MongoSearchSchedulingRepository) Update(ctx context.Context, scheduling *entity.SearchScheduling) error {
	next := scheduling.Version + 1
	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": scheduling.ID, "version": scheduling.Version},
		toSearchSchedulingDocument(scheduling, next),
	)
	if err != nil {
		return fmt.Errorf("failed to replace search scheduling: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.ErrScheduleConflict
	}

	scheduling.Version = next
	return nil
}
