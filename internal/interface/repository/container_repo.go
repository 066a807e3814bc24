package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoContainerRepository implements the ContainerRepository interface
type MongoContainerRepository struct {
	collection *mongo.Collection
}

// NewMongoContainerRepository creates a new MongoDB container repository
func NewMongoContainerRepository(db *mongo.Database) repository.ContainerRepository {
	collection := db.Collection("containers")

	ctx := context.Background()

	// Only one PROCESSING container per natural key
	activeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "number", Value: 1},
			{Key: "shipowner", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetName("uniq_active_container").
			SetPartialFilterExpression(bson.M{"shipping_status": entity.ShippingStatusProcessing}),
	}

	statusIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "number", Value: 1},
			{Key: "shipping_status", Value: 1},
		},
	}

	updatedAtIndex := mongo.IndexModel{
		Keys: bson.M{"updated_at": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		activeIndex,
		statusIndex,
		updatedAtIndex,
	})

	return &MongoContainerRepository{
		collection: collection,
	}
}

type eventDocument struct {
	Order          int      `bson:"order"`
	Location       string   `bson:"location"`
	UnLocationCode string   `bson:"un_location_code"`
	Description    string   `bson:"description"`
	Detail         []string `bson:"detail"`
	Status         string   `bson:"status"`
	EstimatedDate  *string  `bson:"estimated_date"`
	EffectiveDate  *string  `bson:"effective_date"`
}

type searchLogDocument struct {
	Timestamp time.Time `bson:"timestamp"`
	Status    string    `bson:"status"`
}

type containerDocument struct {
	ID                       primitive.ObjectID  `bson:"_id"`
	Number                   string              `bson:"number"`
	Shipowner                string              `bson:"shipowner"`
	ShippedFrom              string              `bson:"shipped_from"`
	ShippedTo                string              `bson:"shipped_to"`
	PortOfLoad               string              `bson:"port_of_load"`
	PortOfDischarge          string              `bson:"port_of_discharge"`
	BookingNumber            string              `bson:"booking_number"`
	MasterBillOfLadingNumber string              `bson:"master_bill_of_lading_number"`
	HouseBillOfLadingNumber  string              `bson:"house_bill_of_lading_number"`
	Events                   []eventDocument     `bson:"events"`
	SearchLogs               []searchLogDocument `bson:"search_logs"`
	ShippingStatus           string              `bson:"shipping_status"`
	CreatedAt                time.Time           `bson:"created_at"`
	UpdatedAt                time.Time           `bson:"updated_at"`
}

func toContainerDocument(c *entity.Container, id primitive.ObjectID) containerDocument {
	doc := containerDocument{
		ID:                       id,
		Number:                   c.Number,
		Shipowner:                string(c.Shipowner),
		ShippedFrom:              c.ShippedFrom,
		ShippedTo:                c.ShippedTo,
		PortOfLoad:               c.PortOfLoad,
		PortOfDischarge:          c.PortOfDischarge,
		BookingNumber:            c.BookingNumber,
		MasterBillOfLadingNumber: c.MasterBillOfLadingNumber,
		HouseBillOfLadingNumber:  c.HouseBillOfLadingNumber,
		Events:                   make([]eventDocument, 0, len(c.Events)),
		SearchLogs:               make([]searchLogDocument, 0, len(c.SearchLogs)),
		ShippingStatus:           string(c.ShippingStatus),
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
	}

	for _, e := range c.Events {
		ed := eventDocument{
			Order:          e.Order,
			Location:       e.Location,
			UnLocationCode: e.UnLocationCode,
			Description:    e.Description,
			Detail:         e.Detail,
			Status:         string(e.Status()),
		}
		if date, ok := e.Timing.EffectiveDate(); ok {
			ed.EffectiveDate = &date
		} else if date, ok := e.Timing.EstimatedDate(); ok {
			ed.EstimatedDate = &date
		}
		if ed.Detail == nil {
			ed.Detail = []string{}
		}
		doc.Events = append(doc.Events, ed)
	}

	for _, l := range c.SearchLogs {
		doc.SearchLogs = append(doc.SearchLogs, searchLogDocument{
			Timestamp: l.Timestamp,
			Status:    string(l.Status),
		})
	}

	return doc
}

func fromContainerDocument(doc containerDocument) *entity.Container {
	c := &entity.Container{
		ID:                       doc.ID.Hex(),
		Number:                   doc.Number,
		Shipowner:                entity.Shipowner(doc.Shipowner),
		ShippedFrom:              doc.ShippedFrom,
		ShippedTo:                doc.ShippedTo,
		PortOfLoad:               doc.PortOfLoad,
		PortOfDischarge:          doc.PortOfDischarge,
		BookingNumber:            doc.BookingNumber,
		MasterBillOfLadingNumber: doc.MasterBillOfLadingNumber,
		HouseBillOfLadingNumber:  doc.HouseBillOfLadingNumber,
		ShippingStatus:           entity.ShippingStatus(doc.ShippingStatus),
		CreatedAt:                doc.CreatedAt,
		UpdatedAt:                doc.UpdatedAt,
	}

	for _, ed := range doc.Events {
		var timing entity.EventTiming
		switch {
		case ed.EffectiveDate != nil:
			timing = entity.Effective(*ed.EffectiveDate)
		case ed.EstimatedDate != nil:
			timing = entity.Estimated(*ed.EstimatedDate)
		case ed.Status == string(entity.EventStatusEffective):
			timing = entity.Effective("")
		}
		var detail []string
		if len(ed.Detail) > 0 {
			detail = ed.Detail
		}
		c.Events = append(c.Events, entity.Event{
			Order:          ed.Order,
			Location:       ed.Location,
			UnLocationCode: ed.UnLocationCode,
			Description:    ed.Description,
			Detail:         detail,
			Timing:         timing,
		})
	}

	for _, l := range doc.SearchLogs {
		c.SearchLogs = append(c.SearchLogs, entity.SearchLog{
			Timestamp: l.Timestamp,
			Status:    entity.SearchStatus(l.Status),
		})
	}

	return c
}

func (r *MongoContainerRepository) findOne(ctx context.Context, filter bson.M) (*entity.Container, error) {
	var doc containerDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return fromContainerDocument(doc), nil
}

func (r *MongoContainerRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Container, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []containerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	containers := make([]*entity.Container, 0, len(docs))
	for _, doc := range docs {
		containers = append(containers, fromContainerDocument(doc))
	}
	return containers, nil
}

// GetByNumberAndStatus finds the container with the given number and status
func (r *MongoContainerRepository) GetByNumberAndStatus(ctx context.Context, number string, status entity.ShippingStatus) (*entity.Container, error) {
	return r.findOne(ctx, bson.M{"number": number, "shipping_status": status})
}

// GetAllByNumber finds every container ever registered with the number
func (r *MongoContainerRepository) GetAllByNumber(ctx context.Context, number string) ([]*entity.Container, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.findMany(ctx, bson.M{"number": number}, opts)
}

// Save inserts a new container and assigns its ID
func (r *MongoContainerRepository) Save(ctx context.Context, container *entity.Container) error {
	id := primitive.NewObjectID()
	if container.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(container.ID)
		if err != nil {
			return &entity.ValidationError{Field: "id", Reason: err.Error()}
		}
		id = parsed
	}

	_, err := r.collection.InsertOne(ctx, toContainerDocument(container, id))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entity.ErrAlreadyTracked
		}
		return fmt.Errorf("failed to insert container: %w", err)
	}

	container.ID = id.Hex()
	return nil
}

// Update replaces the stored container document
func (r *MongoContainerRepository) Update(ctx context.Context, container *entity.Container) (bool, error) {
	if container.ID == "" {
		return false, entity.ErrMissingID
	}
	id, err := primitive.ObjectIDFromHex(container.ID)
	if err != nil {
		return false, nil
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, toContainerDocument(container, id))
	if err != nil {
		return false, fmt.Errorf("failed to replace container: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// GetByID finds a container by ID
func (r *MongoContainerRepository) GetByID(ctx context.Context, id string) (*entity.Container, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindAllForGrid returns one page of containers, most recently updated first
func (r *MongoContainerRepository) FindAllForGrid(ctx context.Context, search string, page, pageSize int) ([]*entity.Container, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	return r.findMany(ctx, gridFilter(search), opts)
}

// CountAllForGrid counts containers matching search
func (r *MongoContainerRepository) CountAllForGrid(ctx context.Context, search string) (int64, error) {
	return r.collection.CountDocuments(ctx, gridFilter(search))
}

// DeleteByID removes a container
func (r *MongoContainerRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete container: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// gridFilter matches search case-insensitively against the container references
func gridFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{
		"$or": []bson.M{
			{"number": pattern},
			{"master_bill_of_lading_number": pattern},
			{"booking_number": pattern},
			{"house_bill_of_lading_number": pattern},
		},
	}
}
