package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/adapter/storage/mongo"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/pkg/tracing"
)

const collectionName = "todos"

// documentValidationFailure is the server error code raised when a write
// breaks the collection's JSON schema.
const documentValidationFailure = 121

type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d todoDocument) toDomain() domain.Todo {
	return domain.Todo{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// TodoRepository implements the storage facade over a mongo collection.
type TodoRepository struct {
	collection *driver.Collection
}

func NewTodoRepository(db *mongo.DB) port.TodoRepository {
	return &TodoRepository{collection: db.Collection(collectionName)}
}

func (r *TodoRepository) Find(ctx context.Context, opts domain.ListOptions) ([]domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.Find", []attribute.KeyValue{
		attribute.String("db.collection", collectionName),
		attribute.String("db.operation", "find"),
		attribute.String("todo.filter", opts.Filter.String()),
		attribute.Int64("todo.skip", opts.Skip),
		attribute.Int64("todo.limit", opts.Limit),
	})
	defer span.End()

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := r.collection.Find(ctx, filterQuery(opts.Filter), findOpts)

	if err != nil {
		tracing.AddSpanError(span, err)
		log.Error().Err(err).Msg("finding todos failed")

		return nil, classify(err)
	}

	defer cursor.Close(ctx)

	var docs []todoDocument

	if err := cursor.All(ctx, &docs); err != nil {
		tracing.AddSpanError(span, err)
		return nil, classify(err)
	}

	data := make([]domain.Todo, 0, len(docs))

	for _, doc := range docs {
		data = append(data, doc.toDomain())
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(data)))

	return data, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id string) (domain.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)

	if err != nil {
		// A malformed id reads the same as a missing record.
		return domain.Todo{}, domain.ErrNotFound
	}

	var doc todoDocument

	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)

	if err != nil {
		return domain.Todo{}, classify(err)
	}

	return doc.toDomain(), nil
}

func (r *TodoRepository) Insert(ctx context.Context, title, description string) (domain.Todo, error) {
	now := time.Now().UTC()

	doc := todoDocument{
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := r.collection.InsertOne(ctx, doc)

	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("inserting todo failed")
		return domain.Todo{}, classify(err)
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)

	return doc.toDomain(), nil
}

func (r *TodoRepository) UpdateByID(ctx context.Context, id string, patch domain.Patch) (domain.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)

	if err != nil {
		return domain.Todo{}, domain.ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}

	if patch.Title != nil {
		set["title"] = *patch.Title
	}

	if patch.Description != nil {
		set["description"] = *patch.Description
	}

	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc todoDocument

	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)

	if err != nil {
		return domain.Todo{}, classify(err)
	}

	return doc.toDomain(), nil
}

func (r *TodoRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)

	if err != nil {
		return false, nil
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("deleting todo failed")
		return false, classify(err)
	}

	return result.DeletedCount > 0, nil
}

func (r *TodoRepository) Count(ctx context.Context, filter domain.StatusFilter) (int64, error) {
	var count int64

	err := tracing.SpanWrapper(ctx, "db.todo.Count", []attribute.KeyValue{
		attribute.String("db.collection", collectionName),
		attribute.String("db.operation", "countDocuments"),
		attribute.String("todo.filter", filter.String()),
	}, func(ctx context.Context) error {
		var err error
		count, err = r.collection.CountDocuments(ctx, filterQuery(filter))
		return err
	})

	if err != nil {
		return 0, classify(err)
	}

	return count, nil
}

func filterQuery(f domain.StatusFilter) bson.M {
	switch f {
	case domain.FilterCompleted:
		return bson.M{"completed": true}
	case domain.FilterPending:
		return bson.M{"completed": false}
	default:
		return bson.M{}
	}
}

// classify maps driver errors onto the domain error kinds: no document is
// NotFound, a schema rejection is a validation failure, everything else is
// the storage-unavailable kind.
func classify(err error) error {
	if errors.Is(err, driver.ErrNoDocuments) {
		return domain.ErrNotFound
	}

	var writeErr driver.WriteException

	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == documentValidationFailure {
				return domain.NewValidationError("document", we.Message)
			}
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}
