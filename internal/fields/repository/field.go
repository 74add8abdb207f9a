package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	fieldserrors "playday/internal/fields/errors"
	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	"playday/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "fields"
)

type FieldRepository interface {
	Create(ctx context.Context, field *model.Field) error
	FindByID(ctx context.Context, id string) (*model.Field, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Field, error)
	Count(ctx context.Context) (int64, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Field, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	FindIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	UpdateIfVersion(ctx context.Context, field *model.Field, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
}

type mongoFieldRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoFieldRepository(cfg *config.Config) FieldRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFieldRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", fieldserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoFieldRepository) Create(ctx context.Context, field *model.Field) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	field.CreatedAt = now
	field.UpdatedAt = now
	field.Version = 1

	result, err := r.collection.InsertOne(ctx, field)
	if err != nil {
		return fmt.Errorf("failed to create field: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		field.ID = oid.Hex()
	}
	return nil
}

func (r *mongoFieldRepository) FindByID(ctx context.Context, id string) (*model.Field, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var field model.Field
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&field); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", fieldserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find field: %w", err)
	}
	return &field, nil
}

func (r *mongoFieldRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Field, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer cursor.Close(ctx)

	fields := []*model.Field{}
	if err := cursor.All(ctx, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return fields, nil
}

func (r *mongoFieldRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Field, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *mongoFieldRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Field, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID}, limit, offset)
}

func (r *mongoFieldRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count fields: %w", err)
	}
	return count, nil
}

func (r *mongoFieldRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count fields: %w", err)
	}
	return count, nil
}

func (r *mongoFieldRepository) FindIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query owner fields: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode owner fields: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}

// UpdateIfVersion writes field only if the stored version still equals
// expectedVersion, then advances the version.
func (r *mongoFieldRepository) UpdateIfVersion(ctx context.Context, field *model.Field, expectedVersion int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(field.ID)
	if err != nil {
		return err
	}

	updatedAt := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"_id": oid, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"name":         field.Name,
			"location":     field.Location,
			"hourly_price": field.HourlyPrice,
			"description":  field.Description,
			"image_url":    field.ImageURL,
			"updated_at":   updatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update field: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", fieldserrors.ErrVersionConflict, field.ID)
	}

	field.Version = expectedVersion + 1
	field.UpdatedAt = updatedAt
	return nil
}

func (r *mongoFieldRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete field: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", fieldserrors.ErrNotFound, id)
	}
	return nil
}
