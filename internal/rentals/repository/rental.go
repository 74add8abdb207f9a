package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	rentalserrors "playday/internal/rentals/errors"
	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	"playday/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "rentals"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *model.Rental) error
	FindByID(ctx context.Context, id string) (*model.Rental, error)
	FindByRenter(ctx context.Context, renterID string, limit int, offset int64) ([]*model.Rental, error)
	CountByRenter(ctx context.Context, renterID string) (int64, error)
	FindByFields(ctx context.Context, fieldIDs []string, limit int, offset int64) ([]*model.Rental, error)
	CountByFields(ctx context.Context, fieldIDs []string) (int64, error)
	HasOverlap(ctx context.Context, fieldID string, start, end time.Time) (bool, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRentalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoRentalRepository(cfg *config.Config) RentalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRentalRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rental.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, rental)
	if err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rental.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRentalRepository) FindByID(ctx context.Context, id string) (*model.Rental, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", rentalserrors.ErrInvalidID, id)
	}

	var rental model.Rental
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&rental); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", rentalserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find rental: %w", err)
	}
	return &rental, nil
}

func (r *mongoRentalRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Rental, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_time", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query rentals: %w", err)
	}
	defer cursor.Close(ctx)

	rentals := []*model.Rental{}
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("failed to decode rentals: %w", err)
	}
	return rentals, nil
}

func (r *mongoRentalRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count rentals: %w", err)
	}
	return count, nil
}

func (r *mongoRentalRepository) FindByRenter(ctx context.Context, renterID string, limit int, offset int64) ([]*model.Rental, error) {
	return r.find(ctx, bson.M{"renter_id": renterID}, limit, offset)
}

func (r *mongoRentalRepository) CountByRenter(ctx context.Context, renterID string) (int64, error) {
	return r.count(ctx, bson.M{"renter_id": renterID})
}

func (r *mongoRentalRepository) FindByFields(ctx context.Context, fieldIDs []string, limit int, offset int64) ([]*model.Rental, error) {
	return r.find(ctx, bson.M{"field_id": bson.M{"$in": fieldIDs}}, limit, offset)
}

func (r *mongoRentalRepository) CountByFields(ctx context.Context, fieldIDs []string) (int64, error) {
	return r.count(ctx, bson.M{"field_id": bson.M{"$in": fieldIDs}})
}

// HasOverlap reports whether any rental on fieldID intersects [start, end).
func (r *mongoRentalRepository) HasOverlap(ctx context.Context, fieldID string, start, end time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"field_id":   fieldID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}

	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check rental overlap: %w", err)
	}
	return true, nil
}

func (r *mongoRentalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
