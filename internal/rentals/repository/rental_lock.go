package repository

import (
	"context"
	"fmt"
	"time"

	rentalserrors "playday/internal/rentals/errors"
	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	"playday/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "rental_locks"

// RentalLockRepository stores advisory locks. A lock is a document whose
// _id names the resource; the unique _id index makes acquisition atomic.
type RentalLockRepository interface {
	Create(ctx context.Context, lock *model.RentalLock) error
	Delete(ctx context.Context, lockID, token string) error
	DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error)
}

type mongoRentalLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewRentalLockRepository(cfg *config.Config) RentalLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRentalLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Create returns ErrLockHeld if the lock document already exists.
func (r *mongoRentalLockRepository) Create(ctx context.Context, lock *model.RentalLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", rentalserrors.ErrLockHeld, lock.ID)
		}
		return fmt.Errorf("failed to create rental lock: %w", err)
	}
	return nil
}

// Delete releases the lock only while it still carries token. A lock that
// expired and was taken over by another creator is left alone.
func (r *mongoRentalLockRepository) Delete(ctx context.Context, lockID, token string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "token": token})
	if err != nil {
		return fmt.Errorf("failed to release rental lock: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", rentalserrors.ErrLockLost, lockID)
	}
	return nil
}

// DeleteExpired removes a lock left behind by a crashed holder. The TTL
// monitor would reap it eventually; this avoids waiting for its next pass.
func (r *mongoRentalLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return false, fmt.Errorf("failed to delete expired rental lock: %w", err)
	}
	return result.DeletedCount > 0, nil
}
