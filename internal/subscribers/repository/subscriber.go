package repository

import (
	"context"
	"fmt"
	"time"

	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	"playday/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "subscribers"
)

type SubscriberRepository interface {
	// Upsert stores email once; created is false when it was already present.
	Upsert(ctx context.Context, email string) (sub *model.Subscriber, created bool, err error)
}

type mongoSubscriberRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSubscriberRepository(cfg *config.Config) SubscriberRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSubscriberRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSubscriberRepository) Upsert(ctx context.Context, email string) (*model.Subscriber, bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"email": email}
	update := bson.M{"$setOnInsert": bson.M{"email": email, "created_at": now}}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two concurrent upserts can both miss and race on the unique index.
		if mongo.IsDuplicateKeyError(err) {
			return &model.Subscriber{Email: email}, false, nil
		}
		return nil, false, fmt.Errorf("failed to upsert subscriber: %w", err)
	}

	sub := &model.Subscriber{Email: email, CreatedAt: now}
	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		sub.ID = oid.Hex()
		return sub, true, nil
	}
	return sub, false, nil
}
