package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	gameserrors "playday/internal/games/errors"
	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	"playday/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "games"
)

type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	FindByID(ctx context.Context, id string) (*model.Game, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Game, error)
	Count(ctx context.Context) (int64, error)
	// JoinIfVersion adds viewerID to the roster only while the stored game is
	// still at expectedVersion, has an open spot and does not list the viewer.
	JoinIfVersion(ctx context.Context, id, viewerID string, expectedVersion int64) (*model.Game, error)
}

type mongoGameRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoGameRepository(cfg *config.Config) GameRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGameRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", gameserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoGameRepository) Create(ctx context.Context, game *model.Game) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	game.Version = 1
	game.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, game)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		game.ID = oid.Hex()
	}
	return nil
}

func (r *mongoGameRepository) FindByID(ctx context.Context, id string) (*model.Game, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var game model.Game
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&game); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", gameserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find game: %w", err)
	}
	return &game, nil
}

func (r *mongoGameRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Game, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer cursor.Close(ctx)

	games := []*model.Game{}
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

func (r *mongoGameRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

func (r *mongoGameRepository) JoinIfVersion(ctx context.Context, id, viewerID string, expectedVersion int64) (*model.Game, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":            oid,
		"version":        expectedVersion,
		"players_needed": bson.M{"$gt": 0},
		"joined_players": bson.M{"$ne": viewerID},
	}
	update := bson.M{
		"$inc":      bson.M{"players_needed": -1, "version": 1},
		"$addToSet": bson.M{"joined_players": viewerID},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var game model.Game
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&game); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", gameserrors.ErrVersionConflict, id)
		}
		return nil, fmt.Errorf("failed to join game: %w", err)
	}
	return &game, nil
}
