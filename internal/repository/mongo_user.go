package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	filter, err := userIDFilter(id)
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DecrementCalculatorBalance takes one credit atomically. The filter
// only matches balance > 0, so concurrent calls cannot overdraw.
func (r *MongoUserRepository) DecrementCalculatorBalance(ctx context.Context, userID string) (int, error) {
	filter, err := userIDFilter(userID)
	if err != nil {
		return 0, err
	}
	filter["rank_calculator_balance"] = bson.M{"$gt": 0}

	update := bson.M{
		"$inc": bson.M{"rank_calculator_balance": -1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	var user domain.User
	err = r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Either the user is missing or the balance is spent.
			if _, getErr := r.GetByID(ctx, userID); getErr != nil {
				return 0, getErr
			}
			return 0, domain.ErrInsufficientBalance
		}
		return 0, err
	}
	return user.RankCalculatorBalance, nil
}

// CompensateCalculatorBalance returns one credit after a failed
// calculation whose decrement already went through.
func (r *MongoUserRepository) CompensateCalculatorBalance(ctx context.Context, userID string) error {
	filter, err := userIDFilter(userID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"rank_calculator_balance": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// userIDFilter accepts either a MongoDB ObjectID hex or an external id
// stored as a plain string.
func userIDFilter(id string) (bson.M, error) {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}, nil
	}
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	return bson.M{"_id": id}, nil
}

type MongoBodyweightRepository struct {
	collection *mongo.Collection
}

func NewMongoBodyweightRepository(db *mongo.Database) *MongoBodyweightRepository {
	return &MongoBodyweightRepository{
		collection: db.Collection("bodyweight_entries"),
	}
}

func (r *MongoBodyweightRepository) Create(ctx context.Context, entry *domain.BodyweightEntry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create bodyweight entry: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

// LatestByUser returns the most recent measurement.
func (r *MongoBodyweightRepository) LatestByUser(ctx context.Context, userID string) (*domain.BodyweightEntry, error) {
	var entry domain.BodyweightEntry
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.M{"recorded_at": -1})).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrBodyweightNotFound
		}
		return nil, err
	}
	return &entry, nil
}
