package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCalculationAuditRepository persists manual-calculator audit
// rows. Transition filters only match processing rows, which makes
// terminal rows immutable without a separate read.
type MongoCalculationAuditRepository struct {
	collection *mongo.Collection
}

func NewMongoCalculationAuditRepository(db *mongo.Database) *MongoCalculationAuditRepository {
	return &MongoCalculationAuditRepository{
		collection: db.Collection("calculation_audits"),
	}
}

func (r *MongoCalculationAuditRepository) Create(ctx context.Context, audit *domain.CalculationAudit) error {
	audit.CreatedAt = time.Now()
	audit.UpdatedAt = audit.CreatedAt
	if audit.Status == "" {
		audit.Status = domain.AuditStatusProcessing
	}

	_, err := r.collection.InsertOne(ctx, audit)
	if err != nil {
		return fmt.Errorf("%w: create audit: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (r *MongoCalculationAuditRepository) GetByID(ctx context.Context, id string) (*domain.CalculationAudit, error) {
	var audit domain.CalculationAudit
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&audit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &audit, nil
}

func (r *MongoCalculationAuditRepository) GetByUser(ctx context.Context, userID string) ([]*domain.CalculationAudit, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("%w: list audits: %v", domain.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var audits []*domain.CalculationAudit
	if err := cursor.All(ctx, &audits); err != nil {
		return nil, fmt.Errorf("%w: list audits: %v", domain.ErrPersistence, err)
	}
	return audits, nil
}

// MarkSuccess transitions processing -> success with the rank-up payload.
func (r *MongoCalculationAuditRepository) MarkSuccess(ctx context.Context, id string, rankUps []domain.TierProgression) error {
	return r.transition(ctx, id, bson.M{
		"status":     domain.AuditStatusSuccess,
		"rank_ups":   rankUps,
		"updated_at": time.Now(),
	})
}

// MarkFailed transitions processing -> failed with a reason.
func (r *MongoCalculationAuditRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.transition(ctx, id, bson.M{
		"status":     domain.AuditStatusFailed,
		"error":      reason,
		"updated_at": time.Now(),
	})
}

func (r *MongoCalculationAuditRepository) transition(ctx context.Context, id string, set bson.M) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": domain.AuditStatusProcessing},
		bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: audit transition: %v", domain.ErrPersistence, err)
	}
	if result.MatchedCount == 0 {
		// Distinguish missing from already-terminal.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrAuditTerminal
	}
	return nil
}

// SweepStale closes processing rows older than cutoff. Used by the
// background sweeper for calls cancelled between balance decrement and
// audit finalization.
func (r *MongoCalculationAuditRepository) SweepStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{
			"status":     domain.AuditStatusProcessing,
			"created_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{
			"status":     domain.AuditStatusFailed,
			"error":      "timed out in processing",
			"updated_at": time.Now(),
		}})
	if err != nil {
		return 0, fmt.Errorf("%w: sweep stale audits: %v", domain.ErrPersistence, err)
	}
	return result.ModifiedCount, nil
}
