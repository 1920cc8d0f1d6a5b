package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

const collectionActivity = "team_activity"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

// Record appends an entry to the team_activity audit collection.
func (r *ActivityRepository) Record(ctx context.Context, a *domain.TeamActivity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"team_id":     a.TeamID,
		"kind":        string(a.Kind),
		"actor_id":    a.ActorID,
		"timestamp":   a.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if a.SubjectID != "" {
		doc["subject_id"] = a.SubjectID
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// EnsureIndexes indexes the trail by team in chronological order.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}
