package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imagetagger/accounts/internal/core/domain"
	"github.com/imagetagger/accounts/internal/core/ports"
)

const collectionImageSets = "image_sets"

var _ ports.ImageSetRepository = (*ImageSetRepository)(nil)

// ImageSetRepository reads the image sets written by the annotation service.
type ImageSetRepository struct {
	col *mongo.Collection
}

func NewImageSetRepository(db *mongo.Database) *ImageSetRepository {
	return &ImageSetRepository{col: db.Collection(collectionImageSets)}
}

type mongoImageSet struct {
	ID        primitive.ObjectID `bson:"_id"`
	TeamID    primitive.ObjectID `bson:"team_id"`
	Name      string             `bson:"name"`
	Public    bool               `bson:"public"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *ImageSetRepository) ListByTeam(ctx context.Context, teamID string, public bool) ([]domain.ImageSet, error) {
	tid, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return []domain.ImageSet{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"team_id": tid, "public": public}, opts)
	if err != nil {
		return nil, fmt.Errorf("list image sets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoImageSet
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list image sets: %w", err)
	}

	sets := make([]domain.ImageSet, 0, len(docs))
	for _, d := range docs {
		sets = append(sets, domain.ImageSet{
			ID:        d.ID.Hex(),
			TeamID:    d.TeamID.Hex(),
			Name:      d.Name,
			Public:    d.Public,
			CreatedAt: d.CreatedAt,
		})
	}
	return sets, nil
}

// EnsureIndexes creates the index backing ListByTeam.
func (r *ImageSetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "public", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}
