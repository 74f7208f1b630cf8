package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"secureview/internal/model"
)

// InsightRepo handles MongoDB operations for aggregated department scores
type InsightRepo interface {
	Upsert(ctx context.Context, insights *model.DepartmentInsights) error
	GetByDepartment(ctx context.Context, department string) (*model.DepartmentInsights, error)
}

type insightRepo struct {
	collection *mongo.Collection
}

// NewInsightRepo creates a new insight repository
func NewInsightRepo(db *mongo.Database) InsightRepo {
	return &insightRepo{
		collection: db.Collection(insightsCollection),
	}
}

func (r *insightRepo) Upsert(ctx context.Context, insights *model.DepartmentInsights) error {
	insights.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": insights.Department}, insights, opts)
	return err
}

func (r *insightRepo) GetByDepartment(ctx context.Context, department string) (*model.DepartmentInsights, error) {
	var insights model.DepartmentInsights
	err := r.collection.FindOne(ctx, bson.M{"_id": department}).Decode(&insights)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &insights, nil
}
