package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection       = "users"
	tasksCollection       = "tasks"
	submissionsCollection = "submissions"
	completionsCollection = "completions"
	insightsCollection    = "department_insights"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

type indexSpec struct {
	collection string
	keys       bson.D
	unique     bool
}

var indexes = []indexSpec{
	{usersCollection, bson.D{{Key: "email", Value: 1}}, true},
	{tasksCollection, bson.D{{Key: "department", Value: 1}, {Key: "createdAt", Value: -1}}, false},
	{submissionsCollection, bson.D{{Key: "taskId", Value: 1}, {Key: "submittedAt", Value: -1}}, false},
	{submissionsCollection, bson.D{{Key: "department", Value: 1}}, false},
	// one completion per user and task; this is what rejects a second submission
	{completionsCollection, bson.D{{Key: "userId", Value: 1}, {Key: "taskId", Value: 1}}, true},
}

// EnsureIndexes creates every index the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	var errs []error
	for _, ix := range indexes {
		opts := options.Index().SetUnique(ix.unique)
		_, err := db.Collection(ix.collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: ix.keys, Options: opts})
		if err != nil {
			errs = append(errs, fmt.Errorf("create index on %s: %w", ix.collection, err))
		}
	}
	return errors.Join(errs...)
}
