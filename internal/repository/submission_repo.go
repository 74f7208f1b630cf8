package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"secureview/internal/model"
)

// SubmissionRepo stores anonymous submissions and, separately, who has completed which task.
// The two collections share no key, so answers cannot be joined back to a user.
type SubmissionRepo interface {
	Insert(ctx context.Context, sub *model.Submission) error
	CountByTask(ctx context.Context, taskID string) (int64, error)

	// MarkCompleted returns ErrDuplicate if the user already completed the task.
	MarkCompleted(ctx context.Context, c *model.Completion) error
	UnmarkCompleted(ctx context.Context, userID, taskID string) error
	IsCompleted(ctx context.Context, userID, taskID string) (bool, error)
	CompletedTaskIDs(ctx context.Context, userID string) (map[string]bool, error)
}

type submissionRepo struct {
	submissions *mongo.Collection
	completions *mongo.Collection
}

// NewSubmissionRepo creates a new submission repository
func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{
		submissions: db.Collection(submissionsCollection),
		completions: db.Collection(completionsCollection),
	}
}

func (r *submissionRepo) Insert(ctx context.Context, sub *model.Submission) error {
	_, err := r.submissions.InsertOne(ctx, sub)
	return err
}

func (r *submissionRepo) CountByTask(ctx context.Context, taskID string) (int64, error) {
	return r.submissions.CountDocuments(ctx, bson.M{"taskId": taskID})
}

func (r *submissionRepo) MarkCompleted(ctx context.Context, c *model.Completion) error {
	_, err := r.completions.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *submissionRepo) UnmarkCompleted(ctx context.Context, userID, taskID string) error {
	_, err := r.completions.DeleteOne(ctx, bson.M{"userId": userID, "taskId": taskID})
	return err
}

func (r *submissionRepo) IsCompleted(ctx context.Context, userID, taskID string) (bool, error) {
	n, err := r.completions.CountDocuments(ctx, bson.M{"userId": userID, "taskId": taskID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *submissionRepo) CompletedTaskIDs(ctx context.Context, userID string) (map[string]bool, error) {
	cursor, err := r.completions.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var completions []model.Completion
	if err := cursor.All(ctx, &completions); err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(completions))
	for _, c := range completions {
		done[c.TaskID] = true
	}
	return done, nil
}
