package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"secureview/internal/logger"
	"secureview/internal/model"
	"secureview/internal/repository"
	"secureview/internal/session"
)

// SubmissionService stores completed feedback. The stored answers carry no user reference;
// completion is tracked in a separate collection.
type SubmissionService struct {
	submissions repository.SubmissionRepo
	now         func() time.Time
	log         *logger.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(submissions repository.SubmissionRepo, log *logger.Logger) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		now:         time.Now,
		log:         log.With("component", "submissions"),
	}
}

// SubmitterFor binds the service to one user and task for use by a session.
func (s *SubmissionService) SubmitterFor(p model.Principal, task *model.Task) session.Submitter {
	return session.SubmitterFunc(func(ctx context.Context, _ string, responses model.ResponseBuffer) error {
		return s.Submit(ctx, p, task, responses)
	})
}

// Submit records the completion first so a concurrent second attempt fails on the unique
// index, then stores the anonymous answers. The completion is rolled back if that fails.
func (s *SubmissionService) Submit(ctx context.Context, p model.Principal, task *model.Task, responses model.ResponseBuffer) error {
	answers := make(model.ResponseBuffer, len(task.Questions))
	var missing []string
	for _, q := range task.Questions {
		if !responses.HasAnswer(q.ID) {
			missing = append(missing, q.ID)
			continue
		}
		answers[q.ID] = responses[q.ID]
	}
	if len(missing) > 0 {
		return &session.ValidationError{Missing: missing, Reason: "submission is incomplete"}
	}

	now := s.now().UTC()
	completion := &model.Completion{UserID: p.UserID, TaskID: task.ID, CompletedAt: now}
	if err := s.submissions.MarkCompleted(ctx, completion); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadySubmitted
		}
		return fmt.Errorf("record completion: %w", err)
	}

	sub := &model.Submission{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		Department:  task.Department,
		Responses:   answers,
		SubmittedAt: now.Truncate(time.Hour), // hour precision only
	}
	if err := s.submissions.Insert(ctx, sub); err != nil {
		if uerr := s.submissions.UnmarkCompleted(ctx, p.UserID, task.ID); uerr != nil {
			s.log.Error("failed to roll back completion", "task_id", task.ID, "error", uerr)
		}
		return fmt.Errorf("store submission: %w", err)
	}

	s.log.Info("feedback stored", "task_id", task.ID, "department", task.Department)
	return nil
}
