package service

import (
	"context"

	"secureview/internal/model"
	"secureview/internal/repository"
)

// TaskService exposes the feedback tasks assigned to a department
type TaskService struct {
	tasks       repository.TaskRepo
	submissions repository.SubmissionRepo
}

// NewTaskService creates a new task service
func NewTaskService(tasks repository.TaskRepo, submissions repository.SubmissionRepo) *TaskService {
	return &TaskService{
		tasks:       tasks,
		submissions: submissions,
	}
}

// List returns the caller's department tasks, flagged with whether the caller already answered them
func (s *TaskService) List(ctx context.Context, p *model.Principal) ([]model.TaskSummary, error) {
	tasks, err := s.tasks.ListByDepartment(ctx, p.Department)
	if err != nil {
		return nil, err
	}
	done, err := s.submissions.CompletedTaskIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]model.TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, model.TaskSummary{
			ID:            t.ID,
			Title:         t.Title,
			QuestionCount: len(t.Questions),
			Submitted:     done[t.ID],
		})
	}
	return out, nil
}

// Get returns a task of the caller's department. Tasks of other departments look missing.
func (s *TaskService) Get(ctx context.Context, p *model.Principal, taskID string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.Department != p.Department {
		return nil, ErrTaskNotFound
	}
	return task, nil
}
