package main

import (
	"context"
	"fmt"
	"strings"

	"secureview/internal/logger"
	"secureview/internal/model"
	"secureview/internal/repository"
)

type insightPublisher interface {
	Publish(ctx context.Context, src *model.DepartmentInsights) error
}

// LoadResult counts what a load wrote.
type LoadResult struct {
	Users       int
	Tasks       int
	Departments int
}

type loader struct {
	users    repository.UserRepo
	tasks    repository.TaskRepo
	insights insightPublisher
	hash     func(string) (string, error)
	log      *logger.Logger
}

// Load upserts the seed file. Records are replaced wholesale, so running it twice is harmless.
func (l *loader) Load(ctx context.Context, sf *SeedFile) (LoadResult, error) {
	var res LoadResult

	for _, u := range sf.Users {
		hash, err := l.hash(u.Password)
		if err != nil {
			return res, fmt.Errorf("hash password for %s: %w", u.ID, err)
		}
		user := &model.User{
			ID:           u.ID,
			Email:        strings.ToLower(strings.TrimSpace(u.Email)),
			PasswordHash: hash,
			Role:         u.Role,
			Department:   u.Department,
		}
		if err := l.users.Upsert(ctx, user); err != nil {
			return res, fmt.Errorf("upsert user %s: %w", u.ID, err)
		}
		res.Users++
		l.log.Info("seeded user", "user_id", u.ID, "role", u.Role, "department", u.Department)
	}

	for i := range sf.Tasks {
		t := sf.Tasks[i]
		if err := l.tasks.Upsert(ctx, &t); err != nil {
			return res, fmt.Errorf("upsert task %s: %w", t.ID, err)
		}
		res.Tasks++
		l.log.Info("seeded task", "task_id", t.ID, "department", t.Department, "questions", len(t.Questions))
	}

	for i := range sf.Insights {
		d := sf.Insights[i]
		if err := l.insights.Publish(ctx, &d); err != nil {
			return res, fmt.Errorf("publish insights for %s: %w", d.Department, err)
		}
		res.Departments++
		l.log.Info("seeded insights", "department", d.Department, "dimensions", len(d.Dimensions))
	}

	return res, nil
}
