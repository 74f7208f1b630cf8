package rest

import (
	"context"
	"strings"
	"sync"
	"time"

	"secureview/internal/model"
	"secureview/internal/repository"
)

type memUsers struct{ users []*model.User }

func (m *memUsers) Upsert(_ context.Context, u *model.User) error {
	m.users = append(m.users, u)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type memTasks struct{ tasks []*model.Task }

func (m *memTasks) Upsert(_ context.Context, t *model.Task) error {
	m.tasks = append(m.tasks, t)
	return nil
}

func (m *memTasks) GetByID(_ context.Context, id string) (*model.Task, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memTasks) ListByDepartment(_ context.Context, dept string) ([]*model.Task, error) {
	var out []*model.Task
	for _, t := range m.tasks {
		if t.Department == dept {
			out = append(out, t)
		}
	}
	return out, nil
}

type memSubmissions struct {
	mu          sync.Mutex
	submissions []*model.Submission
	done        map[string]bool
}

func (m *memSubmissions) key(userID, taskID string) string { return userID + "/" + taskID }

func (m *memSubmissions) Insert(_ context.Context, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, s)
	return nil
}

func (m *memSubmissions) CountByTask(_ context.Context, taskID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.submissions {
		if s.TaskID == taskID {
			n++
		}
	}
	return n, nil
}

func (m *memSubmissions) MarkCompleted(_ context.Context, c *model.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done == nil {
		m.done = map[string]bool{}
	}
	if m.done[m.key(c.UserID, c.TaskID)] {
		return repository.ErrDuplicate
	}
	m.done[m.key(c.UserID, c.TaskID)] = true
	return nil
}

func (m *memSubmissions) UnmarkCompleted(_ context.Context, userID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.done, m.key(userID, taskID))
	return nil
}

func (m *memSubmissions) IsCompleted(_ context.Context, userID, taskID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done[m.key(userID, taskID)], nil
}

func (m *memSubmissions) CompletedTaskIDs(_ context.Context, userID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]bool{}
	for k := range m.done {
		if taskID, ok := strings.CutPrefix(k, userID+"/"); ok {
			out[taskID] = true
		}
	}
	return out, nil
}

type memInsights struct{ byDept map[string]*model.DepartmentInsights }

func (m *memInsights) Upsert(_ context.Context, di *model.DepartmentInsights) error {
	m.byDept[di.Department] = di
	return nil
}

func (m *memInsights) GetByDepartment(_ context.Context, dept string) (*model.DepartmentInsights, error) {
	return m.byDept[dept], nil
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memDenylist) Revoke(_ context.Context, id string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]bool{}
	}
	m.revoked[id] = true
	return nil
}

func (m *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[id], nil
}
