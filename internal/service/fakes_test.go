package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"secureview/internal/model"
	"secureview/internal/repository"
)

var errBoom = errors.New("boom")

type fakeUserRepo struct {
	byID map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: map[string]*model.User{}}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Upsert(_ context.Context, u *model.User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return r.byID[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (d *fakeDenylist) Revoke(_ context.Context, id string, exp time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]time.Time{}
	}
	d.revoked[id] = exp
	return nil
}

func (d *fakeDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[id]
	return ok, nil
}

type fakeAttempts struct {
	counts map[string]int64
}

func (a *fakeAttempts) Failed(_ context.Context, email string) (int64, error) {
	if a.counts == nil {
		a.counts = map[string]int64{}
	}
	a.counts[email]++
	return a.counts[email], nil
}

func (a *fakeAttempts) Count(_ context.Context, email string) (int64, error) {
	return a.counts[email], nil
}

func (a *fakeAttempts) Reset(_ context.Context, email string) error {
	delete(a.counts, email)
	return nil
}

type fakeTaskRepo struct {
	tasks map[string]*model.Task
}

func newFakeTaskRepo(tasks ...*model.Task) *fakeTaskRepo {
	r := &fakeTaskRepo{tasks: map[string]*model.Task{}}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

func (r *fakeTaskRepo) Upsert(_ context.Context, t *model.Task) error {
	r.tasks[t.ID] = t
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	return r.tasks[id], nil
}

func (r *fakeTaskRepo) ListByDepartment(_ context.Context, dept string) ([]*model.Task, error) {
	var out []*model.Task
	for _, t := range r.tasks {
		if t.Department == dept {
			out = append(out, t)
		}
	}
	return out, nil
}

type completionKey struct{ userID, taskID string }

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions []*model.Submission
	completions map[completionKey]bool
	insertErr   error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{completions: map[completionKey]bool{}}
}

func (r *fakeSubmissionRepo) Insert(_ context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.submissions = append(r.submissions, s)
	return nil
}

func (r *fakeSubmissionRepo) CountByTask(_ context.Context, taskID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.submissions {
		if s.TaskID == taskID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubmissionRepo) MarkCompleted(_ context.Context, c *model.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := completionKey{c.UserID, c.TaskID}
	if r.completions[k] {
		return repository.ErrDuplicate
	}
	r.completions[k] = true
	return nil
}

func (r *fakeSubmissionRepo) UnmarkCompleted(_ context.Context, userID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.completions, completionKey{userID, taskID})
	return nil
}

func (r *fakeSubmissionRepo) IsCompleted(_ context.Context, userID, taskID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completions[completionKey{userID, taskID}], nil
}

func (r *fakeSubmissionRepo) CompletedTaskIDs(_ context.Context, userID string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for k := range r.completions {
		if k.userID == userID {
			out[k.taskID] = true
		}
	}
	return out, nil
}

type fakeInsightRepo struct {
	byDept map[string]*model.DepartmentInsights
	reads  int
}

func (r *fakeInsightRepo) Upsert(_ context.Context, di *model.DepartmentInsights) error {
	if r.byDept == nil {
		r.byDept = map[string]*model.DepartmentInsights{}
	}
	r.byDept[di.Department] = di
	return nil
}

func (r *fakeInsightRepo) GetByDepartment(_ context.Context, dept string) (*model.DepartmentInsights, error) {
	r.reads++
	return r.byDept[dept], nil
}

type fakeInsightCache struct {
	reports     map[string]*model.InsightReport
	getErr      error
	invalidated []string
}

func (c *fakeInsightCache) Get(_ context.Context, dept string) (*model.InsightReport, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.reports[dept], nil
}

func (c *fakeInsightCache) Set(_ context.Context, r *model.InsightReport) error {
	if c.reports == nil {
		c.reports = map[string]*model.InsightReport{}
	}
	c.reports[r.Department] = r
	return nil
}

func (c *fakeInsightCache) Invalidate(_ context.Context, dept string) error {
	delete(c.reports, dept)
	c.invalidated = append(c.invalidated, dept)
	return nil
}

func mustHash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}

func sprintTask() *model.Task {
	return &model.Task{
		ID:         "retro-1",
		Title:      "Sprint retro",
		Department: "eng",
		Questions: []model.Question{
			{ID: "q1", Text: "What went well?"},
			{ID: "q2", Text: "What did not?"},
		},
	}
}
