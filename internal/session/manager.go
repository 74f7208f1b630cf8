package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"secureview/internal/clock"
	"secureview/internal/draft"
	"secureview/internal/logger"
	"secureview/internal/model"
)

// Publisher receives session events for the owning user.
type Publisher interface {
	PublishSessionEvent(userID string, ev Event)
}

// SubmitterFactory builds the Submitter used by one user's session for one task.
type SubmitterFactory func(p model.Principal, task *model.Task) Submitter

type sessionKey struct {
	userID string
	taskID string
}

type entry struct {
	ready chan struct{}
	s     *Session
	err   error
}

// DefaultLoadTimeout bounds draft hydration when a session is first opened.
const DefaultLoadTimeout = 10 * time.Second

// Manager owns the live sessions of every user. Each user gets drafts under its own
// key prefix, so two users never share a draft for the same task.
type Manager struct {
	store      draft.Store
	submitters SubmitterFactory
	clock      clock.Scheduler
	delay      time.Duration
	log        *logger.Logger
	publisher  Publisher

	loadTimeout time.Duration

	mu       sync.Mutex
	sessions map[sessionKey]*entry
}

// NewManager creates a manager backed by store.
func NewManager(store draft.Store, submitters SubmitterFactory, sched clock.Scheduler, delay time.Duration, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		store:      store,
		submitters: submitters,
		clock:      sched,
		delay:      delay,
		log:        log.With("component", "session_manager"),
		sessions:   make(map[sessionKey]*entry),

		loadTimeout: DefaultLoadTimeout,
	}
}

// SetPublisher wires the event sink, typically the WebSocket hub.
func (m *Manager) SetPublisher(p Publisher) {
	m.publisher = p
}

// Open returns the caller's live session for task, opening and hydrating it on first use.
// The session outlives the request, so hydration ignores the caller's cancellation and is
// bounded by loadTimeout instead. Sessions are forgotten once submitted.
func (m *Manager) Open(ctx context.Context, p model.Principal, task *model.Task) (*Session, error) {
	key := sessionKey{userID: p.UserID, taskID: task.ID}

	m.mu.Lock()
	if e, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		<-e.ready
		return e.s, e.err
	}
	e := &entry{ready: make(chan struct{})}
	m.sessions[key] = e
	m.mu.Unlock()

	userID := p.UserID
	s := New(Options{
		Store:     draft.WithPrefix(m.store, draft.UserPrefix(userID)),
		Submitter: m.submitters(p, task),
		Clock:     m.clock,
		Delay:     m.delay,
		Log:       m.log.With("user_id", userID),
		OnEvent: func(ev Event) {
			if m.publisher != nil {
				m.publisher.PublishSessionEvent(userID, ev)
			}
			if ev.Type == EventStateChanged && ev.State == StateSubmitted {
				m.forget(key, e)
			}
		},
	})

	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.loadTimeout)
	err := s.Open(hctx, task.ID, task.Questions)
	cancel()
	if err != nil {
		s = nil
		m.forget(key, e)
	}
	e.s, e.err = s, err
	close(e.ready)
	return s, err
}

// forget drops key only while it still maps to e.
func (m *Manager) forget(key sessionKey, e *entry) {
	m.mu.Lock()
	if m.sessions[key] == e {
		delete(m.sessions, key)
	}
	m.mu.Unlock()
}

// Get returns the live session of userID for taskID.
func (m *Manager) Get(userID, taskID string) (*Session, bool) {
	m.mu.Lock()
	e, ok := m.sessions[sessionKey{userID: userID, taskID: taskID}]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	<-e.ready
	return e.s, e.s != nil
}

// Evict flushes and forgets one session.
func (m *Manager) Evict(ctx context.Context, userID, taskID string) error {
	key := sessionKey{userID: userID, taskID: taskID}
	m.mu.Lock()
	e, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	<-e.ready
	if e.s == nil {
		return nil
	}
	return e.s.Close(ctx)
}

// EvictUser flushes and forgets every session of userID, e.g. on logout.
func (m *Manager) EvictUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	var taskIDs []string
	for k := range m.sessions {
		if k.userID == userID {
			taskIDs = append(taskIDs, k.taskID)
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, taskID := range taskIDs {
		if err := m.Evict(ctx, userID, taskID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll flushes every live session. Used on shutdown.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for k, e := range m.sessions {
		entries = append(entries, e)
		delete(m.sessions, k)
	}
	m.mu.Unlock()

	var errs []error
	for _, e := range entries {
		<-e.ready
		if e.s == nil {
			continue
		}
		if err := e.s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		m.log.Warn("sessions closed with errors", "count", len(errs))
	}
	return errors.Join(errs...)
}
