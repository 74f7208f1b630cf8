package service

import (
	"context"

	"secureview/internal/logger"
	"secureview/internal/model"
	"secureview/internal/repository"
	"secureview/internal/session"
)

// SessionService resolves the live response session of an employee for a task
type SessionService struct {
	tasks       *TaskService
	submissions repository.SubmissionRepo
	manager     *session.Manager
	broadcaster Broadcaster
	log         *logger.Logger
}

// NewSessionService creates a new session service and subscribes it to session events
func NewSessionService(tasks *TaskService, submissions repository.SubmissionRepo, manager *session.Manager, log *logger.Logger) *SessionService {
	s := &SessionService{
		tasks:       tasks,
		submissions: submissions,
		manager:     manager,
		log:         log.With("component", "sessions"),
	}
	manager.SetPublisher(s)
	return s
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Open returns the caller's session for taskID, resuming its draft on first use.
func (s *SessionService) Open(ctx context.Context, p *model.Principal, taskID string) (*session.Session, error) {
	if sess, ok := s.manager.Get(p.UserID, taskID); ok {
		return sess, nil
	}

	task, err := s.tasks.Get(ctx, p, taskID)
	if err != nil {
		return nil, err
	}
	done, err := s.submissions.IsCompleted(ctx, p.UserID, taskID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadySubmitted
	}
	return s.manager.Open(ctx, *p, task)
}

// EndUser flushes the user's sessions and drops their WebSocket connections.
func (s *SessionService) EndUser(ctx context.Context, userID string) error {
	if s.broadcaster != nil {
		s.broadcaster.DisconnectUser(userID)
	}
	return s.manager.EvictUser(ctx, userID)
}

// Shutdown flushes every live session.
func (s *SessionService) Shutdown(ctx context.Context) error {
	return s.manager.CloseAll(ctx)
}

// PublishSessionEvent forwards a session event to the owner's WebSocket connections.
func (s *SessionService) PublishSessionEvent(userID string, ev session.Event) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.SendToUser(userID, ev.TaskID, ev.Type, ev)
}
