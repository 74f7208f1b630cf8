package session

import (
	"time"

	"secureview/internal/model"
)

const (
	EventStateChanged   = "session.state"
	EventSaveStatus     = "session.save_status"
	EventAutosaveFailed = "session.autosave_failed"
	EventSubmitFailed   = "session.submit_failed"
)

// Event is emitted after every observable change, outside the session lock.
type Event struct {
	Type       string     `json:"type"`
	TaskID     string     `json:"taskId"`
	From       State      `json:"from,omitempty"`
	State      State      `json:"state"`
	SaveStatus SaveStatus `json:"saveStatus"`
	Message    string     `json:"message,omitempty"`
	At         time.Time  `json:"at"`
}

// View is a read-only snapshot of a session for rendering.
type View struct {
	TaskID          string               `json:"taskId"`
	State           State                `json:"state"`
	CurrentIndex    int                  `json:"currentIndex"`
	CurrentQuestion *model.Question      `json:"currentQuestion,omitempty"`
	Questions       []model.Question     `json:"questions"`
	Responses       model.ResponseBuffer `json:"responses"`
	Answered        int                  `json:"answered"`
	Total           int                  `json:"total"`
	Progress        float64              `json:"progress"`
	CanSubmit       bool                 `json:"canSubmit"`
	SaveStatus      SaveStatus           `json:"saveStatus"`
	LastSavedAt     *time.Time           `json:"lastSavedAt,omitempty"`
	Warning         string               `json:"warning,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// Snapshot returns a copy of the session's observable state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		TaskID:       s.taskID,
		State:        s.state,
		CurrentIndex: s.current,
		Questions:    append([]model.Question(nil), s.questions...),
		Responses:    s.responses.Clone(),
		Total:        len(s.questions),
		SaveStatus:   s.saveStatus,
		Warning:      s.warning,
		Error:        s.lastErr,
	}
	if s.current < len(s.questions) {
		q := s.questions[s.current]
		v.CurrentQuestion = &q
	}
	for _, q := range s.questions {
		if s.responses.HasAnswer(q.ID) {
			v.Answered++
		}
	}
	if v.Total > 0 {
		v.Progress = float64(v.Answered) / float64(v.Total)
	}
	v.CanSubmit = v.Total > 0 && v.Answered == v.Total && s.state.acceptsEdits()
	if !s.lastSavedAt.IsZero() {
		t := s.lastSavedAt
		v.LastSavedAt = &t
	}
	return v
}
