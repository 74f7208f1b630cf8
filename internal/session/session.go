// Package session drives one user's multi-question feedback form: buffering answers,
// debounced draft autosave and guarded submission.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"secureview/internal/clock"
	"secureview/internal/draft"
	"secureview/internal/logger"
	"secureview/internal/model"
)

const DefaultAutosaveDelay = 1500 * time.Millisecond

// Submitter delivers a completed buffer. It is called at most once at a time per session.
type Submitter interface {
	Submit(ctx context.Context, taskID string, responses model.ResponseBuffer) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, taskID string, responses model.ResponseBuffer) error

func (f SubmitterFunc) Submit(ctx context.Context, taskID string, responses model.ResponseBuffer) error {
	return f(ctx, taskID, responses)
}

// Options configures a Session. Store and Submitter are required.
type Options struct {
	Store     draft.Store
	Submitter Submitter
	Clock     clock.Scheduler
	Delay     time.Duration
	Log       *logger.Logger
	OnEvent   func(Event)
}

// Session is the state machine behind one feedback form. It is safe for concurrent use;
// store and network I/O never run under the session lock.
type Session struct {
	store     draft.Store
	submitter Submitter
	clock     clock.Scheduler
	delay     time.Duration
	log       *logger.Logger
	onEvent   func(Event)

	mu           sync.Mutex
	taskID       string
	questions    []model.Question
	index        map[string]int
	responses    model.ResponseBuffer
	current      int
	state        State
	saveStatus   SaveStatus
	lastSavedAt  time.Time
	warning      string
	lastErr      string
	dirty        bool
	flushing     bool
	pendingFlush bool
	timer        clock.Timer
	timerGen     uint64
	events       []Event
}

// New creates an idle session.
func New(opts Options) *Session {
	s := &Session{
		store:      opts.Store,
		submitter:  opts.Submitter,
		clock:      opts.Clock,
		delay:      opts.Delay,
		log:        opts.Log,
		onEvent:    opts.OnEvent,
		state:      StateIdle,
		saveStatus: SaveIdle,
		responses:  model.ResponseBuffer{},
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.delay <= 0 {
		s.delay = DefaultAutosaveDelay
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	return s
}

// Open binds the session to a task and restores its draft, if any. A draft that cannot be
// read is reported on the view and the session starts empty. If ctx ends before the draft
// is read, Open fails and the session stays idle.
func (s *Session) Open(ctx context.Context, taskID string, questions []model.Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		if _, dup := index[q.ID]; dup {
			return ErrDuplicateQuestion
		}
		index[q.ID] = i
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	baseLog := s.log
	s.taskID = taskID
	s.questions = append([]model.Question(nil), questions...)
	s.index = index
	s.log = s.log.With("task_id", taskID)
	s.mu.Unlock()

	rec, loadErr := s.loadDraft(ctx)

	s.mu.Lock()
	if loadErr != nil && ctx.Err() != nil {
		// an abandoned load says nothing about the stored draft; starting empty would
		// overwrite it on the next autosave
		s.log = baseLog
		s.mu.Unlock()
		return loadErr
	}
	if loadErr != nil {
		s.warning = loadErr.Error()
		s.log.Warn("starting with empty draft", "error", loadErr)
	}
	if rec != nil {
		for id, text := range rec.Responses {
			if _, ok := s.index[id]; ok {
				s.responses[id] = text
			}
		}
		s.current = clamp(rec.CurrentIndex, 0, len(s.questions)-1)
		s.lastSavedAt = rec.SavedAt
		s.saveStatus = SaveSaved
	}
	s.setStateLocked(StateEditing)
	events := s.takeEventsLocked()
	s.mu.Unlock()

	s.emit(events)
	return nil
}

func (s *Session) loadDraft(ctx context.Context) (*model.DraftRecord, error) {
	raw, err := s.store.Get(ctx, draft.Key(s.taskID))
	if err != nil {
		return nil, &DraftLoadError{TaskID: s.taskID, Err: err}
	}
	if raw == nil {
		return nil, nil
	}
	var rec model.DraftRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &DraftLoadError{TaskID: s.taskID, Err: err}
	}
	return &rec, nil
}

// SetAnswer records text for questionID and arms autosave. Unknown ids are ignored.
func (s *Session) SetAnswer(questionID, text string) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.index[questionID]; !ok {
		s.mu.Unlock()
		return nil
	}
	s.leaveConfirmLocked()
	s.responses[questionID] = text
	s.touchLocked()
	events := s.takeEventsLocked()
	s.mu.Unlock()

	s.emit(events)
	return nil
}

// Navigate jumps to the question at index.
func (s *Session) Navigate(index int) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if index < 0 || index >= len(s.questions) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	s.moveLocked(index)
	events := s.takeEventsLocked()
	s.mu.Unlock()

	s.emit(events)
	return nil
}

// Next advances one question. The current question must be answered first.
func (s *Session) Next() error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	q := s.questions[s.current]
	if !s.responses.HasAnswer(q.ID) {
		s.mu.Unlock()
		return &ValidationError{Missing: []string{q.ID}, Reason: "answer the current question before continuing"}
	}
	if s.current < len(s.questions)-1 {
		s.moveLocked(s.current + 1)
	}
	events := s.takeEventsLocked()
	s.mu.Unlock()

	s.emit(events)
	return nil
}

// Back moves to the previous question.
func (s *Session) Back() error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.current > 0 {
		s.moveLocked(s.current - 1)
	}
	events := s.takeEventsLocked()
	s.mu.Unlock()

	s.emit(events)
	return nil
}

func (s *Session) moveLocked(index int) {
	s.leaveConfirmLocked()
	if index == s.current {
		return
	}
	s.current = index
	s.touchLocked()
}

// RequestSubmit asks for confirmation once every question is answered.
func (s *Session) RequestSubmit() error {
	s.mu.Lock()
	switch s.state {
	case StateSubmitConfirmPending:
		s.mu.Unlock()
		return nil
	case StateEditing, StateSaving:
	default:
		err := s.stateErrLocked()
		s.mu.Unlock()
		return err
	}
	if missing := s.missingLocked(); len(missing) > 0 {
		s.mu.Unlock()
		return &ValidationError{Missing: missing, Reason: "all questions must be answered before submitting"}
	}
	s.setStateLocked(StateSubmitConfirmPending)
	events := s.takeEventsLocked()
	s.mu.Unlock()

	s.emit(events)
	return nil
}

// CancelSubmit leaves the confirmation step so the answers can be reviewed.
func (s *Session) CancelSubmit() error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.leaveConfirmLocked()
	events := s.takeEventsLocked()
	s.mu.Unlock()

	s.emit(events)
	return nil
}

// ConfirmSubmit hands the buffer to the Submitter. Once started it is not cancelled by ctx.
// On failure the session returns to Editing with buffer and draft intact.
func (s *Session) ConfirmSubmit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateSubmitConfirmPending {
		err := s.stateErrLocked()
		s.mu.Unlock()
		return err
	}
	s.stopTimerLocked()
	s.setStateLocked(StateSubmitting)
	taskID := s.taskID
	responses := s.responses.Clone()
	events := s.takeEventsLocked()
	s.mu.Unlock()
	s.emit(events)

	ctx = context.WithoutCancel(ctx)
	if err := s.submitter.Submit(ctx, taskID, responses); err != nil {
		subErr := &SubmissionError{TaskID: taskID, Err: err}
		s.log.Error("submission failed", "error", err)

		s.mu.Lock()
		s.setStateLocked(StateError)
		s.setStateLocked(StateEditing)
		if s.dirty {
			s.touchLocked()
		}
		s.lastErr = subErr.Error()
		s.queueLocked(Event{Type: EventSubmitFailed, Message: subErr.Error()})
		events := s.takeEventsLocked()
		s.mu.Unlock()
		s.emit(events)
		return subErr
	}

	s.mu.Lock()
	s.setStateLocked(StateSubmitted)
	s.lastErr = ""
	s.pendingFlush = false
	events = s.takeEventsLocked()
	s.mu.Unlock()

	if err := s.store.Delete(ctx, draft.Key(taskID)); err != nil {
		s.log.Warn("failed to delete draft after submission", "error", err)
	}
	s.log.Info("feedback submitted")
	s.emit(events)
	return nil
}

// AutosaveFlush writes the current draft now. Concurrent calls coalesce: while a write is
// in flight, further requests collapse into a single follow-up write.
func (s *Session) AutosaveFlush(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.stopTimerLocked()
	if s.state == StateSubmitting || s.state == StateSubmitted {
		s.mu.Unlock()
		return nil
	}
	if s.flushing {
		s.pendingFlush = true
		s.mu.Unlock()
		return nil
	}
	if !s.dirty || len(s.responses) == 0 {
		s.dirty = false
		if s.saveStatus == SavePending {
			s.setSaveStatusLocked(SaveIdle)
		}
		events := s.takeEventsLocked()
		s.mu.Unlock()
		s.emit(events)
		return nil
	}

	rec := model.DraftRecord{
		Responses:    s.responses.Clone(),
		CurrentIndex: s.current,
		SavedAt:      s.clock.Now().UTC(),
	}
	key := draft.Key(s.taskID)
	s.flushing = true
	s.dirty = false
	if s.state == StateEditing {
		s.setStateLocked(StateSaving)
	}
	s.setSaveStatusLocked(SaveSaving)
	events := s.takeEventsLocked()
	s.mu.Unlock()
	s.emit(events)

	err := s.write(ctx, key, rec)

	s.mu.Lock()
	s.flushing = false
	if err != nil {
		s.dirty = true
		s.lastErr = err.Error()
		s.setSaveStatusLocked(SaveFailed)
		if s.state == StateSaving {
			s.setStateLocked(StateError)
			s.setStateLocked(StateEditing)
		}
		s.queueLocked(Event{Type: EventAutosaveFailed, Message: err.Error()})
	} else {
		s.lastSavedAt = rec.SavedAt
		if s.saveStatus == SaveSaving {
			s.setSaveStatusLocked(SaveSaved)
		}
		if s.state == StateSaving {
			s.setStateLocked(StateEditing)
		}
	}
	orphaned := err == nil && s.state == StateSubmitted
	followUp := s.pendingFlush && s.state.acceptsEdits()
	s.pendingFlush = false
	events = s.takeEventsLocked()
	s.mu.Unlock()
	s.emit(events)

	if err != nil {
		s.log.Warn("autosave failed", "error", err)
	}
	if orphaned {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.log.Warn("failed to delete draft written during submission", "error", derr)
		}
	}
	if followUp {
		if ferr := s.AutosaveFlush(ctx); err == nil {
			err = ferr
		}
	}
	return err
}

func (s *Session) write(ctx context.Context, key string, rec model.DraftRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &DraftSaveError{TaskID: s.taskID, Err: err}
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return &DraftSaveError{TaskID: s.taskID, Err: err}
	}
	return nil
}

// Close stops the debounce timer and writes any unsaved edits.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	s.stopTimerLocked()
	unsaved := s.dirty && s.state.acceptsEdits()
	s.mu.Unlock()
	if !unsaved {
		return nil
	}
	return s.AutosaveFlush(ctx)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TaskID returns the task the session is bound to.
func (s *Session) TaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskID
}

// touchLocked marks the buffer dirty and (re)arms the debounce timer. During an in-flight
// write it schedules the follow-up instead.
func (s *Session) touchLocked() {
	s.dirty = true
	s.lastErr = ""
	s.setSaveStatusLocked(SavePending)
	if s.flushing {
		s.pendingFlush = true
		return
	}
	s.stopTimerLocked()
	s.timerGen++
	gen := s.timerGen
	s.timer = s.clock.Schedule(s.delay, func() { s.onTimer(gen) })
}

func (s *Session) onTimer(gen uint64) {
	s.mu.Lock()
	stale := gen != s.timerGen || s.timer == nil
	s.mu.Unlock()
	if stale {
		return
	}
	_ = s.AutosaveFlush(context.Background())
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) editableLocked() error {
	if s.state.acceptsEdits() {
		return nil
	}
	return s.stateErrLocked()
}

func (s *Session) stateErrLocked() error {
	switch s.state {
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateSubmitted:
		return ErrSessionClosed
	default:
		return ErrInvalidTransition
	}
}

func (s *Session) leaveConfirmLocked() {
	if s.state == StateSubmitConfirmPending {
		s.setStateLocked(StateEditing)
	}
}

func (s *Session) missingLocked() []string {
	var missing []string
	for _, q := range s.questions {
		if !s.responses.HasAnswer(q.ID) {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

func (s *Session) setStateLocked(to State) {
	from := s.state
	if from == to {
		return
	}
	if !CanTransition(from, to) {
		s.log.Error("illegal session transition", "from", from, "to", to)
		return
	}
	s.state = to
	s.queueLocked(Event{Type: EventStateChanged, From: from, State: to})
}

func (s *Session) setSaveStatusLocked(status SaveStatus) {
	if s.saveStatus == status {
		return
	}
	s.saveStatus = status
	s.queueLocked(Event{Type: EventSaveStatus, SaveStatus: status})
}

func (s *Session) queueLocked(ev Event) {
	ev.TaskID = s.taskID
	ev.At = s.clock.Now()
	if ev.State == "" {
		ev.State = s.state
	}
	if ev.SaveStatus == "" {
		ev.SaveStatus = s.saveStatus
	}
	s.events = append(s.events, ev)
}

func (s *Session) takeEventsLocked() []Event {
	ev := s.events
	s.events = nil
	return ev
}

func (s *Session) emit(events []Event) {
	if s.onEvent == nil {
		return
	}
	for _, ev := range events {
		s.onEvent(ev)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
