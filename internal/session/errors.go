package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition  = errors.New("operation not allowed in current session state")
	ErrSessionClosed      = errors.New("session already submitted")
	ErrSubmissionInFlight = errors.New("submission in progress")
	ErrNoQuestions        = errors.New("task has no questions")
	ErrDuplicateQuestion  = errors.New("duplicate question id")
	ErrIndexOutOfRange    = errors.New("question index out of range")
)

// ValidationError rejects an advance or submit while required answers are missing.
// It never reaches the network.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: unanswered %s", e.Reason, strings.Join(e.Missing, ", "))
}

// DraftLoadError means a stored draft could not be read or decoded. The session
// recovers by starting empty.
type DraftLoadError struct {
	TaskID string
	Err    error
}

func (e *DraftLoadError) Error() string {
	return fmt.Sprintf("load draft for task %s: %v", e.TaskID, e.Err)
}

func (e *DraftLoadError) Unwrap() error { return e.Err }

// DraftSaveError means an autosave write failed. Editing continues.
type DraftSaveError struct {
	TaskID string
	Err    error
}

func (e *DraftSaveError) Error() string {
	return fmt.Sprintf("autosave failed for task %s: %v", e.TaskID, e.Err)
}

func (e *DraftSaveError) Unwrap() error { return e.Err }

// SubmissionError means the Submitter rejected or failed to deliver the answers.
// The buffer and draft are preserved so the user can retry.
type SubmissionError struct {
	TaskID string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit feedback for task %s: %v", e.TaskID, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
