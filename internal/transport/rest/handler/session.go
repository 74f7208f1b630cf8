package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"secureview/internal/logger"
	"secureview/internal/service"
	"secureview/internal/session"
	"secureview/internal/transport/rest/middleware"
)

// SessionHandler drives an employee's response session for one task
type SessionHandler struct {
	sessionSvc *service.SessionService
	log        *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, log: log}
}

// AnswerRequest is the request body for setting an answer
type AnswerRequest struct {
	Text string `json:"text"`
}

// NavigateRequest is the request body for jumping to a question
type NavigateRequest struct {
	Index *int `json:"index"`
}

// act resolves the caller's session, applies op and answers with the resulting view.
func (h *SessionHandler) act(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, s *session.Session) error) {
	p := middleware.GetPrincipal(r.Context())
	s, err := h.sessionSvc.Open(r.Context(), p, mux.Vars(r)["taskId"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if op != nil {
		if err := op(r.Context(), s); err != nil {
			writeServiceError(w, h.log, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// Open handles POST and GET /v1/tasks/{taskId}/session
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, nil)
}

// SetAnswer handles PUT /v1/tasks/{taskId}/session/answers/{questionId}
func (h *SessionHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	questionID := mux.Vars(r)["questionId"]
	h.act(w, r, func(_ context.Context, s *session.Session) error {
		return s.SetAnswer(questionID, req.Text)
	})
}

// Navigate handles POST /v1/tasks/{taskId}/session/navigate
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}
	h.act(w, r, func(_ context.Context, s *session.Session) error {
		return s.Navigate(*req.Index)
	})
}

// Next handles POST /v1/tasks/{taskId}/session/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(_ context.Context, s *session.Session) error { return s.Next() })
}

// Back handles POST /v1/tasks/{taskId}/session/back
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(_ context.Context, s *session.Session) error { return s.Back() })
}

// Flush handles POST /v1/tasks/{taskId}/session/flush
func (h *SessionHandler) Flush(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, s *session.Session) error { return s.AutosaveFlush(ctx) })
}

// Submit handles POST /v1/tasks/{taskId}/session/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(_ context.Context, s *session.Session) error { return s.RequestSubmit() })
}

// Cancel handles POST /v1/tasks/{taskId}/session/cancel
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(_ context.Context, s *session.Session) error { return s.CancelSubmit() })
}

// Confirm handles POST /v1/tasks/{taskId}/session/confirm
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, s *session.Session) error {
		err := s.ConfirmSubmit(ctx)
		var subErr *session.SubmissionError
		if errors.As(err, &subErr) {
			h.log.Warn("submission rejected", "task_id", subErr.TaskID, "error", subErr.Err)
		}
		return err
	})
}
