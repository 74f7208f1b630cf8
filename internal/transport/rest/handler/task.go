package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"secureview/internal/logger"
	"secureview/internal/service"
	"secureview/internal/transport/rest/middleware"
)

// TaskHandler handles feedback task endpoints
type TaskHandler struct {
	taskSvc *service.TaskService
	log     *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskSvc *service.TaskService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc, log: log}
}

// List handles GET /v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskSvc.List(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /v1/tasks/{taskId}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskSvc.Get(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["taskId"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}
