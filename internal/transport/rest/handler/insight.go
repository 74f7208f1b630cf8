package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"secureview/internal/logger"
	"secureview/internal/service"
	"secureview/internal/transport/rest/middleware"
)

// InsightHandler handles manager insight endpoints
type InsightHandler struct {
	insightSvc *service.InsightService
	log        *logger.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightSvc *service.InsightService, log *logger.Logger) *InsightHandler {
	return &InsightHandler{insightSvc: insightSvc, log: log}
}

// Get handles GET /v1/insights/{department}
func (h *InsightHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.insightSvc.ReportFor(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["department"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
