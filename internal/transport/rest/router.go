package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"secureview/internal/logger"
	"secureview/internal/model"
	"secureview/internal/service"
	"secureview/internal/transport/rest/handler"
	"secureview/internal/transport/rest/middleware"
	"secureview/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	TaskService    *service.TaskService
	SessionService *service.SessionService
	InsightService *service.InsightService
	WSHub          *ws.Hub
	Log            *logger.Logger
	CORSOrigins    []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.SessionService, c.Log)
	taskHandler := handler.NewTaskHandler(c.TaskService, c.Log)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.Log)
	insightHandler := handler.NewInsightHandler(c.InsightService, c.Log)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))
	r.Use(middleware.RequestLogger(c.Log))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/tasks/{taskId}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Any authenticated user
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireAuth)

	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	authed.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")

	// Employee routes
	employee := v1.NewRoute().Subrouter()
	employee.Use(authMW.RequireAuth, middleware.RequireRole(model.RoleEmployee))

	employee.HandleFunc("/tasks", taskHandler.List).Methods("GET", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}", taskHandler.Get).Methods("GET", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session", sessionHandler.Open).Methods("GET", "POST", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session/answers/{questionId}", sessionHandler.SetAnswer).Methods("PUT", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session/navigate", sessionHandler.Navigate).Methods("POST", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session/back", sessionHandler.Back).Methods("POST", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session/flush", sessionHandler.Flush).Methods("POST", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session/confirm", sessionHandler.Confirm).Methods("POST", "OPTIONS")
	employee.HandleFunc("/tasks/{taskId}/session/cancel", sessionHandler.Cancel).Methods("POST", "OPTIONS")

	// Manager routes
	manager := v1.NewRoute().Subrouter()
	manager.Use(authMW.RequireAuth, middleware.RequireRole(model.RoleManager))

	manager.HandleFunc("/insights/{department}", insightHandler.Get).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowed := make(map[string]bool, len(origins))
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", "Authorization", middleware.RequestIDHeader}, ", "))

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
