package routes

import (
	"net/http"

	"github.com/consilium-health/consilium/internal/api/handlers"
	"github.com/consilium-health/consilium/internal/api/middleware"
	"github.com/consilium-health/consilium/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	consultationHandler *handlers.ConsultationHandler
	triageHandler       *handlers.TriageHandler
	sessionHandler      *handlers.SessionHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	consultationHandler *handlers.ConsultationHandler,
	triageHandler *handlers.TriageHandler,
	sessionHandler *handlers.SessionHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		consultationHandler: consultationHandler,
		triageHandler:       triageHandler,
		sessionHandler:      sessionHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Consultation endpoints
	r.mux.HandleFunc("POST /api/consultations", r.consultationHandler.CreateConsultation)
	r.mux.HandleFunc("GET /api/consultations/{id}", r.consultationHandler.GetConsultation)

	// Triage endpoint (standalone emergency assessment)
	r.mux.HandleFunc("POST /api/triage", r.triageHandler.AssessEmergency)

	// Session endpoints
	r.mux.HandleFunc("GET /api/sessions/{id}/consultations", r.consultationHandler.ListSessionConsultations)
	if r.sessionHandler != nil {
		r.mux.HandleFunc("GET /api/sessions/{id}/history", r.sessionHandler.GetHistory)
		r.mux.HandleFunc("DELETE /api/sessions/{id}/history", r.sessionHandler.ClearHistory)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflight requests short-circuit first
	handler = middleware.CORSMiddleware(handler)

	return handler
}
