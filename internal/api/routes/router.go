package routes

import (
	"net/http"

	"github.com/agrivalor/equipment-valuation/internal/api/handlers"
	"github.com/agrivalor/equipment-valuation/internal/api/middleware"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	valuationHandler *handlers.ValuationHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(valuationHandler *handlers.ValuationHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		valuationHandler: valuationHandler,
		metrics:          metrics,
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

	// Valuation endpoint
	r.mux.HandleFunc("POST /api/valuations", r.valuationHandler.CreateValuation)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so preflight responses also get its headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
