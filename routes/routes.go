package routes

import (
	"aura_server/controllers"
	"aura_server/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up the public routes that need no caller identity
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/privacy-policy", PrivacyPolicyHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// NewAPIRouter mounts the /api subrouter. Every route on it requires the
// caller identity set by the gateway.
func NewAPIRouter(r *mux.Router) *mux.Router {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Identity)
	return api
}
