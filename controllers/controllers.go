package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"aura_server/services"
)

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Aura"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

// StatusFor maps a service error onto an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUserExists), errors.Is(err, services.ErrConcurrentMatchConflict),
		errors.Is(err, services.ErrPairKeyCollision):
		return http.StatusConflict
	case errors.Is(err, services.ErrSelfAction), errors.Is(err, services.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrBlocked), errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case services.IsNoop(err):
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ Internal error: %v", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// parseSeed reads an optional uint64 query parameter
func parseSeed(r *http.Request, fallback uint64) (uint64, bool) {
	raw := r.URL.Query().Get("seed")
	if raw == "" {
		return fallback, true
	}
	seed, err := strconv.ParseUint(raw, 10, 64)
	return seed, err == nil
}
