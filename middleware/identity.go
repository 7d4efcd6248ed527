package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"aura_server/models"
)

// UserIDHeader carries the caller id set by the upstream gateway
const UserIDHeader = "X-User-ID"

type ctxKey struct{}

// Identity rejects requests without a caller id and stores it on the context
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			log.Printf("🚫 [IDENTITY] Missing %s for %s", UserIDHeader, r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing caller identity"}`))
			return
		}
		if !models.ValidUserID(userID) {
			log.Printf("🚫 [IDENTITY] Malformed caller id for %s", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"malformed caller identity"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the caller id stored by Identity
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
