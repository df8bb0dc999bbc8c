package handlers

import (
	"context"
	"net/http"
	"time"
)

// pinger is satisfied by *database.DB
type pinger interface {
	PingContext(ctx context.Context) error
}

// Healthz reports whether the database answers
func Healthz(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", "Health check failed", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
