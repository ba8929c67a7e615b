package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"entertainmenttracker/internal/auth"
)

// Re-export from auth package so handlers only need one import.
var GetUserID = auth.GetUserID

// UserMiddleware creates middleware that extracts the user identity from the
// {userID} route variable and injects it into the request context. There is
// no authentication layer; the identity is an opaque caller-supplied key.
func UserMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			vars := mux.Vars(r)
			userID := strings.TrimSpace(vars["userID"])
			if userID == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "user id is required"})
				return
			}

			ctx := context.WithValue(r.Context(), auth.ContextKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
