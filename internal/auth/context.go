package auth

import "net/http"

// ContextKey is the type used for context keys
type ContextKey string

// ContextKeyUserID is the key for the user ID in the context
const ContextKeyUserID ContextKey = "userID"

// GetUserID retrieves the user ID from the request context. The identity is
// supplied by the caller and validated only for presence; there is no
// session layer in front of it.
func GetUserID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeyUserID).(string); ok {
		return id
	}
	return ""
}
