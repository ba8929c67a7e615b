package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"entertainmenttracker/internal/auth"
	"entertainmenttracker/internal/database"
	"entertainmenttracker/models"
	"entertainmenttracker/services/watchlist"

	"github.com/gorilla/mux"
)

type watchlistService interface {
	List(ctx context.Context, user string) ([]models.WatchlistItem, error)
	Add(ctx context.Context, user string, upsert models.WatchlistUpsert) (*models.WatchlistItem, bool, error)
	UpdateStatus(ctx context.Context, user, id, status string, progress int) (*models.WatchlistItem, error)
	UpdateProgress(ctx context.Context, user, id string, progress int) (*models.WatchlistItem, error)
	Remove(ctx context.Context, user, id string) (string, error)
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service watchlistService
}

func NewWatchlistHandler(service watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

// Register mounts the watchlist routes on a router already scoped to
// /api/users/{userID}/watchlist.
func (h *WatchlistHandler) Register(r *mux.Router) {
	r.HandleFunc("", h.List).Methods(http.MethodGet)
	r.HandleFunc("", h.Add).Methods(http.MethodPost)
	r.HandleFunc("", h.Options).Methods(http.MethodOptions)
	r.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/{id}", h.Remove).Methods(http.MethodDelete)
	r.HandleFunc("/{id}", h.Options).Methods(http.MethodOptions)
	r.HandleFunc("/{id}/progress", h.UpdateProgress).Methods(http.MethodPatch)
	r.HandleFunc("/{id}/progress", h.Options).Methods(http.MethodOptions)
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Service.List(r.Context(), userID)
	if err != nil {
		log.Printf("[watchlist] list for %s failed: %v", userID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load watchlist")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body models.WatchlistUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, created, err := h.Service.Add(r.Context(), userID, body)
	if err != nil {
		switch {
		case errors.Is(err, watchlist.ErrMediaIDRequired),
			errors.Is(err, watchlist.ErrTitleRequired),
			errors.Is(err, watchlist.ErrInvalidMediaType):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[watchlist] add for %s failed: %v", userID, err)
			writeJSONError(w, http.StatusInternalServerError, "failed to add watchlist item")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "success",
		"item_id": item.ID,
		"created": created,
	})
}

func (h *WatchlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var body struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.Service.UpdateStatus(r.Context(), userID, id, body.Status, body.Progress); err != nil {
		h.writeMutationError(w, userID, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

func (h *WatchlistHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var body struct {
		Progress int `json:"progress"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.Service.UpdateProgress(r.Context(), userID, id, body.Progress); err != nil {
		h.writeMutationError(w, userID, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	title, err := h.Service.Remove(r.Context(), userID, id)
	if err != nil {
		h.writeMutationError(w, userID, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Successfully deleted %s", title),
	})
}

func (h *WatchlistHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *WatchlistHandler) writeMutationError(w http.ResponseWriter, userID, id string, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, database.ErrInvalidStatus),
		errors.Is(err, database.ErrInvalidProgress):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[watchlist] mutation on %s for %s failed: %v", id, userID, err)
		writeJSONError(w, http.StatusInternalServerError, "watchlist update failed")
	}
}

func (h *WatchlistHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.GetUserID(r)
	if userID == "" {
		// Routes mounted without the user middleware still carry the
		// identity in the path.
		userID = strings.TrimSpace(mux.Vars(r)["userID"])
	}
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "user id is required")
		return "", false
	}
	return userID, true
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message})
}
