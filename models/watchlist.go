package models

import "time"

// Media types a watchlist entry can reference. The type decides which
// upstream catalog supplies enrichment metadata.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
	MediaTypeAnime = "anime"
	MediaTypeManga = "manga"
	MediaTypeBook  = "book"
)

// Tracking statuses. New entries always start as StatusPlanToWatch; any
// status may follow any other.
const (
	StatusWatching    = "watching"
	StatusPlanToWatch = "plan_to_watch"
	StatusCompleted   = "completed"
	StatusDropped     = "dropped"
)

// DefaultCreator is stored when no creator is known for an entry.
const DefaultCreator = "Unknown"

// WatchlistItem represents a media entry a user is tracking.
// User is the owning key, not payload, so it is never serialized.
type WatchlistItem struct {
	ID            string    `json:"id"`
	User          string    `json:"-"`
	MediaID       string    `json:"media_id"`
	MediaType     string    `json:"media_type"`
	Title         string    `json:"title"`
	PosterPath    string    `json:"poster_path,omitempty"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	TotalEpisodes *int      `json:"total_episodes,omitempty"`
	Genres        []string  `json:"genres"`
	Creator       string    `json:"creator"`
	Year          string    `json:"year"`
	Rating        float64   `json:"rating"`
	DateAdded     time.Time `json:"date_added"`
	DateUpdated   time.Time `json:"date_updated"`
}

// WatchlistUpsert captures data required to insert a watchlist item. When a
// row for the same (user, media id, media type) already exists the payload is
// ignored and the existing row is returned unchanged.
type WatchlistUpsert struct {
	MediaID       string   `json:"media_id"`
	MediaType     string   `json:"media_type"`
	Title         string   `json:"title"`
	PosterPath    string   `json:"poster_path,omitempty"`
	TotalEpisodes *int     `json:"total_episodes,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Creator       string   `json:"creator,omitempty"`
	Year          string   `json:"year,omitempty"`
}

// Key returns a stable identifier combining media type and ID.
func (w WatchlistUpsert) Key() string {
	return w.MediaType + ":" + w.MediaID
}

// Key returns a stable identifier combining media type and ID.
func (w WatchlistItem) Key() string {
	return w.MediaType + ":" + w.MediaID
}

// ValidMediaType reports whether t is one of the supported media types.
func ValidMediaType(t string) bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypeAnime, MediaTypeManga, MediaTypeBook:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the supported tracking statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusWatching, StatusPlanToWatch, StatusCompleted, StatusDropped:
		return true
	}
	return false
}
