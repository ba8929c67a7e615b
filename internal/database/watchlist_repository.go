package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entertainmenttracker/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no row matches both the id and the
	// requesting user. Rows owned by other users are indistinguishable
	// from absent rows.
	ErrNotFound = errors.New("watchlist item not found")
	// ErrInvalidStatus is returned for a status outside the supported set.
	ErrInvalidStatus = errors.New("invalid watchlist status")
	// ErrInvalidProgress is returned for a negative progress value.
	ErrInvalidProgress = errors.New("progress must be non-negative")
)

// WatchlistRepository handles watchlist item persistence.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new watchlist repository.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

const watchlistColumns = `id, user_id, media_id, media_type, title, poster_path,
	status, progress, total_episodes, genres, creator, year, rating,
	date_added, date_updated`

// ListByUser returns all watchlist items owned by user in insertion order.
func (r *WatchlistRepository) ListByUser(user string) ([]models.WatchlistItem, error) {
	rows, err := r.db.Query(`
		SELECT `+watchlistColumns+`
		FROM watchlist_items
		WHERE user_id = ?
		ORDER BY date_added, id`, user)
	if err != nil {
		return nil, fmt.Errorf("list watchlist items: %w", err)
	}
	defer rows.Close()

	items := []models.WatchlistItem{}
	for rows.Next() {
		item, err := scanWatchlistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist items: %w", err)
	}
	return items, nil
}

// GetByID returns the item with the given id if it is owned by user.
func (r *WatchlistRepository) GetByID(user, id string) (*models.WatchlistItem, error) {
	row := r.db.QueryRow(`
		SELECT `+watchlistColumns+`
		FROM watchlist_items
		WHERE id = ? AND user_id = ?`, id, user)

	item, err := scanWatchlistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AddOrGet inserts a new item for (user, media id, media type) or returns the
// existing one unchanged. The insert uses ON CONFLICT DO NOTHING followed by a
// re-select inside one transaction, so concurrent adds for the same key can
// never create two rows. New rows start as plan_to_watch with zero progress.
func (r *WatchlistRepository) AddOrGet(user string, upsert models.WatchlistUpsert) (*models.WatchlistItem, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin add transaction: %w", err)
	}
	defer tx.Rollback()

	creator := upsert.Creator
	if creator == "" {
		creator = models.DefaultCreator
	}
	genres := upsert.Genres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return nil, false, fmt.Errorf("encode genres: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.Exec(`
		INSERT INTO watchlist_items (
			id, user_id, media_id, media_type, title, poster_path,
			status, progress, total_episodes, genres, creator, year, rating,
			date_added, date_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT (user_id, media_id, media_type) DO NOTHING`,
		uuid.NewString(), user, upsert.MediaID, upsert.MediaType, upsert.Title,
		upsert.PosterPath, models.StatusPlanToWatch, upsert.TotalEpisodes,
		string(genresJSON), creator, upsert.Year, now, now)
	if err != nil {
		return nil, false, fmt.Errorf("insert watchlist item: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert watchlist item: %w", err)
	}

	row := tx.QueryRow(`
		SELECT `+watchlistColumns+`
		FROM watchlist_items
		WHERE user_id = ? AND media_id = ? AND media_type = ?`,
		user, upsert.MediaID, upsert.MediaType)
	item, err := scanWatchlistItem(row)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit add transaction: %w", err)
	}
	return item, inserted > 0, nil
}

// UpdateStatusProgress sets both status and progress on an owned item and
// bumps date_updated. Validation happens before any row is touched.
func (r *WatchlistRepository) UpdateStatusProgress(user, id, status string, progress int) (*models.WatchlistItem, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if progress < 0 {
		return nil, ErrInvalidProgress
	}

	res, err := r.db.Exec(`
		UPDATE watchlist_items
		SET status = ?, progress = ?, date_updated = ?
		WHERE id = ? AND user_id = ?`,
		status, progress, time.Now().UTC(), id, user)
	if err != nil {
		return nil, fmt.Errorf("update watchlist item: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update watchlist item: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(user, id)
}

// UpdateProgress sets only the progress counter on an owned item.
func (r *WatchlistRepository) UpdateProgress(user, id string, progress int) (*models.WatchlistItem, error) {
	if progress < 0 {
		return nil, ErrInvalidProgress
	}

	res, err := r.db.Exec(`
		UPDATE watchlist_items
		SET progress = ?, date_updated = ?
		WHERE id = ? AND user_id = ?`,
		progress, time.Now().UTC(), id, user)
	if err != nil {
		return nil, fmt.Errorf("update watchlist progress: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update watchlist progress: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(user, id)
}

// Delete removes an owned item and returns its title for confirmation
// messaging.
func (r *WatchlistRepository) Delete(user, id string) (string, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	var title string
	err = tx.QueryRow(`SELECT title FROM watchlist_items WHERE id = ? AND user_id = ?`, id, user).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load watchlist item for delete: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM watchlist_items WHERE id = ? AND user_id = ?`, id, user); err != nil {
		return "", fmt.Errorf("delete watchlist item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit delete transaction: %w", err)
	}
	return title, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanWatchlistItem(s scanner) (*models.WatchlistItem, error) {
	var (
		item       models.WatchlistItem
		total      sql.NullInt64
		genresJSON string
	)
	err := s.Scan(
		&item.ID, &item.User, &item.MediaID, &item.MediaType, &item.Title,
		&item.PosterPath, &item.Status, &item.Progress, &total, &genresJSON,
		&item.Creator, &item.Year, &item.Rating, &item.DateAdded, &item.DateUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("scan watchlist item: %w", err)
	}

	if total.Valid {
		n := int(total.Int64)
		item.TotalEpisodes = &n
	}
	item.Genres = []string{}
	if genresJSON != "" {
		if err := json.Unmarshal([]byte(genresJSON), &item.Genres); err != nil {
			return nil, fmt.Errorf("decode genres: %w", err)
		}
	}
	return &item, nil
}
