// Package watchlist orchestrates watchlist persistence and live metadata
// enrichment.
package watchlist

import (
	"context"
	"errors"
	"fmt"

	"entertainmenttracker/models"
	"entertainmenttracker/services/enrichment"

	"github.com/sourcegraph/conc/pool"
)

var (
	ErrUserIDRequired   = errors.New("user id is required")
	ErrMediaIDRequired  = errors.New("media id is required")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidMediaType = errors.New("invalid media type")
)

// enrichConcurrency caps parallel gateway calls per list request so one
// large watchlist cannot flood the upstream catalogs.
const enrichConcurrency = 4

// Store is the persistence surface the service needs.
type Store interface {
	ListByUser(user string) ([]models.WatchlistItem, error)
	GetByID(user, id string) (*models.WatchlistItem, error)
	AddOrGet(user string, upsert models.WatchlistUpsert) (*models.WatchlistItem, bool, error)
	UpdateStatusProgress(user, id, status string, progress int) (*models.WatchlistItem, error)
	UpdateProgress(user, id string, progress int) (*models.WatchlistItem, error)
	Delete(user, id string) (string, error)
}

// Service coordinates the watchlist store with the enrichment gateway.
type Service struct {
	store   Store
	gateway enrichment.Gateway
}

// NewService creates a watchlist service. gateway may be nil, in which case
// list responses carry stored values only.
func NewService(store Store, gateway enrichment.Gateway) *Service {
	return &Service{store: store, gateway: gateway}
}

// List returns the user's watchlist with live enrichment overlaid. Gateway
// calls run in parallel with a bounded pool; a failed or empty fetch leaves
// the stored values in place. Persisted rows are never modified by a read.
func (s *Service) List(ctx context.Context, user string) ([]models.WatchlistItem, error) {
	if user == "" {
		return nil, ErrUserIDRequired
	}

	items, err := s.store.ListByUser(user)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	if s.gateway == nil || len(items) == 0 {
		return items, nil
	}

	p := pool.New().WithMaxGoroutines(enrichConcurrency)
	for i := range items {
		p.Go(func() {
			result := s.gateway.Fetch(ctx, items[i].MediaType, items[i].MediaID)
			overlay(&items[i], result)
		})
	}
	p.Wait()

	return items, nil
}

// Add stores a new watchlist item, or returns the existing one when the user
// already tracks that media. The returned flag reports whether a row was
// created.
func (s *Service) Add(ctx context.Context, user string, upsert models.WatchlistUpsert) (*models.WatchlistItem, bool, error) {
	if user == "" {
		return nil, false, ErrUserIDRequired
	}
	if upsert.MediaID == "" {
		return nil, false, ErrMediaIDRequired
	}
	if upsert.Title == "" {
		return nil, false, ErrTitleRequired
	}
	if !models.ValidMediaType(upsert.MediaType) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidMediaType, upsert.MediaType)
	}

	item, created, err := s.store.AddOrGet(user, upsert)
	if err != nil {
		return nil, false, fmt.Errorf("add watchlist item: %w", err)
	}
	return item, created, nil
}

// UpdateStatus sets status and progress on an owned item.
func (s *Service) UpdateStatus(ctx context.Context, user, id, status string, progress int) (*models.WatchlistItem, error) {
	if user == "" {
		return nil, ErrUserIDRequired
	}
	return s.store.UpdateStatusProgress(user, id, status, progress)
}

// UpdateProgress sets only the episode/chapter counter on an owned item.
func (s *Service) UpdateProgress(ctx context.Context, user, id string, progress int) (*models.WatchlistItem, error) {
	if user == "" {
		return nil, ErrUserIDRequired
	}
	return s.store.UpdateProgress(user, id, progress)
}

// Remove deletes an owned item and returns its title for confirmation
// messaging.
func (s *Service) Remove(ctx context.Context, user, id string) (string, error) {
	if user == "" {
		return "", ErrUserIDRequired
	}
	return s.store.Delete(user, id)
}

// overlay copies non-empty enrichment fields onto the display copy of an
// item. Fields the upstream did not know keep their stored values.
func overlay(item *models.WatchlistItem, result enrichment.Result) {
	if result.IsZero() {
		return
	}
	if len(result.Genres) > 0 {
		item.Genres = result.Genres
	}
	if result.Creator != "" {
		item.Creator = result.Creator
	}
	if result.Year != "" {
		item.Year = result.Year
	}
	if result.Rating != 0 {
		item.Rating = result.Rating
	}
	if result.TotalEpisodes != nil {
		item.TotalEpisodes = result.TotalEpisodes
	}
}
