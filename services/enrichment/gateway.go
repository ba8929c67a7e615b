package enrichment

import (
	"context"
	"log"
	"time"

	"entertainmenttracker/models"
)

// Result carries display metadata fetched live from an upstream catalog.
// It is overlay data only and is never written back to the store.
type Result struct {
	Genres        []string
	Creator       string
	Year          string
	Rating        float64
	TotalEpisodes *int
}

// IsZero reports whether the result carries no metadata at all.
func (r Result) IsZero() bool {
	return len(r.Genres) == 0 && r.Creator == "" && r.Year == "" &&
		r.Rating == 0 && r.TotalEpisodes == nil
}

// Gateway fetches enrichment metadata for a media item. Implementations must
// never fail the caller: any upstream or parsing problem degrades to the zero
// Result so a watchlist read can always fall back to stored values.
type Gateway interface {
	Fetch(ctx context.Context, mediaType, mediaID string) Result
}

// Provider fetches metadata for a single media type from one upstream
// catalog. Unlike Gateway, providers report their errors so the multi
// provider can log them.
type Provider interface {
	Fetch(ctx context.Context, mediaID string) (Result, error)
}

// DefaultFetchTimeout bounds a single provider call. A slow catalog should
// delay one list render, not hang it.
const DefaultFetchTimeout = 10 * time.Second

// MultiProvider routes enrichment requests to per-media-type providers.
type MultiProvider struct {
	providers map[string]Provider
	timeout   time.Duration
}

// NewMultiProvider creates a gateway over the given media type -> provider
// mapping. Media types without a provider resolve to the zero Result.
func NewMultiProvider(providers map[string]Provider) *MultiProvider {
	return &MultiProvider{providers: providers, timeout: DefaultFetchTimeout}
}

// NewDefaultGateway wires the standard provider set: TMDB for movies and tv,
// AniList for anime and manga, Google Books for books.
func NewDefaultGateway(tmdbAPIKey string) *MultiProvider {
	tmdb := NewTMDBClient(tmdbAPIKey, nil)
	anilist := NewAniListClient(nil)
	return NewMultiProvider(map[string]Provider{
		models.MediaTypeMovie: movieProvider{tmdb},
		models.MediaTypeTV:    tvProvider{tmdb},
		models.MediaTypeAnime: animeProvider{anilist},
		models.MediaTypeManga: mangaProvider{anilist},
		models.MediaTypeBook:  NewBooksClient(nil),
	})
}

// Fetch implements Gateway.
func (m *MultiProvider) Fetch(ctx context.Context, mediaType, mediaID string) Result {
	provider, ok := m.providers[mediaType]
	if !ok {
		return Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	result, err := provider.Fetch(ctx, mediaID)
	if err != nil {
		log.Printf("[enrichment] fetch %s/%s failed, using stored values: %v", mediaType, mediaID, err)
		return Result{}
	}
	return result
}

// Thin adapters binding the media type onto the shared clients.

type movieProvider struct{ c *TMDBClient }

func (p movieProvider) Fetch(ctx context.Context, mediaID string) (Result, error) {
	return p.c.FetchMovie(ctx, mediaID)
}

type tvProvider struct{ c *TMDBClient }

func (p tvProvider) Fetch(ctx context.Context, mediaID string) (Result, error) {
	return p.c.FetchTV(ctx, mediaID)
}

type animeProvider struct{ c *AniListClient }

func (p animeProvider) Fetch(ctx context.Context, mediaID string) (Result, error) {
	return p.c.FetchMedia(ctx, mediaID, "ANIME")
}

type mangaProvider struct{ c *AniListClient }

func (p mangaProvider) Fetch(ctx context.Context, mediaID string) (Result, error) {
	return p.c.FetchMedia(ctx, mediaID, "MANGA")
}
