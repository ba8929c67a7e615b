package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// TMDBClient fetches movie and tv metadata from the TMDB v3 API using a
// bearer access token.
type TMDBClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// NewTMDBClient creates a TMDB client. httpc may be nil.
func NewTMDBClient(apiKey string, httpc *http.Client) *TMDBClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &TMDBClient{apiKey: apiKey, baseURL: tmdbBaseURL, httpc: httpc}
}

// SetBaseURL overrides the API base URL. Used by tests to point at a fake
// server.
func (c *TMDBClient) SetBaseURL(base string) {
	c.baseURL = base
}

type tmdbGenre struct {
	Name string `json:"name"`
}

type tmdbDetails struct {
	Genres           []tmdbGenre `json:"genres"`
	ReleaseDate      string      `json:"release_date"`
	FirstAirDate     string      `json:"first_air_date"`
	VoteAverage      float64     `json:"vote_average"`
	NumberOfEpisodes *int        `json:"number_of_episodes"`
	CreatedBy        []struct {
		Name string `json:"name"`
	} `json:"created_by"`
}

type tmdbCredits struct {
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

// FetchMovie returns genres, director, release year and vote average for a
// movie. The director requires a second call to the credits endpoint.
func (c *TMDBClient) FetchMovie(ctx context.Context, mediaID string) (Result, error) {
	var details tmdbDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%s", mediaID), &details); err != nil {
		return Result{}, err
	}

	result := Result{
		Genres: genreNames(details.Genres),
		Year:   yearOf(details.ReleaseDate),
		Rating: details.VoteAverage,
	}

	// A failed credits lookup only loses the director, not the whole result.
	var credits tmdbCredits
	if err := c.get(ctx, fmt.Sprintf("/movie/%s/credits", mediaID), &credits); err == nil {
		for _, crew := range credits.Crew {
			if crew.Job == "Director" {
				result.Creator = crew.Name
				break
			}
		}
	}

	return result, nil
}

// FetchTV returns genres, first-listed creator, first-air year, vote average
// and the known episode count for a tv show.
func (c *TMDBClient) FetchTV(ctx context.Context, mediaID string) (Result, error) {
	var details tmdbDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%s", mediaID), &details); err != nil {
		return Result{}, err
	}

	result := Result{
		Genres:        genreNames(details.Genres),
		Year:          yearOf(details.FirstAirDate),
		Rating:        details.VoteAverage,
		TotalEpisodes: details.NumberOfEpisodes,
	}
	if len(details.CreatedBy) > 0 {
		result.Creator = details.CreatedBy[0].Name
	}
	return result, nil
}

func (c *TMDBClient) get(ctx context.Context, path string, out any) error {
	return retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("tmdb %s: %s", path, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return retry.Unrecoverable(fmt.Errorf("tmdb %s: %s", path, resp.Status))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Unrecoverable(fmt.Errorf("tmdb %s: decode response: %w", path, err))
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

func genreNames(genres []tmdbGenre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

// yearOf extracts the year from a yyyy-mm-dd date, matching the display
// format stored on watchlist rows.
func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
