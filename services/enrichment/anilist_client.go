package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
)

const anilistEndpoint = "https://graphql.anilist.co"

// anilistQuery fetches the fields the watchlist overlays onto anime and
// manga entries. averageScore is a 0-100 percentage.
const anilistQuery = `query ($id: Int, $type: MediaType) {
  Media(id: $id, type: $type) {
    genres
    episodes
    chapters
    seasonYear
    startDate { year }
    averageScore
    studios(isMain: true) { nodes { name } }
    staff(perPage: 1) { nodes { name { full } } }
  }
}`

// AniListClient fetches anime and manga metadata from the AniList GraphQL
// API. No authentication is required for public media lookups.
type AniListClient struct {
	endpoint string
	httpc    *http.Client
}

// NewAniListClient creates an AniList client. httpc may be nil.
func NewAniListClient(httpc *http.Client) *AniListClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &AniListClient{endpoint: anilistEndpoint, httpc: httpc}
}

// SetEndpoint overrides the GraphQL endpoint. Used by tests.
func (c *AniListClient) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

type anilistResponse struct {
	Data struct {
		Media struct {
			Genres     []string `json:"genres"`
			Episodes   *int     `json:"episodes"`
			Chapters   *int     `json:"chapters"`
			SeasonYear *int     `json:"seasonYear"`
			StartDate  struct {
				Year *int `json:"year"`
			} `json:"startDate"`
			AverageScore *float64 `json:"averageScore"`
			Studios      struct {
				Nodes []struct {
					Name string `json:"name"`
				} `json:"nodes"`
			} `json:"studios"`
			Staff struct {
				Nodes []struct {
					Name struct {
						Full string `json:"full"`
					} `json:"name"`
				} `json:"nodes"`
			} `json:"staff"`
		} `json:"Media"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchMedia returns enrichment metadata for an AniList media id.
// mediaType is the AniList enum value, "ANIME" or "MANGA".
func (c *AniListClient) FetchMedia(ctx context.Context, mediaID, mediaType string) (Result, error) {
	id, err := strconv.Atoi(mediaID)
	if err != nil {
		return Result{}, fmt.Errorf("anilist: media id %q is not numeric", mediaID)
	}

	payload, err := json.Marshal(map[string]any{
		"query": anilistQuery,
		"variables": map[string]any{
			"id":   id,
			"type": mediaType,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("anilist: encode query: %w", err)
	}

	var parsed anilistResponse
	err = retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("anilist: %s", resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return retry.Unrecoverable(fmt.Errorf("anilist: %s", resp.Status))
		}

		parsed = anilistResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return retry.Unrecoverable(fmt.Errorf("anilist: decode response: %w", err))
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Result{}, err
	}
	if len(parsed.Errors) > 0 {
		return Result{}, fmt.Errorf("anilist: %s", parsed.Errors[0].Message)
	}

	media := parsed.Data.Media
	result := Result{Genres: media.Genres}

	switch {
	case media.SeasonYear != nil:
		result.Year = strconv.Itoa(*media.SeasonYear)
	case media.StartDate.Year != nil:
		result.Year = strconv.Itoa(*media.StartDate.Year)
	}

	// AniList scores are percentages; the watchlist displays a 10-point scale.
	if media.AverageScore != nil {
		result.Rating = *media.AverageScore / 10
	}

	if mediaType == "ANIME" {
		result.TotalEpisodes = media.Episodes
		if len(media.Studios.Nodes) > 0 {
			result.Creator = media.Studios.Nodes[0].Name
		}
	} else {
		result.TotalEpisodes = media.Chapters
		if len(media.Staff.Nodes) > 0 {
			result.Creator = media.Staff.Nodes[0].Name.Full
		}
	}

	return result, nil
}
