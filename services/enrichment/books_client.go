package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const booksBaseURL = "https://www.googleapis.com/books/v1"

// BooksClient fetches volume metadata from the Google Books API. Volume
// lookups by id need no API key.
type BooksClient struct {
	baseURL string
	httpc   *http.Client
}

// NewBooksClient creates a Google Books client. httpc may be nil.
func NewBooksClient(httpc *http.Client) *BooksClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &BooksClient{baseURL: booksBaseURL, httpc: httpc}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *BooksClient) SetBaseURL(base string) {
	c.baseURL = base
}

type booksVolume struct {
	VolumeInfo struct {
		Authors       []string `json:"authors"`
		Categories    []string `json:"categories"`
		PublishedDate string   `json:"publishedDate"`
		AverageRating float64  `json:"averageRating"`
	} `json:"volumeInfo"`
}

// Fetch returns categories, first author, publication year and rating for a
// Google Books volume id.
func (c *BooksClient) Fetch(ctx context.Context, mediaID string) (Result, error) {
	reqURL := fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(mediaID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("books volume %s: %s", mediaID, resp.Status)
	}

	var volume booksVolume
	if err := json.NewDecoder(resp.Body).Decode(&volume); err != nil {
		return Result{}, fmt.Errorf("books volume %s: decode response: %w", mediaID, err)
	}

	info := volume.VolumeInfo
	result := Result{
		Genres: info.Categories,
		Year:   yearOf(info.PublishedDate),
		// Google rates on a 5-point scale; the watchlist displays 10-point.
		Rating: info.AverageRating * 2,
	}
	if len(info.Authors) > 0 {
		result.Creator = info.Authors[0]
	}
	return result, nil
}
