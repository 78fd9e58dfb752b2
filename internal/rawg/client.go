package rawg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// RAWG API base (public, key required)
const rawgBase = "https://api.rawg.io/api"

// ErrNoAPIKey is returned when no key is configured. Callers treat it as
// "no external metadata available", not as a hard failure.
var ErrNoAPIKey = errors.New("rawg: api key not configured")

// Candidate is one external catalog match. Added is the community add-count
// RAWG exposes; it is the popularity signal used to rank ambiguous title
// matches and nothing more.
type Candidate struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Added      int     `json:"added"`
	ImageURL   string  `json:"background_image"`
	Rating     float64 `json:"rating"`
	Metacritic int     `json:"metacritic"`
	Released   string  `json:"released"`
}

type Client struct {
	HTTP     *http.Client
	BaseURL  string
	APIKey   string
	PageSize int // candidates per search, small page for popularity tie-breaking
}

func NewClient() *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 12 * time.Second},
		BaseURL:  rawgBase,
		APIKey:   os.Getenv("GAMESHELF_RAWG_KEY"),
		PageSize: 5,
	}
}

type searchResponse struct {
	Results []Candidate `json:"results"`
}

// Search returns a small ranked candidate page for a free-text title.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("search", query)
	q.Set("page_size", fmt.Sprintf("%d", c.PageSize))
	q.Set("search_exact", "false")

	return c.getGames(ctx, q)
}

// TopGames returns the most added games, for the recommendation feed.
func (c *Client) TopGames(ctx context.Context, pageSize int) ([]Candidate, error) {
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("ordering", "-added")
	q.Set("page_size", fmt.Sprintf("%d", pageSize))

	return c.getGames(ctx, q)
}

func (c *Client) getGames(ctx context.Context, q url.Values) ([]Candidate, error) {
	u, err := url.Parse(c.BaseURL + "/games")
	if err != nil {
		return nil, fmt.Errorf("rawg: parse url: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("rawg: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rawg: request: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rawg: status %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("rawg: decode: %w", err)
	}
	return sr.Results, nil
}
