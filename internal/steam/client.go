package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const steamBase = "https://store.steampowered.com/api"

// Price is a current storefront price in whole yen.
type Price struct {
	Initial         int `json:"initial"`
	Final           int `json:"final"`
	DiscountPercent int `json:"discount_percent"`
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient() *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 12 * time.Second},
		BaseURL: steamBase,
	}
}

type storeSearchResponse struct {
	Items []struct {
		Type  string `json:"type"`
		Name  string `json:"name"`
		Price *struct {
			Initial int `json:"initial"`
			Final   int `json:"final"`
		} `json:"price"`
	} `json:"items"`
}

// Lookup resolves a title to its current Steam price via the JP storefront
// search. Returns (nil, nil) when no priced app matches; price lookups are
// opportunistic and the caller must tolerate absence.
func (c *Client) Lookup(ctx context.Context, title string) (*Price, error) {
	u, err := url.Parse(c.BaseURL + "/storesearch")
	if err != nil {
		return nil, fmt.Errorf("steam: parse url: %w", err)
	}
	q := u.Query()
	q.Set("term", title)
	q.Set("l", "japanese")
	q.Set("cc", "JP")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("steam: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("steam: request: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam: status %d", resp.StatusCode)
	}

	var sr storeSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("steam: decode: %w", err)
	}

	for _, item := range sr.Items {
		if item.Type != "app" || item.Price == nil {
			continue
		}
		// Steam returns yen * 100 (e.g. 340000 = 3400 JPY)
		initial := item.Price.Initial / 100
		final := item.Price.Final / 100
		discount := 0
		if initial > 0 {
			discount = int(float64(initial-final)/float64(initial)*100 + 0.5)
		}
		return &Price{
			Initial:         initial,
			Final:           final,
			DiscountPercent: discount,
		}, nil
	}
	return nil, nil
}
