package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Free Google translate endpoint. Fallible and slow; used only to improve
// recall on Japanese titles, never required for correctness.
const translateBase = "https://translate.googleapis.com"

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient() *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: translateBase,
	}
}

// Translate converts text between languages (ISO 639-1 codes).
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	u, err := url.Parse(c.BaseURL + "/translate_a/single")
	if err != nil {
		return "", fmt.Errorf("translate: parse url: %w", err)
	}
	q := u.Query()
	q.Set("client", "gtx")
	q.Set("sl", from)
	q.Set("tl", to)
	q.Set("dt", "t")
	q.Set("q", text)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("translate: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: request: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: status %d", resp.StatusCode)
	}

	// Response is a nested array: [[["translated","source",...],...],...]
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("translate: decode: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("translate: decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		b.WriteString(part)
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("translate: no translation returned")
	}
	return out, nil
}
