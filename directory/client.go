package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Directory is the asset/anchor universe document. Asset keys are ids of the
// form "CODE-ISSUER" (or "XLM-native"); anchor keys are home domains; pair
// keys are market slugs like "CODE1/CODE2".
type Directory struct {
	Assets  map[string]Asset  `json:"assets"`
	Anchors map[string]Anchor `json:"anchors"`
	Pairs   map[string]Pair   `json:"pairs"`
	BuildID string            `json:"buildId"`
}

type Asset struct {
	Code   string `json:"code"`
	Issuer string `json:"issuer"`
	Domain string `json:"domain"`
}

type Anchor struct {
	Website string `json:"website"`
}

type Pair struct {
	Base    string `json:"base"`
	Counter string `json:"counter"`
}

type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		URL:  url,
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

// Initialize fetches and decodes the directory document. There is no ticker
// without an asset universe, so callers treat any error here as fatal.
func (c *Client) Initialize(ctx context.Context) (*Directory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var dir Directory
	if err := json.NewDecoder(resp.Body).Decode(&dir); err != nil {
		return nil, fmt.Errorf("failed to decode directory: %w", err)
	}
	if len(dir.Assets) == 0 {
		return nil, fmt.Errorf("directory contains no assets")
	}
	return &dir, nil
}
