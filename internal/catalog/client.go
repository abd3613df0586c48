// Package catalog queries the storefront's public listing endpoint.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gamestore-ingest/internal/domain"
)

const listingPath = "/games/ajax/filtered"

// listingResponse is the relevant slice of the listing payload; everything
// but the products array is ignored.
type listingResponse struct {
	Products []domain.Product `json:"products"`
}

// Client fetches one page of catalog results per call.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catalog client rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch returns the products matching the caller-supplied filter params.
// The mediaType filter is always pinned to games; params may override any
// other listing filter the storefront supports.
func (c *Client) Fetch(ctx context.Context, params map[string]string) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("mediaType", "game")
	for key, value := range params {
		query.Set(key, value)
	}

	u := c.baseURL + listingPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", res.StatusCode)
	}

	var payload listingResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode listing response: %w", err)
	}

	return payload.Products, nil
}
