// Package polymarket is the market-data client for the Polymarket Gamma API.
// Only public, unauthenticated market reads are implemented; order placement
// is deliberately absent.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// defaultPageSize is how many markets one fetch requests. The matcher works
// at tens-to-low-hundreds of markets per venue; one page is enough.
const defaultPageSize = 200

// Client is the REST client for the Polymarket Gamma API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "polymarket")),
	}
}

// Venue identifies this feed.
func (c *Client) Venue() domain.Venue {
	return domain.VenuePolymarket
}

// FetchQuotes returns normalized quotes for the current active markets.
// Records that fail normalization are skipped and logged; a single bad
// record never aborts the fetch.
func (c *Client) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(defaultPageSize))
	params.Set("active", "true")

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket: get markets: %w", err)
	}

	var raw []APIMarket
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("polymarket: decode markets: %w", err)
	}

	now := time.Now().UTC()
	quotes := make([]domain.Quote, 0, len(raw))
	for i := range raw {
		q, err := raw[i].Normalize(now)
		if err != nil {
			c.logger.DebugContext(ctx, "skipping market",
				slog.String("market_id", raw[i].ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// doGet performs a GET request against the Gamma API and returns the raw
// response body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
