// Package kalshi is the market-data client for the Kalshi exchange API.
// Only public market reads are implemented; the optional API key is sent as
// a header and no request signing is performed.
package kalshi

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

// defaultPageSize is how many markets one fetch requests.
const defaultPageSize = 200

// Client is the REST client for the Kalshi exchange API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Kalshi REST client.
//
// baseURL is the API root, e.g.
// "https://api.elections.kalshi.com/trade-api/v2". apiKey may be empty for
// public market reads.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "kalshi")),
	}
}

// Venue identifies this feed.
func (c *Client) Venue() domain.Venue {
	return domain.VenueKalshi
}

// FetchQuotes returns normalized quotes for the currently open markets.
// Records that fail normalization are skipped and logged.
func (c *Client) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(defaultPageSize))
	params.Set("status", "open")

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("kalshi: get markets: %w", err)
	}

	var resp struct {
		Markets []Market `json:"markets"`
		Cursor  string   `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode markets: %w", err)
	}

	now := time.Now().UTC()
	quotes := make([]domain.Quote, 0, len(resp.Markets))
	for i := range resp.Markets {
		q, err := resp.Markets[i].Normalize(now)
		if err != nil {
			c.logger.DebugContext(ctx, "skipping market",
				slog.String("ticker", resp.Markets[i].Ticker),
				slog.String("error", err.Error()),
			)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// doGet performs a GET request against the Kalshi API and returns the raw
// response body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

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
