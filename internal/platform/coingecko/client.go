// Package coingecko fetches native-token-in-USD quotes from the CoinGecko
// API for the price conversion service.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nkoval/govscan/internal/domain"
)

// Client is a CoinGecko REST client scoped to one coin.
type Client struct {
	baseURL    string
	apiKey     string
	coinID     string
	httpClient *http.Client
}

// New creates a CoinGecko client for the given coin id ("polkadot",
// "kusama"). apiKey may be empty for the public tier.
func New(baseURL, apiKey, coinID string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		coinID:  coinID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Current returns the latest USD price.
func (c *Client) Current(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("ids", c.coinID)
	params.Set("vs_currencies", "usd")

	body, err := c.doGet(ctx, "/api/v3/simple/price?"+params.Encode())
	if err != nil {
		return 0, fmt.Errorf("coingecko: current price: %w", err)
	}

	var payload map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("coingecko: decode current price: %w", err)
	}
	entry, ok := payload[c.coinID]
	if !ok {
		return 0, fmt.Errorf("coingecko: current price: %w: %s", domain.ErrNotFound, c.coinID)
	}
	return entry.USD, nil
}

// History returns daily USD quotes between from and to.
func (c *Client) History(ctx context.Context, from, to time.Time) ([]domain.Quote, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))

	path := fmt.Sprintf("/api/v3/coins/%s/market_chart/range?%s", url.PathEscape(c.coinID), params.Encode())

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("coingecko: price history: %w", err)
	}

	var payload struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("coingecko: decode price history: %w", err)
	}

	quotes := make([]domain.Quote, 0, len(payload.Prices))
	for _, point := range payload.Prices {
		quotes = append(quotes, domain.Quote{
			Date:  time.UnixMilli(int64(point[0])).UTC(),
			Price: point[1],
		})
	}
	return quotes, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w", domain.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}

// Compile-time interface check.
var _ domain.QuoteSource = (*Client)(nil)
