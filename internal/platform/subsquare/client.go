// Package subsquare is the REST client for the Subsquare governance
// explorer, which serves decoded referendum call trees.
package subsquare

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

// Client is the Subsquare REST client for one network.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Subsquare client.
//
// baseURL is the network's explorer root, e.g. "https://polkadot.subsquare.io".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListReferenda returns one page of referendum summaries plus the total
// referendum count. Pages are zero-based.
func (c *Client) ListReferenda(ctx context.Context, page, pageSize int) ([]domain.ProposalSummary, int, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page+1)) // the API is one-based
	params.Set("page_size", strconv.Itoa(pageSize))

	path := "/api/gov2/referendums?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, 0, fmt.Errorf("subsquare: list referenda page %d: %w", page, err)
	}

	var apiPage APIReferendumPage
	if err := json.Unmarshal(body, &apiPage); err != nil {
		return nil, 0, fmt.Errorf("subsquare: decode referendum page: %w", err)
	}

	summaries := make([]domain.ProposalSummary, 0, len(apiPage.Items))
	for i := range apiPage.Items {
		summaries = append(summaries, apiPage.Items[i].ToDomainSummary())
	}
	return summaries, apiPage.Total, nil
}

// GetReferendum returns one referendum with its decoded call tree.
func (c *Client) GetReferendum(ctx context.Context, id uint32) (domain.Proposal, error) {
	path := fmt.Sprintf("/api/gov2/referendums/%d", id)

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("subsquare: get referendum %d: %w", id, err)
	}

	var apiRef APIReferendum
	if err := json.Unmarshal(body, &apiRef); err != nil {
		return domain.Proposal{}, fmt.Errorf("subsquare: decode referendum %d: %w", id, err)
	}

	prop, err := apiRef.ToDomainProposal(body)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("subsquare: map referendum %d: %w", id, err)
	}
	return prop, nil
}

// doGet sends an unauthenticated GET request to the explorer.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Compile-time interface check.
var _ domain.ProposalSource = (*Client)(nil)
