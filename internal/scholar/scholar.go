// Package scholar queries a Semantic Scholar compatible paper-search API for
// abstracts matching a research goal.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultBaseURL is the Semantic Scholar Graph API root.
const DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

// DefaultLimit is the page size used when a query does not set one.
const DefaultLimit = 5

// DefaultTimeout bounds a single search request.
const DefaultTimeout = 30 * time.Second

const userAgent = "methodmap/1.0"

// searchFields is sent verbatim as the fields parameter.
const searchFields = "title,abstract,url"

// SearchQuery is a free-text research goal plus a result limit.
type SearchQuery struct {
	Goal  string
	Limit int
}

// Paper is one search hit. Abstract is empty when the API has none.
type Paper struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	URL      string `json:"url"`
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string // sent as x-api-key when set
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client talks to the paper-search endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a Client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    &http.Client{Timeout: opts.Timeout},
		logger:  opts.Logger,
	}
}

// searchResponse is the subset of the search payload we read.
type searchResponse struct {
	Total int     `json:"total"`
	Data  []Paper `json:"data"`
}

// StatusError reports a non-200 search response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("paper search returned status %d: %s", e.StatusCode, e.Body)
}

// SearchPapers returns the papers for q in API ranking order.
func (c *Client) SearchPapers(ctx context.Context, q SearchQuery) ([]Paper, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("query", q.Goal)
	params.Set("fields", searchFields)
	params.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/paper/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paper search failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Data, nil
}

// FetchAbstracts returns the non-empty abstracts for q in ranking order.
// Failures are logged and yield an empty list: callers treat an empty list as
// "no usable input", not as an error.
func (c *Client) FetchAbstracts(ctx context.Context, q SearchQuery) []string {
	papers, err := c.SearchPapers(ctx, q)
	if err != nil {
		c.logger.Warn("paper search failed", "goal", q.Goal, "error", err)
		return []string{}
	}

	abstracts := make([]string, 0, len(papers))
	for _, p := range papers {
		if a := strings.TrimSpace(p.Abstract); a != "" {
			abstracts = append(abstracts, a)
		}
	}
	c.logger.Info("fetched abstracts", "goal", q.Goal, "papers", len(papers), "abstracts", len(abstracts))
	return abstracts
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
