// Package notion implements the remote trade store on top of a Notion database.
package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"notion-trade-sync/internal/api"
	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/types"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"
)

// Config holds transport settings shared by every client.
type Config struct {
	BaseURL string
	Version string
	// Requests per second allowed towards Notion; the API averages three.
	RateLimit int
	Timeout   time.Duration
	Retry     *api.RetryConfig
	Limiter   *api.RateLimiter
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Retry == nil {
		c.Retry = api.DefaultRetryConfig()
	}
	if c.Limiter == nil {
		c.Limiter = api.NewRateLimiter(c.RateLimit, time.Second/time.Duration(c.RateLimit))
	}
	return c
}

// Client talks to one database with one integration token.
type Client struct {
	http       *api.Client
	databaseID string
	retry      *api.RetryConfig
}

var _ interfaces.RemoteStore = (*Client)(nil)

// NewClient creates a client for databaseID authenticated with token.
func NewClient(token, databaseID string, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		http: api.NewClient(
			api.WithBaseURL(cfg.BaseURL),
			api.WithTimeout(cfg.Timeout),
			api.WithHeader("Authorization", "Bearer "+token),
			api.WithHeader("Notion-Version", cfg.Version),
			api.WithRateLimiter(cfg.Limiter),
			api.WithLogging(true),
		),
		databaseID: databaseID,
		retry:      cfg.Retry,
	}
}

// Factory returns a RemoteStoreFactory sharing cfg. The rate limiter is shared
// by every client it builds.
func Factory(cfg Config) interfaces.RemoteStoreFactory {
	cfg = cfg.withDefaults()
	return func(s types.Settings) interfaces.RemoteStore {
		return NewClient(s.Token, s.StoreID, cfg)
	}
}

type pageResponse struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

// Create writes the trade as a new page. It is not retried: a failed create
// is left for the next pass so a slow success cannot be written twice.
func (c *Client) Create(ctx context.Context, trade types.Trade) (string, error) {
	body := map[string]any{
		"parent":     map[string]string{"database_id": c.databaseID},
		"properties": TradeProperties(trade),
	}
	resp, err := c.http.POST(ctx, "/v1/pages", body)
	if err != nil {
		return "", wrapError("create page", err)
	}
	var page pageResponse
	if err := resp.ParseJSON(&page); err != nil {
		return "", err
	}
	return page.ID, nil
}

type queryResponse struct {
	Results []pageResponse `json:"results"`
	HasMore bool           `json:"has_more"`
}

// Query returns the first page of matches; it never paginates.
func (c *Client) Query(ctx context.Context, filter types.Filter, pageSize int) ([]types.Record, error) {
	body := map[string]any{"page_size": pageSize}
	if f := EncodeFilter(filter); f != nil {
		body["filter"] = f
	}

	req := api.NewRequest(http.MethodPost, "/v1/databases/"+url.PathEscape(c.databaseID)+"/query").
		WithContext(ctx).
		WithBody(body)
	resp, err := c.http.DoWithRetry(req, c.retry)
	if err != nil {
		return nil, wrapError("query database", err)
	}

	var out queryResponse
	if err := resp.ParseJSON(&out); err != nil {
		return nil, err
	}
	records := make([]types.Record, 0, len(out.Results))
	for _, p := range out.Results {
		records = append(records, p.record())
	}
	return records, nil
}

type databaseResponse struct {
	ID    string     `json:"id"`
	Title []richText `json:"title"`
}

// Describe fetches the database metadata; used by the connection test.
func (c *Client) Describe(ctx context.Context) (types.DatabaseSummary, error) {
	req := api.NewRequest(http.MethodGet, "/v1/databases/"+url.PathEscape(c.databaseID)).WithContext(ctx)
	resp, err := c.http.DoWithRetry(req, c.retry)
	if err != nil {
		return types.DatabaseSummary{}, wrapError("retrieve database", err)
	}
	var db databaseResponse
	if err := resp.ParseJSON(&db); err != nil {
		return types.DatabaseSummary{}, err
	}
	title := plainText(db.Title)
	if title == "" {
		title = "Untitled"
	}
	return types.DatabaseSummary{ID: db.ID, Title: title}, nil
}

// Error is a Notion error response.
type Error struct {
	Op      string
	Status  int
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion %s: %v", e.Op, e.err)
	}
	return fmt.Sprintf("notion %s: HTTP %d %s: %s", e.Op, e.Status, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func wrapError(op string, err error) error {
	out := &Error{Op: op, err: err}
	var se *api.StatusError
	if errors.As(err, &se) {
		out.Status = se.StatusCode
		var body errorBody
		if (&api.Response{Body: se.Body}).ParseJSON(&body) == nil {
			out.Code = body.Code
			out.Message = body.Message
		}
		if out.Code == "" {
			out.Code = http.StatusText(se.StatusCode)
		}
	}
	return out
}
