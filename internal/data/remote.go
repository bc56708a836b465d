package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"tick-backtest/internal/logging"
	"tick-backtest/internal/model"
)

// FeedClient downloads feeds from a remote market data service that
// serves them as JSON under /v1/feeds/{name}.
type FeedClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	// Cache, when set, holds responses keyed by request parameters.
	Cache *FeedCache
	log   *zap.SugaredLogger
}

// NewFeedClient creates a client with a 30 second timeout.
func NewFeedClient(apiKey, baseURL string, log *zap.SugaredLogger) *FeedClient {
	if log == nil {
		log = logging.NewNop()
	}
	return &FeedClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.Named("feedclient"),
	}
}

// FetchParams selects a feed and an optional time range.
type FetchParams struct {
	Name  string
	Start time.Time
	End   time.Time
	// Bars overrides the bar frequency reported by the service.
	Bars string
}

// FeedError is a non-success response from the feed service.
type FeedError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *FeedError) Error() string {
	return e.Message
}

// FetchFeed downloads a feed. Snapshots come back sorted by Dt.
func (c *FeedClient) FetchFeed(ctx context.Context, params FetchParams) (*model.Feed, error) {
	if c.BaseURL == "" {
		return nil, &FeedError{Code: "MISSING_BASE_URL", Message: "feed service URL is required"}
	}
	if params.Name == "" {
		return nil, fmt.Errorf("feed name is required")
	}
	if !params.Start.IsZero() && !params.End.IsZero() && params.Start.After(params.End) {
		return nil, fmt.Errorf("start must be before end")
	}

	key := CacheKey("remote", c.BaseURL, params.Name, params.Start.Unix(), params.End.Unix(), params.Bars)
	if feed, ok := c.Cache.Get(key); ok {
		c.log.Debugw("Cache hit", "feed", params.Name, "snapshots", len(feed.Snapshots))
		return feed, nil
	}

	u, err := url.Parse(c.BaseURL + "/v1/feeds/" + url.PathEscape(params.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	if !params.Start.IsZero() {
		q.Set("start", params.Start.Format(time.RFC3339))
	}
	if !params.End.IsZero() {
		q.Set("end", params.End.Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(started)
	if err != nil {
		c.log.Warnw("Request failed", "url", u.Path, "duration", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	c.log.Infow("Response", "status", resp.StatusCode, "url", u.Path, "duration", duration)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "Invalid API key or insufficient permissions",
		}
	case http.StatusNotFound:
		return nil, &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "FEED_NOT_FOUND",
			Message:    fmt.Sprintf("feed %q not found", params.Name),
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	var feed model.Feed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	SortSnapshots(feed.Snapshots)
	if feed.Name == "" {
		feed.Name = params.Name
	}
	if params.Bars != "" {
		feed.Bars = params.Bars
	}
	c.Cache.Add(key, &feed)
	return &feed, nil
}
