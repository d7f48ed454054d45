package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/outbreak-report/internal/domain"
	"github.com/couchcryptid/outbreak-report/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// ErrNotFound is returned when Mapbox has no region matching the state.
var ErrNotFound = errors.New("mapbox: no matching region")

// Retry backoff: start at 200ms, double each attempt, cap at 2s.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

// apiError is a non-200 response from the Mapbox API.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("mapbox API error: status %d: %s", e.status, e.body)
}

// Client implements domain.StateLocator using the Mapbox Geocoding API.
type Client struct {
	token       string
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	backoff     time.Duration
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a Mapbox geocoding client. Rate limiting, server errors,
// and transport failures are retried up to maxAttempts in total.
func NewClient(token string, timeout time.Duration, maxAttempts int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     "https://api.mapbox.com/geocoding/v5/mapbox.places",
		maxAttempts: max(maxAttempts, 1),
		backoff:     initialBackoff,
		metrics:     metrics,
		logger:      logger,
	}
}

// LocateState forward-geocodes a US state name or postal code to the center
// of the matching region.
func (c *Client) LocateState(ctx context.Context, state string) (domain.Point, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(state))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"region"},
		"country":      {"us"},
	}

	start := time.Now()
	p, err := c.requestWithRetry(ctx, state, u+"?"+params.Encode())
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, ErrNotFound):
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		c.logger.Warn("state geocoding failed", "state", state, "error", err)
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return p, err
}

func (c *Client) requestWithRetry(ctx context.Context, state, fullURL string) (domain.Point, error) {
	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		p, err := c.doRequest(ctx, fullURL)
		if err == nil || attempt >= c.maxAttempts || !retryable(ctx, err) {
			return p, err
		}
		c.metrics.GeocodeRequests.WithLabelValues("retry").Inc()
		c.logger.Debug("retrying state geocode", "state", state, "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return domain.Point{}, fmt.Errorf("state geocode retry: %w", ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// retryable reports whether a failed request may succeed if repeated.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.status == http.StatusTooManyRequests || apiErr.status >= http.StatusInternalServerError
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Point{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Point{}, fmt.Errorf("state geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Point{}, &apiError{status: resp.StatusCode, body: string(body)}
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.Point{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 || len(mapboxResp.Features[0].Center) != 2 {
		return domain.Point{}, ErrNotFound
	}

	center := mapboxResp.Features[0].Center
	return domain.Point{Lat: center[1], Lon: center[0]}, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
