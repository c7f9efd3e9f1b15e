// Package client provides the HTTP transport for the tally collection API
// with request pacing, shared rate limit budgeting, retries, and error
// classification.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tallyhq/records-client/pkg/ratelimit"
)

// Prometheus metrics for collection client operations.
var (
	recordsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "records_requests_total",
		Help: "Total collection requests by endpoint and status",
	}, []string{"endpoint", "status"})

	recordsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "records_request_duration_seconds",
		Help:    "Collection request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	recordsErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "records_errors_total",
		Help: "Total collection request errors by class",
	}, []string{"class"})

	recordsPacingWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "records_pacing_wait_seconds",
		Help:    "Time spent waiting on the local request pacer",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// Client is the HTTP client for the collection API.
type Client struct {
	httpClient *http.Client
	pacer      *rate.Limiter
	tracker    *ratelimit.Tracker
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the collection API origin, e.g. "https://records.example.com".
	BaseURL string

	// UserAgent identifies this consumer to the API.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Redis shares upstream rate limit budget state across instances.
	// Optional: with no Redis client the shared budget gate is skipped and
	// only local pacing applies.
	Redis *redis.Client

	// RequestsPerSecond paces outgoing requests. Zero selects the default.
	RequestsPerSecond float64

	// Burst is the pacing burst size. Zero selects the default.
	Burst int

	// Timeout bounds a single HTTP exchange. Zero selects the default.
	Timeout time.Duration
}

// Pacing and transport defaults.
const (
	DefaultRequestsPerSecond = 10
	DefaultBurst             = 5
	DefaultTimeout           = 30 * time.Second
)

// DefaultConfig returns a safe default configuration for the given origin.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:           baseURL,
		UserAgent:         userAgent,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
		Timeout:           DefaultTimeout,
	}
}

// New creates a new collection client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	logger := log.With().Str("component", "records-client").Logger()

	var tracker *ratelimit.Tracker
	if cfg.Redis != nil {
		tracker = ratelimit.NewTracker(cfg.Redis, logger)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			// The collection API never redirects legitimately, so a 3xx
			// is surfaced to the caller instead of being followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		pacer:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		tracker: tracker,
		baseURL: strings.TrimSuffix(parsed.String(), "/"),
		config:  cfg,
		logger:  logger,
	}, nil
}

// Do performs an HTTP request with pacing, budget gating, retries, and error
// classification. Responses with status below 500 are returned to the caller
// as-is; 5xx and network failures are retried first.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		recordsRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: local pacing
	paceStart := time.Now()
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("request pacing: %w", err)
	}
	recordsPacingWaitSeconds.Observe(time.Since(paceStart).Seconds())

	// Step 2: shared budget gate
	if c.tracker != nil {
		allowed, err := c.tracker.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Budget check failed")
			return nil, fmt.Errorf("budget check: %w", err)
		}
		if !allowed {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Msg("Request blocked by budget gate")
			recordsRequestsTotal.WithLabelValues(endpoint, "budget_blocked").Inc()
			return nil, ErrBudgetExhausted
		}
	}

	// Step 3: identification headers
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing collection request")

	// Step 4: execute with retry
	var resp *http.Response

	retryErr := retryWithBackoff(ctx, func() error {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Warn().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			recordsErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			recordsRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "transport failure",
				Err:        reqErr,
			}
		}

		if c.tracker != nil {
			if err := c.tracker.UpdateFromHeaders(ctx, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update budget from headers")
			}
		}

		recordsRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		errClass := classifyStatus(resp.StatusCode)
		if errClass == "" {
			return nil
		}

		recordsErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Collection request error")

		if !shouldRetry(errClass) {
			// Client errors and surfaced redirects go back to the caller
			// with the response intact.
			return nil
		}

		resp.Body.Close()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}, Classify)

	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// Get performs a GET request against a collection endpoint path. The path may
// carry a query string, e.g. "/records?limit=10&offset=0&color%5B%5D=red".
func (c *Client) Get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// BaseURL returns the normalized collection API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
