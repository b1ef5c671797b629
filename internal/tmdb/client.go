package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cinedex/internal/logging"
)

const (
	defaultBaseURL     = "https://api.themoviedb.org/3"
	defaultLanguage    = "en-US"
	defaultHTTPTimeout = 30 * time.Second

	defaultRateLimit = 35
	slowRateLimit    = 20
	maxRateLimit     = 40

	maxAttempts       = 8
	baseBackoff       = time.Second
	connectionBackoff = 2 * time.Second
	maxBackoff        = 60 * time.Second
	defaultRetryAfter = 10 * time.Second

	adaptiveStep     = 500 * time.Millisecond
	maxAdaptiveDelay = 5 * time.Second
)

// ErrNotFound reports a movie ID the upstream does not know. Callers treat
// it as terminal and never retry.
var ErrNotFound = errors.New("tmdb: not found")

// Config describes client construction parameters.
type Config struct {
	AccessToken  string
	BaseURL      string
	Language     string
	RateLimit    int
	MaxCast      int
	IncludeAdult bool
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client wraps the TMDB REST API with rate limiting and retries.
type Client struct {
	token        string
	baseURL      *url.URL
	language     string
	maxCast      int
	includeAdult bool
	http         *http.Client
	limit        rate.Limit
	limiter      *rate.Limiter
	logger       *slog.Logger

	mu                sync.Mutex
	consecutiveErrors int
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errors.New("tmdb: access token is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("tmdb: parse base url: %w", err)
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if limit > maxRateLimit {
		limit = maxRateLimit
	}
	maxCast := cfg.MaxCast
	if maxCast <= 0 {
		maxCast = 8
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		token:        token,
		baseURL:      baseURL,
		language:     language,
		maxCast:      maxCast,
		includeAdult: cfg.IncludeAdult,
		http:         httpClient,
		limit:        rate.Limit(limit),
		limiter:      rate.NewLimiter(rate.Limit(limit), 1),
		logger:       logging.NewComponentLogger(cfg.Logger, "tmdb"),
	}, nil
}

// SetSlowMode lowers or restores the request rate. Long bulk crawls switch
// it on to stay under the upstream's sustained-traffic expectations. The
// configured limit stays the ceiling in both directions.
func (c *Client) SetSlowMode(enabled bool) {
	limit := c.limit
	if enabled && limit > rate.Limit(slowRateLimit) {
		limit = rate.Limit(slowRateLimit)
	}
	c.limiter.SetLimit(limit)
}

// TestConnection verifies the configured credentials against the API.
func (c *Client) TestConnection(ctx context.Context) error {
	var payload struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}
	if err := c.get(ctx, "/configuration", nil, &payload); err != nil {
		return fmt.Errorf("tmdb: connection test: %w", err)
	}
	return nil
}

// get performs a rate-limited GET with retries and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		if delay := c.adaptiveDelay(); delay > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return fmt.Errorf("tmdb: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("tmdb: request failed: %w", err)
			c.noteFailure()
			c.logger.Warn("request failed, retrying",
				logging.String("path", path),
				logging.Int("attempt", attempt+1),
				logging.Error(err))
			if err := sleepCtx(ctx, backoffDelay(connectionBackoff, attempt)); err != nil {
				return err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("tmdb: %s: %w", path, ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			c.noteFailure()
			c.logger.Warn("rate limited by upstream",
				logging.String("path", path),
				logging.Duration("retry_after", retryAfter))
			wait := retryAfter + time.Second + time.Duration(rand.Float64()*2*float64(time.Second))
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			lastErr = fmt.Errorf("tmdb: %s: rate limited", path)
			continue
		case resp.StatusCode >= 500:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = fmt.Errorf("tmdb: %s failed (%s): %s", path, resp.Status, strings.TrimSpace(string(body)))
			c.noteFailure()
			if err := sleepCtx(ctx, backoffDelay(baseBackoff, attempt)); err != nil {
				return err
			}
			continue
		case resp.StatusCode >= 400:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("tmdb: %s failed (%s): %s", path, resp.Status, strings.TrimSpace(string(body)))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("tmdb: decode %s response: %w", path, err)
			c.noteFailure()
			if err := sleepCtx(ctx, backoffDelay(baseBackoff, attempt)); err != nil {
				return err
			}
			continue
		}

		c.noteSuccess()
		return nil
	}

	return fmt.Errorf("tmdb: giving up after %d attempts: %w", maxAttempts, lastErr)
}

// adaptiveDelay returns the current error-driven slowdown.
func (c *Client) adaptiveDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consecutiveErrors == 0 {
		return 0
	}
	delay := time.Duration(c.consecutiveErrors) * adaptiveStep
	if delay > maxAdaptiveDelay {
		delay = maxAdaptiveDelay
	}
	return delay
}

func (c *Client) noteFailure() {
	c.mu.Lock()
	c.consecutiveErrors++
	c.mu.Unlock()
}

func (c *Client) noteSuccess() {
	c.mu.Lock()
	if c.consecutiveErrors > 0 {
		c.consecutiveErrors--
	}
	c.mu.Unlock()
}

// backoffDelay computes base*2^attempt with 25% jitter, capped at maxBackoff.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base << uint(attempt)
	if delay > maxBackoff || delay <= 0 {
		delay = maxBackoff
	}
	jitter := 0.75 + rand.Float64()*0.5
	delay = time.Duration(float64(delay) * jitter)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}

func parseRetryAfter(header string) time.Duration {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.Atoi(trimmed)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
