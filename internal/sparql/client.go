package sparql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/mentions/internal/cache"
	"github.com/ppiankov/mentions/internal/model"
	"github.com/ppiankov/mentions/internal/util"
	"github.com/ppiankov/mentions/internal/worker"
	"github.com/rs/zerolog"
)

const resultsMediaType = "application/sparql-results+json"

// retryBackoff is multiplied by the attempt number between retries
const retryBackoff = 2 * time.Second

// fetchSleepFunc is the sleep between retries (replaced in tests)
var fetchSleepFunc = time.Sleep

// StatusError is returned for non-2xx endpoint responses
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, e.Status)
}

// Client sends SELECT queries to a SPARQL endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	retries    int
	limiter    *worker.Limiter
	breaker    *CircuitBreaker
	cache      cache.Cache
	robots     *util.RobotsChecker
	robotsOnce sync.Once
	robotsErr  error
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithCache stores result bodies in c
func WithCache(c cache.Cache) Option {
	return func(cl *Client) {
		cl.cache = c
	}
}

// WithLimiter shares a per-host limiter with other HTTP users
func WithLimiter(l *worker.Limiter) Option {
	return func(cl *Client) {
		cl.limiter = l
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a client for cfg.URL
func NewClient(cfg model.EndpointConfig, breakerCfg model.BreakerConfig, opts ...Option) *Client {
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	retries := cfg.Retries
	if retries <= 0 {
		retries = 1
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 512 << 20
	}

	c := &Client{
		endpoint:   cfg.URL,
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		retries:    retries,
		limiter:    worker.NewLimiter(0, 1),
		breaker:    NewCircuitBreaker(cfg.URL, breakerCfg.MaxFailures, breakerCfg.Timeout),
		logger:     zerolog.Nop(),
	}
	if cfg.RespectRobots {
		c.robots = util.NewRobotsChecker(httpClient, cfg.UserAgent)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Select runs a SELECT query and decodes the JSON result set
func (c *Client) Select(ctx context.Context, query string) (*Results, error) {
	key := cache.QueryKey(c.endpoint, query)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			c.logger.Debug().Str("key", key).Msg("query result served from cache")
			return DecodeResults(data)
		}
	}

	if err := c.checkRobots(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.postWithRetry(ctx, query)
	if err != nil {
		return nil, err
	}

	res, err := DecodeResults(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("bindings", len(res.Results.Bindings)).
		Int("bytes", len(body)).
		Dur("took", time.Since(start)).
		Msg("query executed")

	if c.cache != nil {
		if err := c.cache.Set(key, body, 0); err != nil {
			c.logger.Warn().Err(err).Msg("cache query result")
		}
	}
	return res, nil
}

func (c *Client) checkRobots(ctx context.Context) error {
	if c.robots == nil {
		return nil
	}
	c.robotsOnce.Do(func() {
		delay, err := c.robots.Check(ctx, c.endpoint)
		if err != nil {
			c.robotsErr = err
			return
		}
		if delay > 0 {
			if u, perr := url.Parse(c.endpoint); perr == nil {
				c.limiter.SetCrawlDelay(u.Host, delay)
				c.logger.Info().Dur("crawl_delay", delay).Msg("honouring robots.txt crawl delay")
			}
		}
	})
	return c.robotsErr
}

func (c *Client) postWithRetry(ctx context.Context, query string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}

		body, err := c.breaker.Execute(ctx, func() ([]byte, error) {
			return c.post(ctx, query)
		})
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == c.retries {
			break
		}
		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("query failed, retrying")
		fetchSleepFunc(time.Duration(attempt) * retryBackoff)
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("read body: response exceeds %d bytes", c.maxBytes)
	}
	return body, nil
}

// isRetryableFetchError reports whether a failed attempt is worth repeating:
// transport errors, 429 and 5xx are; other statuses and local errors are not.
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	return strings.HasPrefix(err.Error(), "fetch:")
}
