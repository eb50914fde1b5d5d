package thesportsdb

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/platform/resilience"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

const (
	DefaultBaseURL = "https://www.thesportsdb.com/api/v1/json"
	// DefaultAPIKey is the public test key.
	DefaultAPIKey = "3"

	maxResponseBytes = 6 << 20
	userAgent        = "rugby-analytics/thesportsdb"
)

var (
	// ErrTransient marks failures worth retrying: transport errors, 429 and 5xx.
	ErrTransient = crerr.New("thesportsdb transient failure")
	// ErrResponseTooLarge is returned for a 2xx body over the read limit.
	// Retrying would read the same body again, so it is not transient.
	ErrResponseTooLarge = crerr.New("thesportsdb response too large")
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status=%d body=%s", e.Code, e.Body)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Backoff        resilience.Backoff
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	backoff    resilience.Backoff
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
	maxBody    int64
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 45 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}
	backoff := cfg.Backoff
	if backoff == (resilience.Backoff{}) {
		backoff = resilience.DefaultBackoff()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		backoff:    resilience.NormalizeBackoff(backoff),
		logger:     logging.OrDefault(cfg.Logger).Named("thesportsdb"),
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		maxBody:    maxResponseBytes,
		sleep:      resilience.Sleep,
	}
}

// Fetch GETs {base}/{key}/{endpoint}?params and returns the raw body.
// Identical concurrent requests share one round trip.
func (c *Client) Fetch(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	endpoint = strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", usecase.ErrInvalidInput)
	}

	values := url.Values{}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values.Set(key, params[key])
	}

	fullURL := c.baseURL + "/" + url.PathEscape(c.apiKey) + "/" + endpoint
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(endpoint+"?"+values.Encode(), func() (any, error) {
		if c.breaker == nil {
			return c.executeRequest(ctx, fullURL)
		}
		var raw []byte
		err := c.breaker.Do(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, IsTransient)
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return raw, err
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

// executeRequest retries transient failures on the configured backoff. The
// last attempt's error is returned as is.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.backoff.MaxAttempts; attempt++ {
		raw, err := c.roundTrip(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == c.backoff.MaxAttempts-1 {
			break
		}

		delay := c.backoff.Delay(attempt)
		c.logger.DebugContext(ctx, "retrying provider request",
			"url", c.redact(fullURL),
			"attempt", attempt+1,
			"max_attempts", c.backoff.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	c.logger.WarnContext(ctx, "provider request failed", "url", c.redact(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %s", c.redact(err.Error()))
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, crerr.Wrapf(ErrTransient, "send request: %s", c.redact(err.Error()))
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	// one byte past the limit tells a full body from a cut one
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, c.maxBody+1)); err != nil {
		return nil, crerr.Wrapf(ErrTransient, "read response body: %v", err)
	}
	truncated := int64(buf.Len()) > c.maxBody
	if truncated {
		buf.B = buf.B[:c.maxBody]
	}
	raw := append([]byte(nil), buf.B...)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if truncated {
			return nil, crerr.Wrapf(ErrResponseTooLarge, "status=%d limit=%d bytes", resp.StatusCode, c.maxBody)
		}
		return raw, nil
	}
	statusErr := &StatusError{Code: resp.StatusCode, Body: abbreviateBody(c.redact(string(raw)))}
	if isRetryableStatus(resp.StatusCode) {
		return nil, crerr.Mark(statusErr, ErrTransient)
	}
	return nil, statusErr
}

// IsTransient reports whether err is a retryable provider failure.
func IsTransient(err error) bool {
	return err != nil && crerr.Is(err, ErrTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// redact removes the api key, which travels in the url path. Short keys
// are only replaced as a path segment.
func (c *Client) redact(value string) string {
	if c.apiKey == "" {
		return value
	}
	value = strings.ReplaceAll(value, "/"+url.PathEscape(c.apiKey)+"/", "/REDACTED/")
	if len(c.apiKey) >= 8 {
		value = strings.ReplaceAll(value, c.apiKey, "REDACTED")
	}
	return value
}

const maxErrorBodyBytes = 240

// abbreviateBody cuts on a rune boundary so the error text stays valid UTF-8.
func abbreviateBody(body string) string {
	text := strings.TrimSpace(body)
	if len(text) <= maxErrorBodyBytes {
		return text
	}
	cut := maxErrorBodyBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
