package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/config"
	"github.com/wonny/schloss/pkg/httputil"
	"github.com/wonny/schloss/pkg/logger"
)

const (
	// defaultCookieURL sets the session cookie the crumb endpoint requires
	defaultCookieURL = "https://fc.yahoo.com"

	crumbPath = "/v1/test/getcrumb"
)

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cookieURL  string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker

	mu    sync.Mutex
	crumb string
}

var _ contracts.MarketData = (*Client)(nil)

// NewClient creates a new Yahoo Finance client.
// httpClient must not retry on its own; the screening fetcher owns retries.
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, log *logger.Logger) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cookieURL:  defaultCookieURL,
	}

	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	if cfg.BreakerFailures > 0 {
		threshold := uint32(cfg.BreakerFailures)
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "yahoo",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// Rate limits and unknown symbols say nothing about provider health
			IsSuccessful: func(err error) bool {
				return err == nil ||
					contracts.IsRateLimited(err) ||
					errors.Is(err, contracts.ErrSymbolNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.WithFields(map[string]interface{}{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Circuit breaker state changed")
			},
		})
	}

	return c
}

// WithCookieURL overrides the session cookie endpoint ("" skips it)
func (c *Client) WithCookieURL(u string) *Client {
	c.cookieURL = u
	return c
}

// getJSON fetches url (crumb appended) and decodes into dest
func (c *Client) getJSON(ctx context.Context, url string, dest interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	call := func() (interface{}, error) {
		return nil, c.doGetJSON(ctx, url, dest)
	}

	if c.breaker == nil {
		_, err := call()
		return err
	}
	_, err := c.breaker.Execute(call)
	return err
}

func (c *Client) doGetJSON(ctx context.Context, url string, dest interface{}) error {
	crumb, err := c.ensureCrumb(ctx)
	if err != nil {
		return err
	}

	if crumb != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url = url + sep + "crumb=" + crumb
	}

	body, err := c.httpClient.GetBody(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		if httputil.StatusCode(err) == http.StatusUnauthorized {
			// stale crumb; next attempt fetches a new one
			c.resetCrumb()
		}
		return classify(err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

// ensureCrumb returns the cached crumb, fetching it on first use.
// A crumb failure is not fatal: some hosts serve without one.
func (c *Client) ensureCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	if c.cookieURL != "" {
		// fc.yahoo.com answers 404 but sets the cookie we need
		_, _ = c.httpClient.GetBody(ctx, c.cookieURL, nil)
	}

	body, err := c.httpClient.GetBody(ctx, c.baseURL+crumbPath, nil)
	if err != nil {
		if httputil.StatusCode(err) == http.StatusTooManyRequests {
			return "", classify(err)
		}
		c.logger.WithError(err).Debug("Crumb unavailable, continuing without")
		return "", nil
	}

	c.crumb = strings.TrimSpace(string(body))
	return c.crumb, nil
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

// classify maps HTTP failures to the error kinds the fetcher understands.
// 429 and 401 are both Yahoo's way of saying "slow down".
func classify(err error) error {
	switch httputil.StatusCode(err) {
	case http.StatusTooManyRequests, http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", contracts.ErrRateLimited, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", contracts.ErrSymbolNotFound, err)
	default:
		return err
	}
}

// apiError converts an error object embedded in a 200 response
func apiError(e *yfError) error {
	if e == nil {
		return nil
	}
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("%w: %s", contracts.ErrSymbolNotFound, e.Description)
	}
	return fmt.Errorf("yahoo error %s: %s", e.Code, e.Description)
}
