package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/uxlens/journeyflow/pkg/cache"
	"github.com/uxlens/journeyflow/pkg/errors"
	"github.com/uxlens/journeyflow/pkg/journey"
	"github.com/uxlens/journeyflow/pkg/observability"
)

const defaultTimeout = 30 * time.Second

// cacheNamespace separates backend responses from other HTTP cache users.
const cacheNamespace = "journeys"

// Config configures the backend client.
type Config struct {
	// BaseURL is the analytics backend base URL.
	BaseURL string

	// APIKey authenticates requests (sent as a Bearer token). Optional.
	APIKey string

	// Timeout bounds a single request. Defaults to 30s.
	Timeout time.Duration

	// Cache stores raw responses. Defaults to a NullCache.
	Cache cache.Cache

	// Keyer names cache entries. Defaults to the standard keyer.
	Keyer cache.Keyer
}

// Client fetches journey exports from the analytics backend.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	cache   cache.Cache
	keyer   cache.Keyer
}

// NewClient creates a backend client.
// Returns an error if the base URL is missing or malformed.
func NewClient(cfg Config) (*Client, error) {
	if err := errors.ValidateURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		cache:   cfg.Cache,
		keyer:   cfg.Keyer,
	}, nil
}

// FetchJourneys retrieves the journey export for a project.
// Responses are cached for [cache.HTTPCacheTTL]; refresh bypasses the cache.
func (c *Client) FetchJourneys(ctx context.Context, project string, refresh bool) ([]journey.Journey, error) {
	if err := errors.ValidateProjectName(project); err != nil {
		return nil, err
	}

	key := c.keyer.HTTPKey(cacheNamespace, project)
	if !refresh {
		if data, hit, _ := c.cache.Get(ctx, key); hit {
			observability.Cache().OnCacheHit(ctx, "http")
			return journey.ReadJourneys(strings.NewReader(string(data)))
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	path := fmt.Sprintf("/v1/projects/%s/journeys", url.PathEscape(project))
	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.get(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}

	journeys, err := journey.ReadJourneys(strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJourney, err, "backend returned malformed journeys for %s", project)
	}

	if err := c.cache.Set(ctx, key, body, cache.HTTPCacheTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "http", len(body))
	}
	return journeys, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", path)}
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, path); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(resp *http.Response, path string) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeProjectNotFound, "backend has no journeys at %s", path)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &errors.RateLimitedError{
			RetryAfter: retryAfter,
			Message:    fmt.Sprintf("backend rate limited %s", path),
		}
	case code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "backend returned status %d for %s", code, path)}
	default:
		return errors.New(errors.ErrCodeNetwork, "backend returned status %d for %s", code, path)
	}
}
