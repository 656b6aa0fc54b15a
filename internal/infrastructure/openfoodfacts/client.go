package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/foodscan/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the Open Food Facts search API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	pageSize    int
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Open Food Facts client. The search API allows
// roughly 10 requests per minute, so outgoing calls are throttled client-side.
func NewClient(baseURL, userAgent string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 3
	}

	// 10 requests/minute with a small burst for multi-item batches
	limiter := rate.NewLimiter(rate.Limit(10.0/60.0), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		pageSize:    pageSize,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the sleep duration before the given retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250<<(attempt-1)) * time.Millisecond
}

// SearchProducts queries the text-search endpoint for the given term. An empty
// result list is returned as-is; the caller decides whether to fall back to
// another term.
func (c *Client) SearchProducts(ctx context.Context, term string) ([]domain.OFFProduct, error) {
	if c.debug {
		log.Printf("[OFF] SearchProducts called with term: %q", term)
	}

	endpoint := fmt.Sprintf("%s/cgi/search.pl", c.baseURL)
	params := url.Values{}
	params.Add("search_terms", term)
	params.Add("search_simple", "1")
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", fmt.Sprintf("%d", c.pageSize))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[OFF] Request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrProductAPIFailure, err)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[OFF] API error (attempt %d) - Status: %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProductAPIFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var searchResp domain.OFFSearchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProductAPIFailure, err)
		}

		if c.debug {
			log.Printf("[OFF] Found %d products for term: %q", len(searchResp.Products), term)
		}

		return searchResp.Products, nil
	}

	log.Printf("[OFF] All retries failed for term: %q", term)
	return nil, lastErr
}
