// Package ingest fetches news-like documents from external sources into the
// raw article store. Source clients own their own pagination, rate limiting,
// and retry behavior; the rest of the system only sees raw article records.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsintel/internal/logger"
)

const (
	userAgent   = "newsintel/1.0"
	maxRetries  = 3
	httpTimeout = 30 * time.Second
)

// RateLimiter enforces a per-minute request cap by spacing requests
// evenly.
type RateLimiter struct {
	interval time.Duration
	last     time.Time
	sleep    func(time.Duration)
}

// NewRateLimiter creates a limiter allowing perMinute requests per minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		interval: time.Minute / time.Duration(perMinute),
		sleep:    time.Sleep,
	}
}

// Wait blocks until the next request is allowed.
func (r *RateLimiter) Wait() {
	if !r.last.IsZero() {
		if elapsed := time.Since(r.last); elapsed < r.interval {
			r.sleep(r.interval - elapsed)
		}
	}
	r.last = time.Now()
}

// getJSON performs a rate-limited GET with exponential backoff and decodes
// the JSON response into out.
func getJSON(client *http.Client, limiter *RateLimiter, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			logger.Warn("Request failed, retrying", "url", url, "attempt", attempt, "backoff", backoff, "error", lastErr)
			time.Sleep(backoff)
		}
		limiter.Wait()

		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to build request for %s: %w", url, err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
			continue
		}
		if err := json.Unmarshal(body, out); err != nil {
			lastErr = fmt.Errorf("failed to decode response from %s: %w", url, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}
