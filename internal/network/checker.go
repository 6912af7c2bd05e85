// Package network checks whether the outside world is reachable.
package network

import (
	"context"
	"net/http"
	"time"
)

// Checker sends a HEAD request to a well-known URL
type Checker struct {
	url    string
	client *http.Client
}

// NewChecker creates a checker for url with the given timeout
func NewChecker(url string, timeout time.Duration) *Checker {
	return &Checker{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Reachable reports whether the URL answered with a 2xx status
func (c *Checker) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
