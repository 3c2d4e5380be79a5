package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultURL     = "http://ip-api.com/json/"
	DefaultTimeout = 10 * time.Second

	NotAvailable = "Location not available"
	ServiceError = "Location service error"
	Disabled     = "Location lookup disabled"
)

// Client resolves the public IP of this host to "city, region, country".
type Client struct {
	URL     string
	HTTP    *http.Client
	Enabled bool
}

func New(url string, timeout time.Duration, enabled bool) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{URL: url, HTTP: &http.Client{Timeout: timeout}, Enabled: enabled}
}

type lookupResponse struct {
	Status     string `json:"status"`
	City       string `json:"city"`
	RegionName string `json:"regionName"`
	Country    string `json:"country"`
}

// Lookup never fails; any problem degrades to a placeholder string.
func (c *Client) Lookup(ctx context.Context) string {
	if c == nil || !c.Enabled {
		return Disabled
	}
	location, err := c.lookup(ctx)
	if err != nil {
		slog.Warn("geolocation lookup failed", "url", c.URL, "err", err)
		return ServiceError
	}
	return location
}

func (c *Client) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NotAvailable, nil
	}
	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geolocation: %w", err)
	}
	return strings.Join([]string{body.City, body.RegionName, body.Country}, ", "), nil
}
