// Package geocode is the best-effort reverse-geocoding collaborator. The
// core accepts whatever label it returns, including an empty one; a failed
// lookup never fails a submission.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Resolver interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// Noop is used when no geocoder endpoint is configured.
type Noop struct{}

func (Noop) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	return "", nil
}

// Client talks to a Nominatim-compatible reverse endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	Address struct {
		Village  string `json:"village"`
		Suburb   string `json:"suburb"`
		City     string `json:"city"`
		County   string `json:"county"`
		District string `json:"city_district"`
	} `json:"address"`
	DisplayName string `json:"display_name"`
}

func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	for _, candidate := range []string{
		payload.Address.Village,
		payload.Address.Suburb,
		payload.Address.District,
		payload.Address.City,
		payload.Address.County,
	} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return payload.DisplayName, nil
}
