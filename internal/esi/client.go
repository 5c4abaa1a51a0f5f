// Package esi is the HTTP client for the EVE Swagger Interface, the external
// source of market orders and the navigation-assist endpoints. Token
// acquisition and refresh are out of scope; an access token is injected.
package esi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

const baseURL = "https://esi.evetech.net/latest"

// Client is a rate-limited ESI HTTP client.
type Client struct {
	http        *http.Client
	sem         chan struct{}
	token       string // optional; required only for the navigation endpoints
	characterID int64
	group       singleflight.Group
}

// NewClient creates an ESI client with rate limiting.
// ESI allows up to 150 error-free requests/sec; 50 concurrent is comfortable.
func NewClient(token string, characterID int64) *Client {
	return &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		sem:         make(chan struct{}, 50),
		token:       token,
		characterID: characterID,
	}
}

// HealthCheck pings ESI to verify connectivity.
func (c *Client) HealthCheck() bool {
	req, err := newRequest("GET", baseURL+"/status/?datasource=tranquility", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == 200
}

// GetJSON fetches a URL and decodes JSON into dst.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := newRequest("GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ESI %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// authedDo performs a request with the bearer token attached.
func (c *Client) authedDo(method, url string, payload interface{}) (*http.Response, error) {
	if c.token == "" {
		return nil, fmt.Errorf("no ESI token configured")
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
	}

	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := newRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// newRequest creates a standard ESI request with common headers.
func newRequest(method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "eve-courier/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// parsePages reads the X-Pages header, defaulting to 1.
func parsePages(resp *http.Response) int {
	if p := resp.Header.Get("X-Pages"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// parseExpires reads the Expires header from an ESI response.
// Falls back to a 5-minute TTL if the header is missing or unparseable;
// ESI market orders typically refresh every 5 minutes.
func parseExpires(resp *http.Response) time.Time {
	if exp := resp.Header.Get("Expires"); exp != "" {
		if t, err := time.Parse(time.RFC1123, exp); err == nil {
			return t
		}
	}
	return time.Now().Add(5 * time.Minute)
}
