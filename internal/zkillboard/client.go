// Package zkillboard calibrates danger-zone risk bonuses against live kill
// activity from the Zkillboard API.
package zkillboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"eve-courier/internal/logger"
)

const baseURL = "https://zkillboard.com/api"

// Client is a rate-limited Zkillboard API client.
// Zkillboard has strict rate limits: 10 requests per second max.
type Client struct {
	http    *http.Client
	sem     chan struct{}
	mu      sync.Mutex
	lastReq time.Time
}

// NewClient creates a Zkillboard client with rate limiting.
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: 60 * time.Second}, // Zkillboard can be slow
		sem:  make(chan struct{}, 5),                  // Max 5 concurrent requests
	}
}

// SystemStats contains kill statistics for a solar system.
type SystemStats struct {
	ID             int32                  `json:"id"`
	Type           string                 `json:"type"`
	ShipsDestroyed int64                  `json:"shipsDestroyed"`
	ISKDestroyed   float64                `json:"iskDestroyed"`
	Months         map[string]*MonthStats `json:"months"`
}

// MonthStats contains monthly kill statistics.
type MonthStats struct {
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	ShipsDestroyed int64   `json:"shipsDestroyed"`
	ISKDestroyed   float64 `json:"iskDestroyed"`
}

// RecentKills returns ShipsDestroyed for the current month, falling back to
// zero when the feed carries no monthly breakdown.
func (s *SystemStats) RecentKills(now time.Time) int64 {
	key := fmt.Sprintf("%d%02d", now.Year(), int(now.Month()))
	if m, ok := s.Months[key]; ok {
		return m.ShipsDestroyed
	}
	return 0
}

// GetSystemStats fetches kill statistics for a solar system.
func (c *Client) GetSystemStats(systemID int32) (*SystemStats, error) {
	url := fmt.Sprintf("%s/stats/solarSystemID/%d/", baseURL, systemID)

	var stats SystemStats
	if err := c.getJSON(url, &stats); err != nil {
		return nil, fmt.Errorf("get system stats %d: %w", systemID, err)
	}

	return &stats, nil
}

// getJSON fetches a URL and decodes JSON with rate limiting.
func (c *Client) getJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	// Rate limit: minimum 200ms between requests
	c.mu.Lock()
	elapsed := time.Since(c.lastReq)
	if elapsed < 200*time.Millisecond {
		time.Sleep(200*time.Millisecond - elapsed)
	}
	c.lastReq = time.Now()
	c.mu.Unlock()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "eve-courier/1.0 (https://github.com)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		// Rate limited - wait and retry
		logger.Warn("Zkillboard", "Rate limited, waiting 10 seconds...")
		time.Sleep(10 * time.Second)
		return c.getJSON(url, dst)
	}

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("zkillboard %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// HealthCheck pings Zkillboard to verify connectivity.
func (c *Client) HealthCheck() bool {
	url := baseURL + "/stats/solarSystemID/30000142/" // Jita - always has data

	req, err := http.NewRequest("HEAD", url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "eve-courier/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode == 200
}
