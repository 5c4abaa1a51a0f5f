package zkillboard

import (
	"fmt"
	"sync"
	"time"

	"eve-courier/internal/logger"
	"eve-courier/internal/sde"
)

// Kill counts framing the calibration: at or below quietKills a configured
// danger zone keeps half its bonus, at hotKills and above it doubles
// (capped at maxBonus).
const (
	quietKills = 50
	hotKills   = 500
	maxBonus   = 1.0
)

// Calibrate scales the configured danger-zone bonuses by each system's
// recent kill count. Systems the static data doesn't know, or whose stats
// can't be fetched, keep their configured bonus unchanged. The input map is
// not modified.
func Calibrate(c *Client, data *sde.Data, zones map[string]float64) map[string]float64 {
	systemIDs := make(map[string]int32, len(zones))
	for _, sys := range data.Systems {
		if _, ok := zones[sys.Name]; ok {
			systemIDs[sys.Name] = sys.ID
		}
	}

	out := make(map[string]float64, len(zones))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, bonus := range zones {
		systemID, known := systemIDs[name]
		if !known {
			out[name] = bonus
			continue
		}
		wg.Add(1)
		go func(name string, systemID int32, bonus float64) {
			defer wg.Done()
			calibrated := bonus
			if stats, err := c.GetSystemStats(systemID); err == nil {
				kills := stats.RecentKills(time.Now().UTC())
				calibrated = scaleBonus(bonus, kills)
				logger.Info("Zkillboard", fmt.Sprintf("%s: %d kills this month, bonus %.2f -> %.2f", name, kills, bonus, calibrated))
			} else {
				logger.Warn("Zkillboard", fmt.Sprintf("Stats for %s unavailable: %v", name, err))
			}
			mu.Lock()
			out[name] = calibrated
			mu.Unlock()
		}(name, systemID, bonus)
	}
	wg.Wait()
	return out
}

// scaleBonus interpolates linearly between half and double the configured
// bonus across the quiet-to-hot kill range.
func scaleBonus(base float64, kills int64) float64 {
	factor := 2.0
	switch {
	case kills <= quietKills:
		factor = 0.5
	case kills < hotKills:
		factor = 0.5 + 1.5*float64(kills-quietKills)/float64(hotKills-quietKills)
	}
	bonus := base * factor
	if bonus > maxBonus {
		bonus = maxBonus
	}
	return bonus
}
