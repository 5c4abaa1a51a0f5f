// Package config holds application settings and the ship profile that the
// navigation graph and optimizer are built around.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

// Config holds application settings loaded from TOML (or defaults).
type Config struct {
	DataDir        string    `toml:"data_dir"`
	RefreshSeconds int       `toml:"refresh_seconds"`
	Regions        []int32   `toml:"regions"`
	ESIToken       string    `toml:"esi_token"`
	CharacterID    int64     `toml:"character_id"`
	Ship           Ship      `toml:"ship"`
	Match          Match     `toml:"match"`
	Optimizer      Optimizer `toml:"optimizer"`

	// DangerFeed scales the ship's danger-zone bonuses by live kill
	// statistics at startup.
	DangerFeed bool `toml:"danger_feed"`
}

// Ship describes the vehicle the route is planned for. The navigation graph's
// edge weights depend on every field here, so changing any of them invalidates
// the cached all-pairs distance table (see ProfileHash).
type Ship struct {
	Location        int64              `toml:"location"`
	CargoCapacity   float64            `toml:"cargo_capacity"`    // m³
	MaxWarpSpeed    float64            `toml:"max_warp_speed"`    // AU/s
	MaxSubwarpSpeed float64            `toml:"max_subwarp_speed"` // m/s
	DangerZones     map[string]float64 `toml:"danger_zones"`      // system name -> extra risk
	TimeCost        float64            `toml:"time_cost"`         // ISK per second of travel
	RiskCost        float64            `toml:"risk_cost"`         // ISK per unit of risk
	ShipValue       float64            `toml:"ship_value"`        // hull + fit, at stake while hauling
}

// Match holds the arbitrage matcher thresholds.
type Match struct {
	TaxRate         float64 `toml:"tax_rate"`
	ProfitThreshold float64 `toml:"profit_threshold"`
	MaxCapital      float64 `toml:"max_capital"`
	SnipeThreshold  float64 `toml:"snipe_threshold"`
}

// Optimizer holds the route search knobs.
type Optimizer struct {
	MaxCandidates int     `toml:"max_candidates"`
	MaxCapital    float64 `toml:"max_capital"`
}

// DefaultRegions is the set of contiguous highsec trade regions the planner
// covers by default.
var DefaultRegions = []int32{
	10000002, // The Forge
	10000016, // Lonetrek
	10000030, // Heimatar
	10000033, // The Citadel
	10000032, // Sinq Laison
	10000042, // Metropolis
	10000064, // Essence
	10000037, // Everyshore
	10000043, // Domain
	10000036, // Devoid
	10000052, // Kador
	10000067, // Genesis
	10000068, // Verge Vendor
	10000001, // Derelik
	10000020, // Tash-Murkon
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir:        "data",
		RefreshSeconds: 2,
		Regions:        append([]int32(nil), DefaultRegions...),
		Ship: Ship{
			CargoCapacity:   600,
			MaxWarpSpeed:    8.22,
			MaxSubwarpSpeed: 216.5,
			DangerZones:     map[string]float64{"Ahbazon": 0.5},
			TimeCost:        15_000_000.0 / 3600, // 15M ISK per hour of pilot time
			RiskCost:        60_000_000,
			ShipValue:       50_000_000,
		},
		Match: Match{
			TaxRate:         0.08,
			ProfitThreshold: 100_000,
			MaxCapital:      100_000_000,
			SnipeThreshold:  20_000_000,
		},
		Optimizer: Optimizer{
			MaxCandidates: 20_000,
			MaxCapital:    100_000_000,
		},
	}
}

// Load reads a TOML config file on top of the defaults. A missing file is not
// an error: the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ProfileHash returns a stable key for the ship profile, used to tag the
// persisted all-pairs distance table. Two ships with identical travel
// characteristics share a cache entry.
func (s *Ship) ProfileHash() string {
	zones := make([]string, 0, len(s.DangerZones))
	for name, bonus := range s.DangerZones {
		zones = append(zones, fmt.Sprintf("%s=%g", name, bonus))
	}
	sort.Strings(zones)

	h := sha256.New()
	fmt.Fprintf(h, "warp=%g;subwarp=%g;timecost=%g;riskcost=%g;",
		s.MaxWarpSpeed, s.MaxSubwarpSpeed, s.TimeCost, s.RiskCost)
	for _, z := range zones {
		fmt.Fprintf(h, "zone:%s;", z)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
