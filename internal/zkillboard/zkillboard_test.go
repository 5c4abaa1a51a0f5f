package zkillboard

import (
	"encoding/json"
	"testing"
	"time"

	"eve-courier/internal/sde"
)

func TestNewClient_NonNil(t *testing.T) {
	c := NewClient()
	if c == nil {
		t.Fatal("NewClient() returned nil")
	}
}

func TestSystemStats_UnmarshalJSON(t *testing.T) {
	raw := `{"id":30000142,"type":"solarSystemID","shipsDestroyed":5000,"iskDestroyed":1.5e12,"months":{"202608":{"year":2026,"month":8,"shipsDestroyed":120}}}`
	var s SystemStats
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.ID != 30000142 || s.Type != "solarSystemID" {
		t.Errorf("ID/Type = %v/%q", s.ID, s.Type)
	}
	if s.ShipsDestroyed != 5000 || s.ISKDestroyed != 1.5e12 {
		t.Errorf("ShipsDestroyed/ISKDestroyed = %v/%v", s.ShipsDestroyed, s.ISKDestroyed)
	}
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	if got := s.RecentKills(now); got != 120 {
		t.Errorf("RecentKills = %d, want 120", got)
	}
	if got := s.RecentKills(now.AddDate(0, 1, 0)); got != 0 {
		t.Errorf("RecentKills for a missing month = %d, want 0", got)
	}
}

func TestScaleBonus(t *testing.T) {
	if got := scaleBonus(0.5, 10); got != 0.25 {
		t.Errorf("quiet system: got %v, want 0.25", got)
	}
	if got := scaleBonus(0.5, 1000); got != 1.0 {
		t.Errorf("hot system: got %v, want 1.0", got)
	}
	mid := scaleBonus(0.5, (quietKills+hotKills)/2)
	if mid <= 0.25 || mid >= 1.0 {
		t.Errorf("midrange should fall between the extremes, got %v", mid)
	}
	// Cap applies even for large configured bonuses.
	if got := scaleBonus(0.9, 10000); got != maxBonus {
		t.Errorf("cap: got %v, want %v", got, maxBonus)
	}
}

func TestCalibrateKeepsUnknownSystems(t *testing.T) {
	data := &sde.Data{Systems: map[int32]*sde.SolarSystem{}}
	zones := map[string]float64{"Ahbazon": 0.5}

	out := Calibrate(NewClient(), data, zones)
	if out["Ahbazon"] != 0.5 {
		t.Errorf("unknown system must keep its configured bonus, got %v", out["Ahbazon"])
	}
	zones["Ahbazon"] = 0.7
	if out["Ahbazon"] != 0.5 {
		t.Error("output must not alias the input map")
	}
}
