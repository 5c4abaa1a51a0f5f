package graph

import "fmt"

// Action is a buy or sell instruction attached to a route step.
type Action struct {
	Type     string  `json:"action_type"` // "buy" or "sell"
	Item     string  `json:"item"`
	TypeID   int32   `json:"type_id"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// RouteStep is one stop on a formatted route.
type RouteStep struct {
	LocationID int64    `json:"location_id"`
	SystemID   int32    `json:"solar_system_id"`
	Type       string   `json:"location_type"` // "station" or "system"
	Label      string   `json:"location"`
	Actions    []Action `json:"actions"`
}

// FormatRoute turns a raw node path into display-ready steps. Consecutive
// stargate hops inside one solar system collapse into a single system-level
// step; stations survive as their own steps. Actions start empty for the
// optimizer to fill in.
func (g *Graph) FormatRoute(path []int64) []RouteStep {
	combined := g.collapseGates(path)

	steps := make([]RouteStep, 0, len(combined))
	for _, locationID := range combined {
		if step, ok := g.describeLocation(locationID); ok {
			steps = append(steps, step)
		}
	}
	return steps
}

// collapseGates reduces a node path to the IDs worth surfacing: stations as
// themselves, and each same-system gate-to-gate traversal as the system ID.
func (g *Graph) collapseGates(path []int64) []int64 {
	var combined []int64
	push := func(id int64) {
		if len(combined) == 0 || combined[len(combined)-1] != id {
			combined = append(combined, id)
		}
	}

	for i := 0; i+1 < len(path); i++ {
		cur := g.data.Locations[path[i]]
		next := g.data.Locations[path[i+1]]
		if cur == nil {
			continue
		}
		switch {
		case cur.IsStation:
			push(cur.ID)
		case next != nil && !next.IsStation && cur.SystemID == next.SystemID:
			// Transit through a system: entry gate to exit gate.
			push(int64(cur.SystemID))
		}
	}
	if len(path) > 0 {
		if last := g.data.Locations[path[len(path)-1]]; last != nil && last.IsStation {
			push(last.ID)
		}
	}
	return combined
}

// describeLocation builds the display step for a station or a solar system.
// Unknown IDs are dropped with a warning by the caller's loop (ok=false).
func (g *Graph) describeLocation(locationID int64) (RouteStep, bool) {
	if loc, ok := g.data.Locations[locationID]; ok {
		system := g.data.Systems[loc.SystemID]
		systemName := ""
		if system != nil {
			systemName = system.Name
		}
		return RouteStep{
			LocationID: locationID,
			SystemID:   loc.SystemID,
			Type:       "station",
			Label:      fmt.Sprintf("%s - %s - %s", g.data.Regions[loc.RegionID], systemName, loc.Name),
			Actions:    []Action{},
		}, true
	}
	if system, ok := g.data.Systems[int32(locationID)]; ok {
		return RouteStep{
			LocationID: locationID,
			SystemID:   system.ID,
			Type:       "system",
			Label:      fmt.Sprintf("%s - %s", g.data.Regions[system.RegionID], system.Name),
			Actions:    []Action{},
		}, true
	}
	return RouteStep{}, false
}
