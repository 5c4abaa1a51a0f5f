package graph

// Base risk parameters. Tuned so that a 1.0-security system contributes a
// negligible baseline while null-security transit dominates any route score.
const (
	baseRisk       = 0.00004
	securityScale  = 0.0004
	lowSecPenalty  = 0.005 // below 0.5 security: gate camps, gankers
	nullSecPenalty = 0.5   // below 0.1 security: effectively lawless
	lowSecCutoff   = 0.5
	nullSecCutoff  = 0.1
)

// travelRisk scores the risk of arriving at a location: a base term growing
// as security drops, two step increases at the security cutoffs, plus any
// per-system danger bonus from the ship profile (known camp systems etc.).
func (g *Graph) travelRisk(to int64) float64 {
	loc := g.data.Locations[to]

	risk := baseRisk + (1-loc.Security)*securityScale
	if loc.Security < lowSecCutoff {
		risk += lowSecPenalty
	}
	if loc.Security < nullSecCutoff {
		risk += nullSecPenalty
	}

	if len(g.ship.DangerZones) > 0 {
		risk += g.ship.DangerZones[g.data.SystemName(loc.SystemID)]
	}
	return risk
}
