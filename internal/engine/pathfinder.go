package engine

import (
	"log"

	"eve-courier/internal/graph"
)

// FilterTrades keeps only the trades the ship can actually fly: both
// stations must exist in the navigation graph and belong to the same region,
// and the trade must still be profitable after paying the estimated
// transport cost from the ship's location. The route optimizer only ever
// sees trades returned from here.
func FilterTrades(trades []Trade, g *graph.Graph, shipLocation int64) []Trade {
	filtered := make([]Trade, 0, len(trades))
	var droppedGraph, droppedRegion, droppedPath, droppedProfit int

	for _, t := range trades {
		if !g.Contains(t.FromStation) || !g.Contains(t.ToStation) {
			droppedGraph++
			continue
		}
		fromRegion, okFrom := g.RegionOf(t.FromStation)
		toRegion, okTo := g.RegionOf(t.ToStation)
		if !okFrom || !okTo || fromRegion != toRegion {
			droppedRegion++
			continue
		}

		approach, ok := g.ShortestDistance(shipLocation, t.FromStation)
		if !ok {
			droppedPath++
			continue
		}
		haul, ok := g.ShortestDistance(t.FromStation, t.ToStation)
		if !ok {
			droppedPath++
			continue
		}

		t.NetProfit = t.GrossProfit - (approach + haul)
		t.HasNetProfit = true
		if t.NetProfit <= 0 {
			droppedProfit++
			continue
		}
		filtered = append(filtered, t)
	}

	log.Printf("[Pathfinder] %d trades in, %d out (dropped: %d off-graph, %d cross-region, %d unreachable, %d unprofitable)",
		len(trades), len(filtered), droppedGraph, droppedRegion, droppedPath, droppedProfit)
	return filtered
}
