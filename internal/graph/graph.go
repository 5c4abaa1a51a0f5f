// Package graph models the navigation graph over stations and stargates and
// answers shortest-path and shortest-distance queries for a given ship.
//
// Edges carry three attributes: travel time in seconds, a risk score, and the
// scalar weight the search minimizes:
//
//	weight = time*TimeCost + risk*RiskCost
//
// Both terms are non-negative, which Dijkstra requires.
package graph

import (
	"fmt"
	"sort"

	"eve-courier/internal/config"
	"eve-courier/internal/logger"
	"eve-courier/internal/sde"
)

// Edge holds the attributes of one undirected connection.
type Edge struct {
	Time   float64 // seconds
	Risk   float64
	Weight float64
}

// DistanceStore persists the all-pairs distance table, keyed by ship profile.
type DistanceStore interface {
	LoadDistances(profileHash string) (map[int64]map[int64]float64, bool)
	SaveDistances(profileHash string, dist map[int64]map[int64]float64)
}

type edgeKey struct {
	a, b int64 // a < b
}

func keyOf(u, v int64) edgeKey {
	if u > v {
		u, v = v, u
	}
	return edgeKey{u, v}
}

// Graph is the navigation graph for one ship profile.
type Graph struct {
	data  *sde.Data
	ship  *config.Ship
	adj   map[int64][]int64
	edges map[edgeKey]Edge
	dist  map[int64]map[int64]float64
}

// New builds the navigation graph: intra-system connections between every
// pair of locations sharing a solar system, plus stargate jump edges. The
// all-pairs distance table is loaded from store when a matching profile entry
// exists, otherwise computed and persisted.
func New(data *sde.Data, ship *config.Ship, store DistanceStore) *Graph {
	g := &Graph{
		data:  data,
		ship:  ship,
		adj:   make(map[int64][]int64),
		edges: make(map[edgeKey]Edge),
	}
	g.addIntraSystemConnections()
	g.addStargateConnections()
	logger.Info("Graph", fmt.Sprintf("Built graph: %d nodes, %d edges", len(g.adj), len(g.edges)))

	hash := ship.ProfileHash()
	if store != nil {
		if dist, ok := store.LoadDistances(hash); ok {
			logger.Info("Graph", "Loaded cached all-pairs distances")
			g.dist = dist
			return g
		}
	}
	logger.Info("Graph", "Computing all-pairs distances (this can take a while)...")
	g.dist = g.allPairsDistances()
	if store != nil {
		store.SaveDistances(hash, g.dist)
		logger.Success("Graph", "Cached all-pairs distances")
	}
	return g
}

// Contains reports whether a location is a node of the graph.
func (g *Graph) Contains(locationID int64) bool {
	_, ok := g.adj[locationID]
	return ok
}

// RegionOf resolves the region of a location known to the static data.
func (g *Graph) RegionOf(locationID int64) (int32, bool) {
	return g.data.RegionOf(locationID)
}

// EdgeBetween returns the edge attributes between two adjacent nodes.
func (g *Graph) EdgeBetween(u, v int64) (Edge, bool) {
	e, ok := g.edges[keyOf(u, v)]
	return e, ok
}

// PathTimeRisk sums time and risk over the edges of a path.
func (g *Graph) PathTimeRisk(path []int64) (totalTime, totalRisk float64) {
	for i := 1; i < len(path); i++ {
		if e, ok := g.edges[keyOf(path[i-1], path[i])]; ok {
			totalTime += e.Time
			totalRisk += e.Risk
		}
	}
	return totalTime, totalRisk
}

// ShortestDistance returns the cached all-pairs distance between two nodes.
// Disconnected or unknown pairs report ok=false, not an error.
func (g *Graph) ShortestDistance(source, target int64) (float64, bool) {
	row, ok := g.dist[source]
	if !ok {
		return 0, false
	}
	d, ok := row[target]
	return d, ok
}

func (g *Graph) addEdge(u, v int64) {
	key := keyOf(u, v)
	if _, exists := g.edges[key]; exists {
		return
	}
	t := g.travelTime(u, v)
	r := g.travelRisk(v)
	g.edges[key] = Edge{
		Time:   t,
		Risk:   r,
		Weight: t*g.ship.TimeCost + r*g.ship.RiskCost,
	}
	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
}

// addIntraSystemConnections links every pair of locations (stations and
// gates alike) sharing a solar system: in-system warping is always possible.
func (g *Graph) addIntraSystemConnections() {
	bySystem := make(map[int32][]int64)
	for id, loc := range g.data.Locations {
		bySystem[loc.SystemID] = append(bySystem[loc.SystemID], id)
	}
	for _, ids := range bySystem {
		// Sorted so edge orientation (and thus the risk endpoint) is stable
		// across runs regardless of map iteration order.
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				g.addEdge(ids[i], ids[j])
			}
		}
	}
}

// addStargateConnections links gate pairs across systems. Connections whose
// endpoints fall outside the loaded regions are skipped.
func (g *Graph) addStargateConnections() {
	skipped := 0
	for _, pair := range g.data.Gates {
		from, to := pair[0], pair[1]
		if g.data.Locations[from] == nil || g.data.Locations[to] == nil {
			skipped++
			continue
		}
		g.addEdge(from, to)
	}
	if skipped > 0 {
		logger.Info("Graph", fmt.Sprintf("Skipped %d gate connections outside loaded regions", skipped))
	}
}
