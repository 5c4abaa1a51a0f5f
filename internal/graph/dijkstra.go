package graph

import "container/heap"

// ShortestPath returns the minimum-weight path between two nodes using
// Dijkstra, including both endpoints. Returns ok=false if no path exists.
func (g *Graph) ShortestPath(source, target int64) ([]int64, bool) {
	if !g.Contains(source) || !g.Contains(target) {
		return nil, false
	}
	if source == target {
		return []int64{source}, true
	}

	dist := map[int64]float64{source: 0}
	prev := make(map[int64]int64)

	pq := &priorityQueue{{nodeID: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if item.nodeID == target {
			// Walk predecessors back to the source.
			path := []int64{target}
			for at := target; at != source; {
				at = prev[at]
				path = append(path, at)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, true
		}
		if d, ok := dist[item.nodeID]; ok && item.dist > d {
			continue
		}
		for _, neighbor := range g.adj[item.nodeID] {
			e := g.edges[keyOf(item.nodeID, neighbor)]
			nd := item.dist + e.Weight
			if d, ok := dist[neighbor]; !ok || nd < d {
				dist[neighbor] = nd
				prev[neighbor] = item.nodeID
				heap.Push(pq, pqItem{nodeID: neighbor, dist: nd})
			}
		}
	}
	return nil, false
}

// distancesFrom runs Dijkstra to completion from one source, returning the
// weight of the shortest path to every reachable node.
func (g *Graph) distancesFrom(source int64) map[int64]float64 {
	dist := map[int64]float64{source: 0}
	done := make(map[int64]bool)

	pq := &priorityQueue{{nodeID: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if done[item.nodeID] {
			continue
		}
		done[item.nodeID] = true
		for _, neighbor := range g.adj[item.nodeID] {
			e := g.edges[keyOf(item.nodeID, neighbor)]
			nd := item.dist + e.Weight
			if d, ok := dist[neighbor]; !ok || nd < d {
				dist[neighbor] = nd
				heap.Push(pq, pqItem{nodeID: neighbor, dist: nd})
			}
		}
	}
	return dist
}

// allPairsDistances computes the full distance table, one Dijkstra per node.
func (g *Graph) allPairsDistances() map[int64]map[int64]float64 {
	all := make(map[int64]map[int64]float64, len(g.adj))
	for node := range g.adj {
		all[node] = g.distancesFrom(node)
	}
	return all
}

// Priority queue for Dijkstra
type pqItem struct {
	nodeID int64
	dist   float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
