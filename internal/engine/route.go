package engine

import (
	"log"
	"math"
	"sort"

	"eve-courier/internal/config"
	"eve-courier/internal/graph"
)

// Optimize searches for the route with the best profit rate (net ISK per
// second of travel). Each of the top candidate trades seeds a three-stop
// skeleton (ship location, pickup, dropoff); the skeleton is then packed
// with every compatible trade that fits the remaining cargo and capital, and
// the best-scoring packed skeleton wins. The candidate cap bounds skeleton
// seeds only; packing always draws from the full trade list. Returns nil
// when no route beats a zero profit rate.
//
// Trades must have passed FilterTrades first; Optimize assumes both
// endpoints are reachable.
func Optimize(trades []Trade, g *graph.Graph, ship *config.Ship, p OptimizeParams) ([]graph.RouteStep, *RouteInfo) {
	// Capital efficiency: gross profit per ISK tied up. Stable sort keeps
	// results deterministic for equal ratios.
	sort.SliceStable(trades, func(i, j int) bool {
		return capitalEfficiency(&trades[i]) > capitalEfficiency(&trades[j])
	})

	limit := len(trades)
	if p.MaxCandidates > 0 && limit > p.MaxCandidates {
		limit = p.MaxCandidates
	}
	log.Printf("[Optimizer] considering %d of %d trades", limit, len(trades))

	type skeleton struct{ ship, from, to int64 }
	seen := make(map[skeleton]bool)

	var (
		bestSteps []graph.RouteStep
		bestInfo  *RouteInfo
		bestRate  float64
	)

	for i := 0; i < limit; i++ {
		t := &trades[i]
		sk := skeleton{ship.Location, t.FromStation, t.ToStation}
		if seen[sk] {
			continue
		}
		seen[sk] = true

		selected := selectTrades(trades, [3]int64{ship.Location, t.FromStation, t.ToStation}, ship.CargoCapacity, p.MaxCapital)
		if len(selected) == 0 {
			continue
		}

		approach, ok := g.ShortestPath(ship.Location, t.FromStation)
		if !ok {
			continue
		}
		haul, ok := g.ShortestPath(t.FromStation, t.ToStation)
		if !ok {
			continue
		}
		// Drop the junction duplicate where the legs meet.
		path := append(append([]int64{}, approach[:len(approach)-1]...), haul...)

		transportTime, risk := g.PathTimeRisk(path)
		if transportTime == 0 {
			continue
		}

		var grossProfit, goodsCapital float64
		for j := range selected {
			grossProfit += selected[j].GrossProfit
			goodsCapital += selected[j].CapitalSpent()
		}
		capital := ship.ShipValue + goodsCapital
		netProfit := grossProfit - risk*capital
		rate := netProfit / transportTime

		if rate > bestRate {
			bestRate = rate
			steps := g.FormatRoute(path)
			setActions(steps, selected)
			bestSteps = steps
			bestInfo = &RouteInfo{
				ProfitRate:    rate,
				Risk:          risk,
				Capital:       capital,
				TransportTime: transportTime,
				GrossProfit:   grossProfit,
				NetProfit:     netProfit,
			}
		}
	}

	if bestInfo != nil {
		log.Printf("[Optimizer] best route: %.0f ISK/s, net %.0f ISK over %.0fs", bestInfo.ProfitRate, bestInfo.NetProfit, bestInfo.TransportTime)
	} else {
		log.Printf("[Optimizer] no profitable route found")
	}
	return bestSteps, bestInfo
}

// capitalEfficiency is gross profit per ISK of buy-side capital.
func capitalEfficiency(t *Trade) float64 {
	spent := t.CapitalSpent()
	if spent == 0 {
		return 0
	}
	return t.GrossProfit / spent
}

// selectTrades greedily packs a skeleton with compatible trades, most
// cargo-dense first. A trade is compatible when both its stations lie on the
// skeleton and its buy stop comes before its sell stop, so a shipLocation ->
// pickup leg rides along with the pickup -> dropoff haul. A shared per-order
// ledger prevents double-spending an order's remaining volume across trades
// that reference it. Selected trades are re-quantified copies sized to
// whatever constraint binds first.
func selectTrades(trades []Trade, stops [3]int64, cargoCapacity, maxCapital float64) []Trade {
	stopIndex := func(loc int64) int {
		for i, stop := range stops {
			if stop == loc {
				return i
			}
		}
		return -1
	}

	compatible := make([]*Trade, 0, 16)
	for i := range trades {
		buyAt := stopIndex(trades[i].FromStation)
		sellAt := stopIndex(trades[i].ToStation)
		if buyAt >= 0 && sellAt >= 0 && buyAt < sellAt {
			compatible = append(compatible, &trades[i])
		}
	}
	// Cargo density: gross profit per m³ of hold space.
	sort.SliceStable(compatible, func(i, j int) bool {
		return cargoDensity(compatible[i]) > cargoDensity(compatible[j])
	})

	usedOrders := make(map[int64]int64)
	remaining := func(orderID, quantity int64) int64 {
		if r, ok := usedOrders[orderID]; ok {
			return r
		}
		return quantity
	}

	var (
		selected    []Trade
		cargoUsed   float64
		capitalUsed float64
	)
	for _, t := range compatible {
		if cargoUsed >= cargoCapacity || capitalUsed >= maxCapital {
			break
		}
		if t.ItemVolume == 0 || t.FromPrice == 0 {
			continue
		}

		quantity := min(t.Quantity, remaining(t.FromOrderID, t.Quantity))
		quantity = min(quantity, remaining(t.ToOrderID, t.Quantity))
		quantity = min(quantity, int64(math.Floor((cargoCapacity-cargoUsed)/t.ItemVolume)))
		quantity = min(quantity, int64(math.Floor((maxCapital-capitalUsed)/t.FromPrice)))
		if quantity <= 0 {
			continue
		}

		usedOrders[t.FromOrderID] = remaining(t.FromOrderID, t.Quantity) - quantity
		usedOrders[t.ToOrderID] = remaining(t.ToOrderID, t.Quantity) - quantity
		cargoUsed += float64(quantity) * t.ItemVolume
		capitalUsed += float64(quantity) * t.FromPrice

		scaled := *t
		scaled.Quantity = quantity
		scaled.Cargo = float64(quantity) * t.ItemVolume
		scaled.GrossProfit = t.UnitProfit() * float64(quantity)
		selected = append(selected, scaled)
	}
	return selected
}

// cargoDensity is gross profit per m³ of hold space.
func cargoDensity(t *Trade) float64 {
	if t.Cargo == 0 {
		return 0
	}
	return t.GrossProfit / t.Cargo
}

// setActions attaches buy/sell actions to the matching route steps. A sell
// is only emitted for item types actually bought earlier on the route, so a
// route never instructs selling cargo it doesn't carry.
func setActions(steps []graph.RouteStep, trades []Trade) {
	bought := make(map[int32]bool)
	for i := range trades {
		t := &trades[i]
		for s := range steps {
			step := &steps[s]
			if step.Type != "station" {
				continue
			}
			if step.LocationID == t.FromStation {
				step.Actions = append(step.Actions, graph.Action{
					Type:     "buy",
					Item:     t.ItemName,
					TypeID:   t.TypeID,
					Quantity: t.Quantity,
					Price:    t.FromPrice,
				})
				bought[t.TypeID] = true
			}
			if step.LocationID == t.ToStation && bought[t.TypeID] {
				step.Actions = append(step.Actions, graph.Action{
					Type:     "sell",
					Item:     t.ItemName,
					TypeID:   t.TypeID,
					Quantity: t.Quantity,
					Price:    t.ToPrice,
				})
			}
		}
	}
	for s := range steps {
		actions := steps[s].Actions
		sort.SliceStable(actions, func(i, j int) bool {
			if actions[i].Type != actions[j].Type {
				return actions[i].Type < actions[j].Type
			}
			if actions[i].Item != actions[j].Item {
				return actions[i].Item < actions[j].Item
			}
			return actions[i].Price < actions[j].Price
		})
	}
}
