package engine

import (
	"log"
	"math"
	"sort"

	"eve-courier/internal/esi"
)

// Match discovers profitable sell/buy order pairs under the cargo and
// capital constraints. Orders are partitioned by side, filtered, grouped by
// item type and cross-matched; every surviving pair becomes one Trade.
//
// The per-type cross product is intentional: the cargo and capital filters
// sharply bound candidate counts before it runs.
func Match(orders []esi.Order, cargoCapacity float64, p MatchParams) []Trade {
	var sellOrders, buyOrders []esi.Order
	for _, o := range orders {
		if o.IsBuyOrder {
			buyOrders = append(buyOrders, o)
		} else {
			sellOrders = append(sellOrders, o)
		}
	}
	sortOrders(sellOrders, false) // cheapest sells first
	sortOrders(buyOrders, true)   // highest buys first

	log.Printf("[Match] initial sell orders: %d, buy orders: %d", len(sellOrders), len(buyOrders))

	sellOrders = filterForCargo(sellOrders, cargoCapacity)
	buyOrders = filterForCargo(buyOrders, cargoCapacity)
	log.Printf("[Match] after cargo filter: %d sell, %d buy", len(sellOrders), len(buyOrders))

	sellOrders = filterForCapital(sellOrders, p.MaxCapital)
	buyOrders = filterForCapital(buyOrders, p.MaxCapital)
	log.Printf("[Match] after capital filter: %d sell, %d buy", len(sellOrders), len(buyOrders))

	return createTrades(sellOrders, buyOrders, p)
}

// Snipe restricts matching to trades sourced in one region and returns the
// single best one if it clears the snipe threshold, else nil. Used for
// opportunistic single-trade alerts independent of route planning.
func Snipe(orders []esi.Order, cargoCapacity float64, regionID int32, p MatchParams) *Trade {
	trades := Match(orders, cargoCapacity, p)

	orderRegions := make(map[int64]int32, len(orders))
	for _, o := range orders {
		orderRegions[o.OrderID] = o.RegionID
	}

	var best *Trade
	for i := range trades {
		if orderRegions[trades[i].FromOrderID] != regionID {
			continue
		}
		if best == nil || trades[i].GrossProfit > best.GrossProfit {
			best = &trades[i]
		}
	}

	if best != nil && best.GrossProfit > p.SnipeThreshold {
		log.Printf("[Snipe] region %d: %s x%d for %.0f ISK", regionID, best.ItemName, best.Quantity, best.GrossProfit)
		out := *best
		return &out
	}
	return nil
}

// sortOrders orders by price (descending for the buy side), breaking price
// ties by order ID so matching is deterministic regardless of input order.
func sortOrders(orders []esi.Order, descending bool) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Price == orders[j].Price {
			return orders[i].OrderID < orders[j].OrderID
		}
		if descending {
			return orders[i].Price > orders[j].Price
		}
		return orders[i].Price < orders[j].Price
	})
}

// filterForCargo drops orders whose item doesn't fit the hold at all and
// caps the usable volume at what the hold can carry. Orders are copied, the
// snapshot is never mutated.
func filterForCargo(orders []esi.Order, cargoCapacity float64) []esi.Order {
	filtered := make([]esi.Order, 0, len(orders))
	for _, o := range orders {
		if o.ItemVolume == 0 {
			continue
		}
		maxQuantity := int64(math.Floor(cargoCapacity / o.ItemVolume))
		remain := min(o.VolumeRemain, maxQuantity)
		if remain > 0 {
			o.VolumeRemain = remain
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// filterForCapital drops zero-priced orders and caps the usable volume at
// what the capital budget can buy.
func filterForCapital(orders []esi.Order, maxCapital float64) []esi.Order {
	filtered := make([]esi.Order, 0, len(orders))
	for _, o := range orders {
		if o.Price == 0 {
			continue
		}
		maxQuantity := int64(math.Floor(maxCapital / o.Price))
		remain := min(o.VolumeRemain, maxQuantity)
		if remain > 0 {
			o.VolumeRemain = remain
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// createTrades cross-matches the filtered sides per item type.
func createTrades(sellOrders, buyOrders []esi.Order, p MatchParams) []Trade {
	groupedSells := make(map[int32][]esi.Order)
	groupedBuys := make(map[int32][]esi.Order)
	for _, o := range sellOrders {
		groupedSells[o.TypeID] = append(groupedSells[o.TypeID], o)
	}
	for _, o := range buyOrders {
		groupedBuys[o.TypeID] = append(groupedBuys[o.TypeID], o)
	}

	// Sorted type iteration keeps the trade list deterministic.
	typeIDs := make([]int32, 0, len(groupedSells))
	for typeID := range groupedSells {
		if _, ok := groupedBuys[typeID]; ok {
			typeIDs = append(typeIDs, typeID)
		}
	}
	sort.Slice(typeIDs, func(i, j int) bool { return typeIDs[i] < typeIDs[j] })

	var trades []Trade
	for _, typeID := range typeIDs {
		for _, sell := range groupedSells[typeID] {
			for _, buy := range groupedBuys[typeID] {
				effectiveBuyPrice := buy.Price * (1 - p.TaxRate)
				if effectiveBuyPrice < sell.Price {
					continue
				}

				quantity := min(sell.VolumeRemain, buy.VolumeRemain)
				grossProfit := float64(quantity) * (effectiveBuyPrice - sell.Price)
				if grossProfit < p.ProfitThreshold {
					continue
				}

				trades = append(trades, Trade{
					FromStation: sell.LocationID,
					ToStation:   buy.LocationID,
					FromOrderID: sell.OrderID,
					ToOrderID:   buy.OrderID,
					ItemName:    sell.ItemName,
					TypeID:      sell.TypeID,
					ItemVolume:  sell.ItemVolume,
					FromPrice:   sell.Price,
					ToPrice:     buy.Price,
					Quantity:    quantity,
					Cargo:       float64(quantity) * sell.ItemVolume,
					GrossProfit: grossProfit,
				})
			}
		}
	}
	return trades
}
