// Package market maintains the in-memory order book snapshot: one batch of
// orders per region, refreshed only once the source-declared expiry passes.
package market

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"eve-courier/internal/esi"
	"eve-courier/internal/logger"
	"eve-courier/internal/sde"
)

// Fetcher retrieves one region's order batch plus its expiry timestamp.
type Fetcher interface {
	FetchRegionOrders(regionID int32) ([]esi.Order, time.Time, error)
}

// Market holds the current order snapshot. Readers see either the previous
// snapshot or the fully updated one; never a partially merged order list.
type Market struct {
	fetcher Fetcher
	catalog map[int32]*sde.ItemType
	regions []int32

	mu       sync.RWMutex
	orders   []esi.Order
	byRegion map[int32][]esi.Order
	expiries map[int32]time.Time
}

// New creates a Market covering the given regions.
func New(fetcher Fetcher, catalog map[int32]*sde.ItemType, regions []int32) *Market {
	return &Market{
		fetcher:  fetcher,
		catalog:  catalog,
		regions:  regions,
		byRegion: make(map[int32][]esi.Order),
		expiries: make(map[int32]time.Time),
	}
}

// Orders returns the current snapshot. The returned slice is never mutated
// after publication, so callers may hold it across a refresh.
func (m *Market) Orders() []esi.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders
}

// Expired reports whether a region's batch is missing or past its expiry.
func (m *Market) Expired(regionID int32) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expiry, ok := m.expiries[regionID]
	return !ok || !time.Now().Before(expiry)
}

// UpdateOrders refreshes every expired region, fetching regions in parallel,
// and swaps in the merged snapshot. A failed region keeps its previous batch
// (stale data beats no data). Returns the list of refreshed region IDs; the
// error is non-nil only when every attempted refresh failed.
func (m *Market) UpdateOrders() ([]int32, error) {
	var expired []int32
	for _, regionID := range m.regions {
		if m.Expired(regionID) {
			expired = append(expired, regionID)
		}
	}
	if len(expired) == 0 {
		return nil, nil
	}

	type slot struct {
		orders  []esi.Order
		expires time.Time
		err     error
	}
	slots := make([]slot, len(expired))

	var g errgroup.Group
	for i, regionID := range expired {
		i, regionID := i, regionID
		g.Go(func() error {
			orders, expires, err := m.fetcher.FetchRegionOrders(regionID)
			if err != nil {
				slots[i] = slot{err: fmt.Errorf("region %d: %w", regionID, err)}
				return nil
			}
			m.enrich(orders)
			slots[i] = slot{orders: orders, expires: expires}
			return nil
		})
	}
	g.Wait()

	var refreshed []int32
	var errs []error
	m.mu.Lock()
	for i, regionID := range expired {
		s := slots[i]
		if s.err != nil {
			logger.Warn("Market", fmt.Sprintf("Refresh failed, keeping stale orders: %v", s.err))
			errs = append(errs, s.err)
			continue
		}
		m.byRegion[regionID] = s.orders
		m.expiries[regionID] = s.expires
		refreshed = append(refreshed, regionID)
	}
	// Rebuild the merged snapshot in region order and publish it in one swap.
	merged := make([]esi.Order, 0, len(m.orders))
	for _, regionID := range m.regions {
		merged = append(merged, m.byRegion[regionID]...)
	}
	m.orders = merged
	m.mu.Unlock()

	if len(refreshed) > 0 {
		logger.Info("Market", fmt.Sprintf("Refreshed %d region(s), snapshot now %d orders", len(refreshed), len(merged)))
	}
	if len(refreshed) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return refreshed, nil
}

// enrich fills catalog fields on freshly fetched orders. Unknown types keep
// a placeholder name and the 1 m³ default volume so they remain matchable.
func (m *Market) enrich(orders []esi.Order) {
	for i := range orders {
		if item, ok := m.catalog[orders[i].TypeID]; ok {
			orders[i].ItemName = item.Name
			orders[i].ItemVolume = item.Volume
		} else {
			orders[i].ItemName = fmt.Sprintf("Not found: %d", orders[i].TypeID)
			orders[i].ItemVolume = 1.0
		}
	}
}
