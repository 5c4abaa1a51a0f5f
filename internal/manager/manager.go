// Package manager ties the market snapshot, the navigation graph and the
// trade engine together: it tracks the pilot, keeps market data fresh in the
// background, surfaces snipe alerts, and owns the currently active route.
package manager

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"eve-courier/internal/config"
	"eve-courier/internal/engine"
	"eve-courier/internal/esi"
	"eve-courier/internal/graph"
	"eve-courier/internal/logger"
)

const logRingSize = 100

// OrderSource supplies the current market snapshot and refreshes it.
type OrderSource interface {
	Orders() []esi.Order
	UpdateOrders() ([]int32, error)
}

// Navigator is the slice of the ESI client the manager drives.
type Navigator interface {
	CharacterLocation() (int64, error)
	SetWaypoints(destinations []int64) error
	OpenMarketWindow(typeID int32) error
}

// RouteStore persists finished route plans.
type RouteStore interface {
	InsertRoute(steps []graph.RouteStep, info *engine.RouteInfo) error
}

// LogEntry is one line of the in-memory activity log.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Manager owns the active route and the pilot's tracked position. All
// exported methods are safe for concurrent use.
type Manager struct {
	cfg    *config.Config
	graph  *graph.Graph
	market OrderSource
	nav    Navigator
	store  RouteStore

	mu        sync.Mutex
	ship      config.Ship // live copy; Location follows the pilot
	route     []graph.RouteStep
	routeInfo *engine.RouteInfo
	logs      []LogEntry

	refreshing atomic.Bool
}

func New(cfg *config.Config, g *graph.Graph, market OrderSource, nav Navigator, store RouteStore) *Manager {
	return &Manager{
		cfg:    cfg,
		graph:  g,
		market: market,
		nav:    nav,
		store:  store,
		ship:   cfg.Ship,
	}
}

// Route returns the active route and its economics, or (nil, nil) when no
// route is planned. Callers must not mutate the returned steps.
func (m *Manager) Route() ([]graph.RouteStep, *engine.RouteInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.route, m.routeInfo
}

// Logs returns a copy of the recent activity log, oldest first.
func (m *Manager) Logs() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.logs))
	copy(out, m.logs)
	return out
}

// ShipLocation returns the last tracked pilot location.
func (m *Manager) ShipLocation() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ship.Location
}

// CreateRoute plans a fresh route from the current market snapshot and the
// pilot's tracked location, publishes it, persists it, and pushes the stops
// as in-game waypoints.
func (m *Manager) CreateRoute() error {
	m.mu.Lock()
	ship := m.ship
	maxCapital := m.cfg.Optimizer.MaxCapital
	m.mu.Unlock()

	orders := m.market.Orders()
	if len(orders) == 0 {
		return errors.New("no market orders loaded yet")
	}

	matchParams := engine.MatchParams{
		TaxRate:         m.cfg.Match.TaxRate,
		ProfitThreshold: m.cfg.Match.ProfitThreshold,
		MaxCapital:      m.cfg.Match.MaxCapital,
		SnipeThreshold:  m.cfg.Match.SnipeThreshold,
	}
	trades := engine.Match(orders, ship.CargoCapacity, matchParams)
	trades = engine.FilterTrades(trades, m.graph, ship.Location)
	if len(trades) == 0 {
		return errors.New("no viable trades from current location")
	}

	steps, info := engine.Optimize(trades, m.graph, &ship, engine.OptimizeParams{
		MaxCandidates: m.cfg.Optimizer.MaxCandidates,
		MaxCapital:    maxCapital,
	})
	if info == nil {
		return errors.New("no profitable route found")
	}

	m.mu.Lock()
	m.route = steps
	m.routeInfo = info
	m.mu.Unlock()

	m.logf("New route: %d stops, %.0f ISK/s, net %.0f ISK", len(steps), info.ProfitRate, info.NetProfit)

	if m.store != nil {
		if err := m.store.InsertRoute(steps, info); err != nil {
			logger.Warn("Manager", fmt.Sprintf("Failed to persist route: %v", err))
		}
	}
	if err := m.pushWaypoints(steps); err != nil {
		logger.Warn("Manager", fmt.Sprintf("Failed to set waypoints: %v", err))
	}
	return nil
}

// pushWaypoints sends every stop after the starting one to the in-game
// autopilot. System steps carry the solar system ID directly; station steps
// use the station ID.
func (m *Manager) pushWaypoints(steps []graph.RouteStep) error {
	if m.nav == nil || len(steps) < 2 {
		return nil
	}
	destinations := make([]int64, 0, len(steps)-1)
	for _, step := range steps[1:] {
		destinations = append(destinations, step.LocationID)
	}
	return m.nav.SetWaypoints(destinations)
}

// Update is one tick of the tracking loop: refresh the pilot's position,
// advance the active route past visited stops, and kick off a background
// market refresh if one isn't already running.
func (m *Manager) Update() {
	if m.nav != nil {
		if loc, err := m.nav.CharacterLocation(); err == nil {
			m.trackLocation(loc)
		} else {
			logger.Warn("Manager", fmt.Sprintf("Location lookup failed: %v", err))
		}
	}

	if m.refreshing.CompareAndSwap(false, true) {
		go func() {
			defer m.refreshing.Store(false)
			m.refreshOrders()
		}()
	}
}

// trackLocation records the pilot's position and trims completed route
// steps. Reaching the final stop clears the route.
func (m *Manager) trackLocation(loc int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if loc != m.ship.Location {
		m.ship.Location = loc
	}
	if len(m.route) == 0 {
		return
	}

	reached := -1
	for i, step := range m.route {
		if step.LocationID == loc || (step.Type == "system" && int64(step.SystemID) == loc) {
			reached = i
		}
	}
	if reached < 0 {
		return
	}

	m.route = m.route[reached+1:]
	if len(m.route) == 0 {
		m.route = nil
		m.routeInfo = nil
		m.appendLogLocked("Route complete")
	}
}

// refreshOrders refetches expired regions and raises a snipe alert for each
// one that came back with a standout trade.
func (m *Manager) refreshOrders() {
	refreshed, err := m.market.UpdateOrders()
	if err != nil {
		logger.Warn("Manager", fmt.Sprintf("Market refresh failed: %v", err))
		return
	}
	if len(refreshed) == 0 {
		return
	}

	m.mu.Lock()
	ship := m.ship
	m.mu.Unlock()

	matchParams := engine.MatchParams{
		TaxRate:         m.cfg.Match.TaxRate,
		ProfitThreshold: m.cfg.Match.ProfitThreshold,
		MaxCapital:      m.cfg.Match.MaxCapital,
		SnipeThreshold:  m.cfg.Match.SnipeThreshold,
	}
	orders := m.market.Orders()
	for _, regionID := range refreshed {
		hit := engine.Snipe(orders, ship.CargoCapacity, regionID, matchParams)
		if hit == nil {
			continue
		}
		m.logf("Snipe: %s x%d, %.0f ISK profit (%d -> %d)",
			hit.ItemName, hit.Quantity, hit.GrossProfit, hit.FromStation, hit.ToStation)
		if m.nav != nil {
			if err := m.nav.OpenMarketWindow(hit.TypeID); err != nil {
				logger.Warn("Manager", fmt.Sprintf("Failed to open market window: %v", err))
			}
		}
	}
}

func (m *Manager) logf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLogLocked(fmt.Sprintf(format, args...))
}

func (m *Manager) appendLogLocked(msg string) {
	m.logs = append(m.logs, LogEntry{Time: time.Now(), Message: msg})
	if len(m.logs) > logRingSize {
		m.logs = m.logs[len(m.logs)-logRingSize:]
	}
	logger.Info("Manager", msg)
}
