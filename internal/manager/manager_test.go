package manager

import (
	"strings"
	"testing"

	"eve-courier/internal/config"
	"eve-courier/internal/engine"
	"eve-courier/internal/esi"
	"eve-courier/internal/graph"
	"eve-courier/internal/sde"
)

const (
	regionForge = int32(10000002)

	sysAlpha = int32(100)
	sysBeta  = int32(101)

	stationAlpha = int64(60000101)
	stationBeta  = int64(60000102)

	gateAlpha = int64(50000101)
	gateBeta  = int64(50000102)
)

const au = 149597870700.0

func testUniverse() *sde.Data {
	data := &sde.Data{
		Locations: map[int64]*sde.Location{},
		Systems: map[int32]*sde.SolarSystem{
			sysAlpha: {ID: sysAlpha, Name: "Alpha", RegionID: regionForge},
			sysBeta:  {ID: sysBeta, Name: "Beta", RegionID: regionForge},
		},
		Regions: map[int32]string{regionForge: "The Forge"},
		Types:   map[int32]*sde.ItemType{},
		Gates:   [][2]int64{{gateAlpha, gateBeta}},
	}
	add := func(id int64, name string, station bool, system int32, pos [3]float64) {
		data.Locations[id] = &sde.Location{
			ID: id, Name: name, IsStation: station, Security: 0.9,
			Position: pos, SystemID: system, RegionID: regionForge,
		}
	}
	add(stationAlpha, "Alpha I", true, sysAlpha, [3]float64{2 * au, 0, 0})
	add(gateAlpha, "Gate to Beta", false, sysAlpha, [3]float64{0, 0, 0})
	add(stationBeta, "Beta I", true, sysBeta, [3]float64{3 * au, 0, 0})
	add(gateBeta, "Gate to Alpha", false, sysBeta, [3]float64{0, 0, 0})
	return data
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Ship.Location = stationAlpha
	cfg.Match.ProfitThreshold = 10
	return cfg
}

type fakeMarket struct {
	orders    []esi.Order
	refreshed []int32
	err       error
}

func (f *fakeMarket) Orders() []esi.Order            { return f.orders }
func (f *fakeMarket) UpdateOrders() ([]int32, error) { return f.refreshed, f.err }

type fakeNav struct {
	loc       int64
	waypoints [][]int64
	opened    []int32
}

func (f *fakeNav) CharacterLocation() (int64, error) { return f.loc, nil }
func (f *fakeNav) SetWaypoints(dest []int64) error {
	f.waypoints = append(f.waypoints, dest)
	return nil
}
func (f *fakeNav) OpenMarketWindow(typeID int32) error {
	f.opened = append(f.opened, typeID)
	return nil
}

type fakeStore struct {
	inserted int
}

func (f *fakeStore) InsertRoute([]graph.RouteStep, *engine.RouteInfo) error {
	f.inserted++
	return nil
}

func marketOrder(id int64, typeID int32, loc int64, price float64, qty int64, buy bool) esi.Order {
	return esi.Order{
		OrderID: id, TypeID: typeID, LocationID: loc, Price: price,
		IsBuyOrder: buy, VolumeRemain: qty,
		RegionID: regionForge, ItemName: "Tritanium", ItemVolume: 0.01,
	}
}

func newTestManager(market *fakeMarket, nav *fakeNav, store *fakeStore) *Manager {
	cfg := testConfig()
	g := graph.New(testUniverse(), &cfg.Ship, nil)
	return New(cfg, g, market, nav, store)
}

func TestCreateRoutePublishesAndPersists(t *testing.T) {
	market := &fakeMarket{orders: []esi.Order{
		marketOrder(1, 34, stationAlpha, 5_000, 1000, false),
		marketOrder(2, 34, stationBeta, 60_000, 1000, true),
	}}
	nav := &fakeNav{loc: stationAlpha}
	store := &fakeStore{}
	m := newTestManager(market, nav, store)

	if err := m.CreateRoute(); err != nil {
		t.Fatalf("CreateRoute failed: %v", err)
	}

	steps, info := m.Route()
	if info == nil || len(steps) == 0 {
		t.Fatal("expected an active route")
	}
	if steps[0].LocationID != stationAlpha {
		t.Errorf("route should start at the ship's station, got %d", steps[0].LocationID)
	}
	if store.inserted != 1 {
		t.Errorf("expected 1 persisted route, got %d", store.inserted)
	}
	if len(nav.waypoints) != 1 {
		t.Fatalf("expected one waypoint push, got %d", len(nav.waypoints))
	}
	if got, want := len(nav.waypoints[0]), len(steps)-1; got != want {
		t.Errorf("expected %d waypoints (all stops after the start), got %d", want, got)
	}
}

func TestCreateRouteWithoutOrders(t *testing.T) {
	m := newTestManager(&fakeMarket{}, &fakeNav{loc: stationAlpha}, &fakeStore{})
	if err := m.CreateRoute(); err == nil {
		t.Fatal("expected an error with no market data")
	}
}

func TestCreateRouteNoViableTrades(t *testing.T) {
	// Spread too thin: tax wipes out the margin.
	market := &fakeMarket{orders: []esi.Order{
		marketOrder(1, 34, stationAlpha, 100, 1000, false),
		marketOrder(2, 34, stationBeta, 101, 1000, true),
	}}
	m := newTestManager(market, &fakeNav{loc: stationAlpha}, &fakeStore{})
	if err := m.CreateRoute(); err == nil {
		t.Fatal("expected an error when nothing is profitable")
	}
}

func TestTrackLocationAdvancesRoute(t *testing.T) {
	m := newTestManager(&fakeMarket{}, &fakeNav{loc: stationAlpha}, &fakeStore{})
	m.route = []graph.RouteStep{
		{LocationID: stationAlpha, SystemID: sysAlpha, Type: "station"},
		{LocationID: int64(sysBeta), SystemID: sysBeta, Type: "system"},
		{LocationID: stationBeta, SystemID: sysBeta, Type: "station"},
	}
	m.routeInfo = &engine.RouteInfo{}

	// Arriving in the Beta system trims everything up to that step.
	m.trackLocation(int64(sysBeta))
	if len(m.route) != 1 || m.route[0].LocationID != stationBeta {
		t.Fatalf("expected only the final station left, got %+v", m.route)
	}
	if m.ShipLocation() != int64(sysBeta) {
		t.Errorf("ship location not tracked, got %d", m.ShipLocation())
	}

	// Docking at the final station completes the route.
	m.trackLocation(stationBeta)
	steps, info := m.Route()
	if steps != nil || info != nil {
		t.Fatal("expected route cleared on arrival")
	}
	logs := m.Logs()
	if len(logs) == 0 || !strings.Contains(logs[len(logs)-1].Message, "Route complete") {
		t.Errorf("expected a completion log entry, got %+v", logs)
	}
}

func TestTrackLocationIgnoresOffRouteMoves(t *testing.T) {
	m := newTestManager(&fakeMarket{}, &fakeNav{loc: stationAlpha}, &fakeStore{})
	m.route = []graph.RouteStep{
		{LocationID: stationBeta, SystemID: sysBeta, Type: "station"},
	}
	m.trackLocation(99999999)
	if len(m.route) != 1 {
		t.Fatalf("off-route move must not trim the route, got %+v", m.route)
	}
}

func TestRefreshOrdersRaisesSnipeAlert(t *testing.T) {
	market := &fakeMarket{
		orders: []esi.Order{
			marketOrder(1, 34, stationAlpha, 100, 10_000_000, false),
			marketOrder(2, 34, stationBeta, 500, 10_000_000, true),
		},
		refreshed: []int32{regionForge},
	}
	nav := &fakeNav{loc: stationAlpha}
	m := newTestManager(market, nav, &fakeStore{})

	m.refreshOrders()

	if len(nav.opened) != 1 || nav.opened[0] != 34 {
		t.Fatalf("expected market window opened for type 34, got %v", nav.opened)
	}
	found := false
	for _, entry := range m.Logs() {
		if strings.Contains(entry.Message, "Snipe") {
			found = true
		}
	}
	if !found {
		t.Error("expected a snipe log entry")
	}
}

func TestLogRingBounded(t *testing.T) {
	m := newTestManager(&fakeMarket{}, &fakeNav{}, &fakeStore{})
	for i := 0; i < logRingSize+50; i++ {
		m.logf("entry %d", i)
	}
	logs := m.Logs()
	if len(logs) != logRingSize {
		t.Fatalf("expected %d entries, got %d", logRingSize, len(logs))
	}
	if !strings.Contains(logs[len(logs)-1].Message, "149") {
		t.Errorf("expected newest entry last, got %q", logs[len(logs)-1].Message)
	}
}
