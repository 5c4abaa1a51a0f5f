package engine

// Trade is one viable sell->buy order pairing: haul Quantity units of TypeID
// from FromStation (buying from the sell order) to ToStation (filling the buy
// order). Trades are value records holding copies of the relevant order
// fields; they never alias the live order snapshot.
type Trade struct {
	FromStation int64
	ToStation   int64
	FromOrderID int64
	ToOrderID   int64
	ItemName    string
	TypeID      int32
	ItemVolume  float64 // per-unit packaged volume, m³
	FromPrice   float64
	ToPrice     float64
	Quantity    int64
	Cargo       float64 // Quantity * ItemVolume
	GrossProfit float64

	// NetProfit is gross profit minus estimated transport cost, filled in by
	// the optimizer's feasibility pass. HasNetProfit distinguishes "not yet
	// computed / no resolvable path" from a genuine zero.
	NetProfit    float64
	HasNetProfit bool
}

// CapitalSpent is the ISK needed to execute the buy leg.
func (t *Trade) CapitalSpent() float64 {
	return t.FromPrice * float64(t.Quantity)
}

// UnitProfit is the per-unit gross profit (tax already applied).
func (t *Trade) UnitProfit() float64 {
	if t.Quantity == 0 {
		return 0
	}
	return t.GrossProfit / float64(t.Quantity)
}

// MatchParams holds the arbitrage matcher thresholds.
type MatchParams struct {
	TaxRate         float64 // sales tax applied to the buy-order price
	ProfitThreshold float64 // minimum gross profit for a trade to exist
	MaxCapital      float64 // capital exposure cap per order
	SnipeThreshold  float64 // minimum gross profit for a snipe alert
}

// DefaultMatchParams mirrors the tuned production thresholds.
func DefaultMatchParams() MatchParams {
	return MatchParams{
		TaxRate:         0.08,
		ProfitThreshold: 100_000,
		MaxCapital:      100_000_000,
		SnipeThreshold:  20_000_000,
	}
}

// OptimizeParams holds the route search knobs.
type OptimizeParams struct {
	// MaxCandidates caps how many top trades seed route skeletons,
	// bounding worst-case search cost.
	MaxCandidates int
	// MaxCapital is the ISK budget for goods bought along one route.
	MaxCapital float64
}

// DefaultOptimizeParams mirrors the tuned production limits.
func DefaultOptimizeParams() OptimizeParams {
	return OptimizeParams{
		MaxCandidates: 20_000,
		MaxCapital:    100_000_000,
	}
}

// RouteInfo summarizes the economics of a selected route.
type RouteInfo struct {
	ProfitRate    float64 `json:"profit_rate"` // ISK per second
	Risk          float64 `json:"risk"`
	Capital       float64 `json:"capital"`
	TransportTime float64 `json:"transport_time"` // seconds
	GrossProfit   float64 `json:"gross_profit"`
	NetProfit     float64 `json:"net_profit"`
}
