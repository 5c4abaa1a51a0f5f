package engine

import (
	"testing"

	"eve-courier/internal/esi"
)

func testOrder(id int64, typeID int32, loc int64, price float64, qty int64, buy bool) esi.Order {
	return esi.Order{
		OrderID:      id,
		TypeID:       typeID,
		LocationID:   loc,
		Price:        price,
		IsBuyOrder:   buy,
		VolumeRemain: qty,
		RegionID:     10000002,
		ItemName:     "Tritanium",
		ItemVolume:   0.01,
	}
}

func testMatchParams() MatchParams {
	p := DefaultMatchParams()
	p.ProfitThreshold = 10
	return p
}

func TestMatchPairsProfitableOrders(t *testing.T) {
	orders := []esi.Order{
		testOrder(1, 34, 60000101, 17.0, 20, false),
		testOrder(2, 34, 60000102, 20.0, 20, true),
	}

	trades := Match(orders, 600, testMatchParams())
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	if tr.FromStation != 60000101 || tr.ToStation != 60000102 {
		t.Errorf("wrong endpoints: %d -> %d", tr.FromStation, tr.ToStation)
	}
	if tr.Quantity != 20 {
		t.Errorf("expected quantity 20, got %d", tr.Quantity)
	}
	// effective buy price = 20 * 0.92 = 18.4, unit profit 1.4
	wantGross := 20 * (18.4 - 17.0)
	if diff := tr.GrossProfit - wantGross; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected gross profit %.2f, got %.2f", wantGross, tr.GrossProfit)
	}
	if tr.Cargo != 20*0.01 {
		t.Errorf("expected cargo %.2f, got %.2f", 20*0.01, tr.Cargo)
	}
}

func TestMatchRejectsWhenTaxEatsMargin(t *testing.T) {
	// effective buy price 18.0 * 0.92 = 16.56 < 17.0 sell price
	orders := []esi.Order{
		testOrder(1, 34, 60000101, 17.0, 100, false),
		testOrder(2, 34, 60000102, 18.0, 100, true),
	}
	if trades := Match(orders, 600, testMatchParams()); len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
}

func TestMatchRejectsBelowProfitThreshold(t *testing.T) {
	orders := []esi.Order{
		testOrder(1, 34, 60000101, 17.0, 20, false),
		testOrder(2, 34, 60000102, 20.0, 20, true),
	}
	p := testMatchParams()
	p.ProfitThreshold = 1_000_000
	if trades := Match(orders, 600, p); len(trades) != 0 {
		t.Fatalf("expected no trades below threshold, got %d", len(trades))
	}
}

func TestMatchCargoFilter(t *testing.T) {
	big := testOrder(1, 40, 60000101, 100, 10, false)
	big.ItemVolume = 50 // only 2 fit in a 100 m³ hold
	bigBuy := testOrder(2, 40, 60000102, 200, 10, true)
	bigBuy.ItemVolume = 50

	zero := testOrder(3, 41, 60000101, 100, 10, false)
	zero.ItemVolume = 0
	zeroBuy := testOrder(4, 41, 60000102, 200, 10, true)
	zeroBuy.ItemVolume = 0

	trades := Match([]esi.Order{big, bigBuy, zero, zeroBuy}, 100, testMatchParams())
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].TypeID != 40 {
		t.Errorf("zero-volume item should have been dropped, matched type %d", trades[0].TypeID)
	}
	if trades[0].Quantity != 2 {
		t.Errorf("expected cargo-capped quantity 2, got %d", trades[0].Quantity)
	}
}

func TestMatchCapitalFilter(t *testing.T) {
	sell := testOrder(1, 34, 60000101, 30_000_000, 10, false)
	buy := testOrder(2, 34, 60000102, 50_000_000, 10, true)
	free := testOrder(3, 35, 60000101, 0, 10, false)
	freeBuy := testOrder(4, 35, 60000102, 10, 10, true)

	p := testMatchParams()
	p.MaxCapital = 100_000_000 // 3 units at 30M each
	trades := Match([]esi.Order{sell, buy, free, freeBuy}, 600, p)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Quantity != 3 {
		t.Errorf("expected capital-capped quantity 3, got %d", trades[0].Quantity)
	}
}

func TestMatchDoesNotMutateOrders(t *testing.T) {
	orders := []esi.Order{
		testOrder(1, 34, 60000101, 1000, 1_000_000, false),
		testOrder(2, 34, 60000102, 2000, 1_000_000, true),
	}
	Match(orders, 10, testMatchParams())
	for _, o := range orders {
		if o.VolumeRemain != 1_000_000 {
			t.Fatalf("order %d mutated: volume remain %d", o.OrderID, o.VolumeRemain)
		}
	}
}

func TestSnipeReturnsBestInRegion(t *testing.T) {
	inRegion := testOrder(1, 34, 60000101, 100, 1_000_000, false)
	inRegionBuy := testOrder(2, 34, 60000102, 200, 1_000_000, true)
	other := testOrder(3, 35, 60000104, 100, 1_000_000, false)
	other.RegionID = 10000043
	otherBuy := testOrder(4, 35, 60000102, 500, 1_000_000, true)

	p := testMatchParams()
	p.SnipeThreshold = 1_000_000
	best := Snipe([]esi.Order{inRegion, inRegionBuy, other, otherBuy}, 600_000, 10000002, p)
	if best == nil {
		t.Fatal("expected a snipe hit")
	}
	if best.FromOrderID != 1 {
		t.Errorf("expected trade from order 1, got %d", best.FromOrderID)
	}
}

func TestSnipeBelowThresholdReturnsNil(t *testing.T) {
	orders := []esi.Order{
		testOrder(1, 34, 60000101, 17.0, 20, false),
		testOrder(2, 34, 60000102, 20.0, 20, true),
	}
	p := testMatchParams()
	p.SnipeThreshold = 20_000_000
	if best := Snipe(orders, 600, 10000002, p); best != nil {
		t.Fatalf("expected nil, got trade with gross %.2f", best.GrossProfit)
	}
}
