package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openexch/matchcore/pkg/model"
)

func newLimit(id, instrument string, side model.Side, tif model.TimeInForce, price, qty int64) *model.Order {
	return model.NewOrder(id, instrument, side, model.LIMIT, tif,
		decimal.NewFromInt(price), decimal.NewFromInt(qty))
}

func TestShardRoutingConsistency(t *testing.T) {
	e := NewEngine(4, 128)
	defer e.Stop()

	idx1 := e.routeIdx("SYM-A")
	idx2 := e.routeIdx("SYM-A")
	if idx1 != idx2 {
		t.Fatalf("same instrument mapped to different shards: %d vs %d", idx1, idx2)
	}
}

func TestSubmitGetCancel(t *testing.T) {
	e := NewEngine(4, 128)
	defer e.Stop()

	o := newLimit("o-1", "SYM-A", model.BUY, model.GTC, 500, 10)
	res, err := e.Submit(o)
	if err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if res.Order.Status != model.StatusOpen {
		t.Fatalf("expected OPEN for resting limit, got %s", res.Order.Status)
	}
	if len(res.Trades) != 0 {
		t.Fatalf("expected no trades against empty book, got %d", len(res.Trades))
	}

	got := e.GetOrder("SYM-A", "o-1")
	if got == nil || got.ID != "o-1" {
		t.Fatalf("expected to find resting order o-1, got %v", got)
	}

	c := e.Cancel("SYM-A", "o-1")
	if !c.OK {
		t.Fatal("expected cancel to succeed")
	}
	if c.Order.Status != model.StatusCanceled {
		t.Fatalf("expected CANCELED, got %s", c.Order.Status)
	}

	if e.GetOrder("SYM-A", "o-1") != nil {
		t.Fatal("cancelled order still resting")
	}
	if e.Cancel("SYM-A", "o-1").OK {
		t.Fatal("second cancel of same id must be a no-op")
	}
}

func TestSubmitRejectsInvalidOrder(t *testing.T) {
	e := NewEngine(2, 16)
	defer e.Stop()

	bad := newLimit("", "SYM-A", model.BUY, model.GTC, 100, 1)
	if _, err := e.Submit(bad); err == nil {
		t.Fatal("expected validation error for missing id")
	}
}

func TestMatchingAcrossEngine(t *testing.T) {
	e := NewEngine(4, 128)
	defer e.Stop()

	if _, err := e.Submit(newLimit("s-1", "SYM-B", model.SELL, model.GTC, 100, 10)); err != nil {
		t.Fatal(err)
	}
	res, err := e.Submit(newLimit("b-1", "SYM-B", model.BUY, model.GTC, 100, 10))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	if res.Order.Status != model.StatusFilled {
		t.Fatalf("expected FILLED, got %s", res.Order.Status)
	}
}

func TestFillOrKillThroughEngine(t *testing.T) {
	e := NewEngine(4, 128)
	defer e.Stop()

	if _, err := e.Submit(newLimit("b-1", "SYM-C", model.BUY, model.GTC, 9999, 100)); err != nil {
		t.Fatal(err)
	}
	res, err := e.Submit(newLimit("s-1", "SYM-C", model.SELL, model.FOK, 9999, 120))
	if err != nil {
		t.Fatal(err)
	}
	if res.Order.Status != model.StatusRejected {
		t.Fatalf("expected REJECTED, got %s", res.Order.Status)
	}

	// resting bid untouched
	if got := e.GetOrder("SYM-C", "b-1"); got == nil || !got.Remaining.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("resting bid disturbed by rejected FOK: %+v", got)
	}
}

func TestAvailableQuantityThroughEngine(t *testing.T) {
	e := NewEngine(4, 128)
	defer e.Stop()

	if _, err := e.Submit(newLimit("s-1", "SYM-D", model.SELL, model.GTC, 100, 10)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Submit(newLimit("s-2", "SYM-D", model.SELL, model.GTC, 110, 20)); err != nil {
		t.Fatal(err)
	}

	probe := newLimit("p-1", "SYM-D", model.BUY, model.GTC, 105, 1)
	avail := e.AvailableQuantity(probe)
	if !avail.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected available 10, got %s", avail)
	}
}

func TestBookSnapshot(t *testing.T) {
	e := NewEngine(4, 128)
	defer e.Stop()

	if _, err := e.Submit(newLimit("b-1", "SYM-E", model.BUY, model.GTC, 99, 10)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Submit(newLimit("s-1", "SYM-E", model.SELL, model.GTC, 101, 5)); err != nil {
		t.Fatal(err)
	}

	snap := e.Book("SYM-E", 10)
	if len(snap.Bids) != 1 || len(snap.Asks) != 1 {
		t.Fatalf("expected 1 level per side, got bids=%d asks=%d", len(snap.Bids), len(snap.Asks))
	}
	if !snap.Bids[0].Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected bid quantity 10, got %s", snap.Bids[0].Quantity)
	}
}

func TestInstrumentsAreIndependent(t *testing.T) {
	e := NewEngine(4, 256)
	defer e.Stop()

	// hammer several instruments concurrently; each instrument's book must
	// end with exactly its own resting orders
	const perInstrument = 50
	instruments := []string{"IND-0", "IND-1", "IND-2", "IND-3", "IND-4", "IND-5"}

	var wg sync.WaitGroup
	for _, sym := range instruments {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			for i := 0; i < perInstrument; i++ {
				id := fmt.Sprintf("%s-o-%d", sym, i)
				// distinct prices, nothing crosses
				o := newLimit(id, sym, model.BUY, model.GTC, int64(100+i), 1)
				if _, err := e.Submit(o); err != nil {
					t.Errorf("submit %s: %v", id, err)
					return
				}
			}
		}(sym)
	}
	wg.Wait()

	for _, sym := range instruments {
		snap := e.Book(sym, perInstrument+1)
		if len(snap.Bids) != perInstrument {
			t.Fatalf("%s: expected %d bid levels, got %d", sym, perInstrument, len(snap.Bids))
		}
		if len(snap.Asks) != 0 {
			t.Fatalf("%s: unexpected asks", sym)
		}
	}
}

func TestExpireThroughEngine(t *testing.T) {
	e := NewEngine(2, 16)
	defer e.Stop()

	if _, err := e.Submit(newLimit("x-1", "SYM-F", model.SELL, model.GTC, 100, 10)); err != nil {
		t.Fatal(err)
	}
	res := e.Expire("SYM-F", "x-1")
	if !res.OK || res.Order.Status != model.StatusExpired {
		t.Fatalf("expected expired order, got ok=%v status=%v", res.OK, res.Order)
	}
	if e.Expire("SYM-F", "x-1").OK {
		t.Fatal("second expire must be a no-op")
	}
}
