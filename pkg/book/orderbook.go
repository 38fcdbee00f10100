package book

import (
	"container/list"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openexch/matchcore/pkg/model"
)

// orderLocation remembers where a resting order sits so cancellation is a
// map lookup instead of a scan.
type orderLocation struct {
	level   *PriceLevel
	element *list.Element
}

// OrderBook holds the resting liquidity for one instrument: bids and asks
// keyed by price, plus an id index over everything currently resting.
//
// The book is not safe for concurrent use. All mutation for one instrument
// must be serialized by the caller; the engine does this with one actor
// goroutine per shard.
type OrderBook struct {
	instrument string

	bids *bookSide
	asks *bookSide

	locations map[string]*orderLocation // resting order id -> position
}

// NewOrderBook creates an empty book for one instrument.
func NewOrderBook(instrument string) *OrderBook {
	return &OrderBook{
		instrument: instrument,
		bids:       newBookSide(true),
		asks:       newBookSide(false),
		locations:  make(map[string]*orderLocation),
	}
}

func (ob *OrderBook) Instrument() string { return ob.instrument }

// sideFor returns the side an order of the given direction rests on.
func (ob *OrderBook) sideFor(side model.Side) *bookSide {
	if side == model.BUY {
		return ob.bids
	}
	return ob.asks
}

// opposite returns the side an order of the given direction matches against.
func (ob *OrderBook) opposite(side model.Side) *bookSide {
	if side == model.BUY {
		return ob.asks
	}
	return ob.bids
}

// CreateOrder runs the full pipeline for a new order intent: the
// fill-or-kill admission gate, the matching walk against the opposite side,
// and resting of any eligible remainder. The order is returned to the caller
// through its mutated state; the trades describe every fill the walk
// produced, in execution order.
func (ob *OrderBook) CreateOrder(o *model.Order) []model.Trade {
	// FOK admits only if the full quantity is immediately executable.
	// This gates matching entirely: a rejected order touches nothing.
	if o.TimeInForce == model.FOK {
		if ob.AvailableQuantity(o).LessThan(o.Remaining) {
			o.Status = model.StatusRejected
			return nil
		}
	}

	trades := ob.match(o)

	if ob.shouldRest(o) {
		ob.rest(o)
	}
	return trades
}

// match walks the opposite side best-first, draining FIFO queues at each
// price-eligible level until the taker is exhausted or the book stops
// crossing. Levels emptied by the walk are removed from the side.
func (ob *OrderBook) match(taker *model.Order) []model.Trade {
	opp := ob.opposite(taker.Side)
	var trades []model.Trade

	for !taker.Remaining.IsZero() {
		lvl := opp.best()
		if lvl == nil || !opp.eligible(lvl.price, taker) {
			break // levels only get worse from here
		}

		for el := lvl.front(); el != nil && !taker.Remaining.IsZero(); el = lvl.front() {
			maker := el.Value.(*model.Order)

			qty := decimal.Min(taker.Remaining, maker.Remaining)
			lvl.fill(maker, qty)
			taker.Remaining = taker.Remaining.Sub(qty)

			trades = append(trades, model.Trade{
				Instrument:   ob.instrument,
				Price:        lvl.price,
				Quantity:     qty,
				MakerOrderID: maker.ID,
				TakerOrderID: taker.ID,
				TakerSide:    taker.Side,
				Timestamp:    time.Now().UnixMilli(),
			})

			maker.RefreshStatus()
			if maker.IsFilled() {
				lvl.remove(el)
				delete(ob.locations, maker.ID)
			}
		}

		if lvl.IsEmpty() {
			opp.removeLevel(lvl.price)
		}
	}

	taker.RefreshStatus()
	return trades
}

// shouldRest decides whether the post-match remainder goes into the book.
// Market orders never rest; IOC remainders are discarded; filled and
// rejected orders have nothing to rest.
func (ob *OrderBook) shouldRest(o *model.Order) bool {
	if o.Kind == model.MARKET {
		return false
	}
	if o.IsTerminal() {
		return false
	}
	return o.TimeInForce != model.IOC
}

// rest queues the order at the back of its own price level, creating the
// level if needed, and indexes it for cancellation.
func (ob *OrderBook) rest(o *model.Order) {
	lvl := ob.sideFor(o.Side).getOrCreate(o.Price)
	el := lvl.append(o)
	ob.locations[o.ID] = &orderLocation{level: lvl, element: el}
}

// CancelOrder removes a resting order by id and marks it CANCELED.
// Cancelling an id that is not resting (unknown, already filled, already
// cancelled) is a silent no-op and returns nil.
func (ob *OrderBook) CancelOrder(orderID string) *model.Order {
	return ob.removeResting(orderID, model.StatusCanceled)
}

// ExpireOrder removes a resting order by id and marks it EXPIRED. The
// triggering clock belongs to an external sweep; the book only performs the
// removal. Same idempotent no-op semantics as CancelOrder.
func (ob *OrderBook) ExpireOrder(orderID string) *model.Order {
	return ob.removeResting(orderID, model.StatusExpired)
}

func (ob *OrderBook) removeResting(orderID string, terminal model.Status) *model.Order {
	loc, ok := ob.locations[orderID]
	if !ok {
		return nil
	}

	o := loc.element.Value.(*model.Order)
	loc.level.remove(loc.element)
	if loc.level.IsEmpty() {
		ob.sideFor(o.Side).removeLevel(loc.level.price)
	}
	delete(ob.locations, orderID)

	o.Status = terminal
	return o
}

// GetOrder returns the resting order with the given id, or nil if nothing
// with that id is currently resting.
func (ob *OrderBook) GetOrder(orderID string) *model.Order {
	loc, ok := ob.locations[orderID]
	if !ok {
		return nil
	}
	return loc.element.Value.(*model.Order)
}

// AvailableQuantity sums opposite-side resting quantity at prices eligible
// for the probe order, without mutating anything. This is the FOK admission
// input and doubles as a pre-trade liquidity estimate.
func (ob *OrderBook) AvailableQuantity(probe *model.Order) decimal.Decimal {
	opp := ob.opposite(probe.Side)
	total := decimal.Zero
	opp.bestFirst(func(lvl *PriceLevel) bool {
		if !opp.eligible(lvl.price, probe) {
			return false
		}
		total = total.Add(lvl.total)
		return true
	})
	return total
}

// LevelSummary is one aggregated price level of a depth snapshot.
type LevelSummary struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Orders   int             `json:"orders"`
}

// TopLevels returns up to depth aggregated levels per side, best first.
func (ob *OrderBook) TopLevels(depth int) (bids, asks []LevelSummary) {
	if depth <= 0 {
		depth = 10
	}
	collect := func(s *bookSide) []LevelSummary {
		out := make([]LevelSummary, 0, depth)
		s.bestFirst(func(lvl *PriceLevel) bool {
			out = append(out, LevelSummary{
				Price:    lvl.price,
				Quantity: lvl.total,
				Orders:   lvl.Len(),
			})
			return len(out) < depth
		})
		return out
	}
	return collect(ob.bids), collect(ob.asks)
}

// EachLevel visits one side's levels best-first until fn returns false.
func (ob *OrderBook) EachLevel(side model.Side, fn func(*PriceLevel) bool) {
	ob.sideFor(side).bestFirst(fn)
}

// Levels returns the number of indexed price levels per side.
func (ob *OrderBook) Levels() (bids, asks int) {
	return ob.bids.len(), ob.asks.len()
}

// Size returns the number of orders currently resting in the book.
func (ob *OrderBook) Size() int { return len(ob.locations) }
