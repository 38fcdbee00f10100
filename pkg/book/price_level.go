package book

import (
	"container/list"
	"fmt"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/openexch/matchcore/pkg/model"
)

// PriceLevel is the FIFO queue of orders resting at one price, plus the
// cached sum of their remaining quantities. The queue and the total are
// only ever mutated together, through the methods below; that is the
// invariant the rest of the book relies on.
type PriceLevel struct {
	price  decimal.Decimal
	orders *list.List
	total  decimal.Decimal
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		price:  price,
		orders: list.New(),
		total:  decimal.Zero,
	}
}

func (pl *PriceLevel) Price() decimal.Decimal { return pl.price }

func (pl *PriceLevel) TotalQuantity() decimal.Decimal { return pl.total }

func (pl *PriceLevel) Len() int { return pl.orders.Len() }

func (pl *PriceLevel) IsEmpty() bool { return pl.orders.Len() == 0 }

// append inserts an order at the back of the queue and accounts for its
// remaining quantity in the same operation.
func (pl *PriceLevel) append(o *model.Order) *list.Element {
	el := pl.orders.PushBack(o)
	pl.total = pl.total.Add(o.Remaining)
	return el
}

// remove takes an order out of the queue and deducts its remaining quantity.
func (pl *PriceLevel) remove(el *list.Element) {
	if el == nil {
		return
	}
	o := el.Value.(*model.Order)
	pl.total = pl.total.Sub(o.Remaining)
	pl.orders.Remove(el)
	if pl.total.IsNegative() {
		panic(fmt.Sprintf("price level %s: total quantity went negative on remove of %s", pl.price, o.ID))
	}
}

// fill executes qty against a resting order, decrementing the order's
// remaining quantity and the level total atomically.
func (pl *PriceLevel) fill(o *model.Order, qty decimal.Decimal) {
	if qty.GreaterThan(o.Remaining) {
		panic(fmt.Sprintf("price level %s: fill %s exceeds remaining %s of order %s", pl.price, qty, o.Remaining, o.ID))
	}
	o.Remaining = o.Remaining.Sub(qty)
	pl.total = pl.total.Sub(qty)
	if pl.total.IsNegative() {
		panic(fmt.Sprintf("price level %s: total quantity went negative on fill of %s", pl.price, o.ID))
	}
}

func (pl *PriceLevel) front() *list.Element { return pl.orders.Front() }

// EachOrder visits resting orders in queue (arrival) order until fn
// returns false.
func (pl *PriceLevel) EachOrder(fn func(*model.Order) bool) {
	for el := pl.orders.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(*model.Order)) {
			return
		}
	}
}

// Less orders levels by price inside the side tree.
func (pl *PriceLevel) Less(than btree.Item) bool {
	return pl.price.LessThan(than.(*PriceLevel).price)
}
