package book

import (
	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/openexch/matchcore/pkg/model"
)

// bookSide is one price-ordered half of a book. The same structure serves
// bids and asks; the bid flag decides which end of the tree is "best" and
// which way the price-eligibility comparison points.
type bookSide struct {
	tree *btree.BTree
	bid  bool
}

func newBookSide(bid bool) *bookSide {
	return &bookSide{
		tree: btree.New(32),
		bid:  bid,
	}
}

func (s *bookSide) getOrCreate(price decimal.Decimal) *PriceLevel {
	if item := s.tree.Get(&PriceLevel{price: price}); item != nil {
		return item.(*PriceLevel)
	}
	lvl := newPriceLevel(price)
	s.tree.ReplaceOrInsert(lvl)
	return lvl
}

func (s *bookSide) get(price decimal.Decimal) *PriceLevel {
	if item := s.tree.Get(&PriceLevel{price: price}); item != nil {
		return item.(*PriceLevel)
	}
	return nil
}

func (s *bookSide) removeLevel(price decimal.Decimal) {
	s.tree.Delete(&PriceLevel{price: price})
}

// best returns the level an incoming counter-order should be offered first:
// the highest bid, or the lowest ask.
func (s *bookSide) best() *PriceLevel {
	var item btree.Item
	if s.bid {
		item = s.tree.Max()
	} else {
		item = s.tree.Min()
	}
	if item == nil {
		return nil
	}
	return item.(*PriceLevel)
}

// eligible reports whether a level on this side may trade with the taker.
// Market takers cross at any price; a limit buy reaches asks at or below its
// limit, a limit sell reaches bids at or above it.
func (s *bookSide) eligible(levelPrice decimal.Decimal, taker *model.Order) bool {
	if taker.Kind == model.MARKET {
		return true
	}
	if s.bid {
		return levelPrice.GreaterThanOrEqual(taker.Price)
	}
	return levelPrice.LessThanOrEqual(taker.Price)
}

// bestFirst visits levels from best to worst until fn returns false.
func (s *bookSide) bestFirst(fn func(*PriceLevel) bool) {
	it := func(item btree.Item) bool { return fn(item.(*PriceLevel)) }
	if s.bid {
		s.tree.Descend(it)
	} else {
		s.tree.Ascend(it)
	}
}

func (s *bookSide) len() int { return s.tree.Len() }
