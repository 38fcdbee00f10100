package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openexch/matchcore/pkg/book"
	"github.com/openexch/matchcore/pkg/metrics"
	"github.com/openexch/matchcore/pkg/model"
)

// CmdType defines the kind of command sent to a shard.
type CmdType int

const (
	CmdSubmit CmdType = iota
	CmdCancel
	CmdExpire
	CmdGetOrder
	CmdAvailable
	CmdGetBook
)

// Cmd is a command routed to a shard.
type Cmd struct {
	Typ        CmdType
	Order      *model.Order // submit / available probe
	OrderID    string       // cancel / expire / get
	Instrument string       // routing key
	Depth      int          // book snapshot depth
	Reply      chan interface{}
}

// SubmitResult is returned by a submit command.
type SubmitResult struct {
	Order  *model.Order  // order after processing, final status and remaining
	Trades []model.Trade // fills produced by the matching walk
}

// CancelResult is returned by cancel and expire commands.
type CancelResult struct {
	Order *model.Order // removed order, nil if nothing was resting under the id
	OK    bool
}

// GetResult is returned by a resting-order lookup.
type GetResult struct {
	Order *model.Order
}

// AvailableResult carries a liquidity-probe answer.
type AvailableResult struct {
	Quantity decimal.Decimal
}

// BookSnapshot is an aggregated depth view of one instrument's book.
type BookSnapshot struct {
	Instrument string
	Bids       []book.LevelSummary
	Asks       []book.LevelSummary
}

// shard is the actor owning a subset of instruments. All book mutation for
// an instrument happens on this goroutine, which is what makes the books'
// single-writer contract hold.
type shard struct {
	in    chan *Cmd
	books map[string]*book.OrderBook
	quit  chan struct{}
}

func newShard(bufSize int) *shard {
	s := &shard{
		in:    make(chan *Cmd, bufSize),
		books: make(map[string]*book.OrderBook),
		quit:  make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *shard) loop() {
	for {
		select {
		case cmd := <-s.in:
			switch cmd.Typ {
			case CmdSubmit:
				s.handleSubmit(cmd)
			case CmdCancel:
				s.handleCancel(cmd)
			case CmdExpire:
				s.handleExpire(cmd)
			case CmdGetOrder:
				s.handleGet(cmd)
			case CmdAvailable:
				s.handleAvailable(cmd)
			case CmdGetBook:
				s.handleGetBook(cmd)
			}
		case <-s.quit:
			return
		}
	}
}

func (s *shard) stop() {
	close(s.quit)
}

// getOrCreateBook resolves the instrument's book, creating an empty one on
// first reference. An instrument with no book is equivalent to one with two
// empty sides.
func (s *shard) getOrCreateBook(instrument string) *book.OrderBook {
	ob, ok := s.books[instrument]
	if !ok {
		ob = book.NewOrderBook(instrument)
		s.books[instrument] = ob
	}
	return ob
}

func (s *shard) handleSubmit(cmd *Cmd) {
	o := cmd.Order
	ob := s.getOrCreateBook(o.Instrument)

	trades := ob.CreateOrder(o)

	metrics.OrdersSubmittedTotal.WithLabelValues(o.Instrument, string(o.Side), string(o.Kind)).Inc()
	if o.Status == model.StatusRejected {
		metrics.OrdersRejectedTotal.WithLabelValues(o.Instrument).Inc()
	}
	if len(trades) > 0 {
		metrics.TradesExecutedTotal.WithLabelValues(o.Instrument).Add(float64(len(trades)))
		traded := decimal.Zero
		for _, t := range trades {
			traded = traded.Add(t.Quantity)
		}
		metrics.TradedQuantityTotal.WithLabelValues(o.Instrument).Add(traded.InexactFloat64())
	}

	cmd.Reply <- SubmitResult{Order: o, Trades: trades}
}

func (s *shard) handleCancel(cmd *Cmd) {
	ob := s.getOrCreateBook(cmd.Instrument)
	o := ob.CancelOrder(cmd.OrderID)
	if o != nil {
		metrics.OrdersCanceledTotal.WithLabelValues(cmd.Instrument).Inc()
	}
	cmd.Reply <- CancelResult{Order: o, OK: o != nil}
}

func (s *shard) handleExpire(cmd *Cmd) {
	ob := s.getOrCreateBook(cmd.Instrument)
	o := ob.ExpireOrder(cmd.OrderID)
	cmd.Reply <- CancelResult{Order: o, OK: o != nil}
}

func (s *shard) handleGet(cmd *Cmd) {
	ob := s.getOrCreateBook(cmd.Instrument)
	cmd.Reply <- GetResult{Order: ob.GetOrder(cmd.OrderID)}
}

func (s *shard) handleAvailable(cmd *Cmd) {
	ob := s.getOrCreateBook(cmd.Order.Instrument)
	cmd.Reply <- AvailableResult{Quantity: ob.AvailableQuantity(cmd.Order)}
}

func (s *shard) handleGetBook(cmd *Cmd) {
	ob := s.getOrCreateBook(cmd.Instrument)
	bids, asks := ob.TopLevels(cmd.Depth)
	cmd.Reply <- BookSnapshot{
		Instrument: cmd.Instrument,
		Bids:       bids,
		Asks:       asks,
	}
}

func (s *shard) String() string {
	return fmt.Sprintf("shard{books=%d}", len(s.books))
}
