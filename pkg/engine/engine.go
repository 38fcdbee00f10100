package engine

import (
	"fmt"
	"hash/fnv"
	"runtime"

	"github.com/shopspring/decimal"

	"github.com/openexch/matchcore/pkg/logging"
	"github.com/openexch/matchcore/pkg/model"
)

// Engine routes orders to per-instrument books spread over N shards. Each
// instrument always lands on the same shard, so every mutation of one book
// runs on a single goroutine; different instruments proceed in parallel.
type Engine struct {
	shards []*shard
	n      int
}

// NewEngine creates an engine with numShards worker shards and channel
// buffer size buf. numShards <= 0 defaults to the CPU count.
func NewEngine(numShards, buf int) *Engine {
	if numShards <= 0 {
		numShards = runtime.NumCPU()
	}
	e := &Engine{
		shards: make([]*shard, numShards),
		n:      numShards,
	}
	for i := 0; i < numShards; i++ {
		e.shards[i] = newShard(buf)
	}
	logging.WithComponent("engine").WithField("shards", numShards).Info("matching engine started")
	return e
}

// Stop shuts down all shard loops. In-flight commands already queued are
// not drained.
func (e *Engine) Stop() {
	for _, s := range e.shards {
		s.stop()
	}
	logging.WithComponent("engine").Info("matching engine stopped")
}

// routeIdx returns the shard index for an instrument.
func (e *Engine) routeIdx(instrument string) int {
	h := fnv.New32a()
	h.Write([]byte(instrument))
	return int(h.Sum32()) % e.n
}

func (e *Engine) roundTrip(cmd *Cmd) interface{} {
	reply := make(chan interface{}, 1)
	cmd.Reply = reply
	e.shards[e.routeIdx(cmd.Instrument)].in <- cmd
	return <-reply
}

// Submit validates an order intent and runs it through the matching
// pipeline for its instrument. The returned order is the same object with
// final status and remaining quantity; trades list every fill produced.
func (e *Engine) Submit(o *model.Order) (SubmitResult, error) {
	if err := o.Validate(); err != nil {
		return SubmitResult{}, fmt.Errorf("invalid order: %w", err)
	}
	res := e.roundTrip(&Cmd{Typ: CmdSubmit, Order: o, Instrument: o.Instrument})
	return res.(SubmitResult), nil
}

// Cancel removes a resting order. Cancelling an id that is not resting is a
// no-op with OK=false, not an error.
func (e *Engine) Cancel(instrument, orderID string) CancelResult {
	res := e.roundTrip(&Cmd{Typ: CmdCancel, OrderID: orderID, Instrument: instrument})
	return res.(CancelResult)
}

// Expire removes a resting order on behalf of an external expiry sweep,
// marking it EXPIRED. Same no-op semantics as Cancel.
func (e *Engine) Expire(instrument, orderID string) CancelResult {
	res := e.roundTrip(&Cmd{Typ: CmdExpire, OrderID: orderID, Instrument: instrument})
	return res.(CancelResult)
}

// GetOrder returns the resting order with the given id, or nil if nothing
// is resting under it.
func (e *Engine) GetOrder(instrument, orderID string) *model.Order {
	res := e.roundTrip(&Cmd{Typ: CmdGetOrder, OrderID: orderID, Instrument: instrument})
	return res.(GetResult).Order
}

// AvailableQuantity reports the opposite-side liquidity the probe order
// could reach at its limit, without executing anything.
func (e *Engine) AvailableQuantity(probe *model.Order) decimal.Decimal {
	res := e.roundTrip(&Cmd{Typ: CmdAvailable, Order: probe, Instrument: probe.Instrument})
	return res.(AvailableResult).Quantity
}

// Book returns an aggregated depth snapshot for an instrument.
func (e *Engine) Book(instrument string, depth int) BookSnapshot {
	res := e.roundTrip(&Cmd{Typ: CmdGetBook, Instrument: instrument, Depth: depth})
	return res.(BookSnapshot)
}
