package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

type Side string
type OrderKind string
type TimeInForce string
type Status string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"

	LIMIT  OrderKind = "LIMIT"
	MARKET OrderKind = "MARKET"

	GTC TimeInForce = "GTC" // rests until filled or cancelled
	FOK TimeInForce = "FOK" // full immediate execution or rejected
	IOC TimeInForce = "IOC" // immediate partial execution, remainder discarded

	StatusNew             Status = "NEW"
	StatusOpen            Status = "OPEN"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCanceled        Status = "CANCELED"
	StatusRejected        Status = "REJECTED"
	StatusExpired         Status = "EXPIRED"
)

// Order is one order intent plus its execution state. Identity fields
// (everything except Remaining and Status) are set at creation and never
// mutated by the engine.
type Order struct {
	ID          string          `json:"order_id"`
	Instrument  string          `json:"instrument"`
	Side        Side            `json:"side"`
	Kind        OrderKind       `json:"kind"`
	TimeInForce TimeInForce     `json:"time_in_force"`
	Price       decimal.Decimal `json:"price"` // limit price; ignored for MARKET
	Quantity    decimal.Decimal `json:"quantity"`
	Remaining   decimal.Decimal `json:"remaining_quantity"`
	Status      Status          `json:"status"`
	Timestamp   int64           `json:"timestamp,omitempty"` // unix ms, set by submitter
}

// NewOrder builds an order intent in status NEW with nothing executed yet.
// The submitter owns identifier uniqueness; the engine does not deduplicate.
func NewOrder(id, instrument string, side Side, kind OrderKind, tif TimeInForce, price, qty decimal.Decimal) *Order {
	return &Order{
		ID:          id,
		Instrument:  instrument,
		Side:        side,
		Kind:        kind,
		TimeInForce: tif,
		Price:       price,
		Quantity:    qty,
		Remaining:   qty,
		Status:      StatusNew,
	}
}

// FilledQuantity is the executed portion so far.
func (o *Order) FilledQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.Remaining)
}

func (o *Order) IsFilled() bool {
	return o.Remaining.IsZero()
}

// IsTerminal reports whether the order may never be matched or re-queued again.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// RefreshStatus derives Status from the quantity pair. It must run after
// every matching pass that touched the order. Terminal statuses set by
// cancellation, rejection or expiry are never overwritten here.
func (o *Order) RefreshStatus() {
	switch o.Status {
	case StatusCanceled, StatusRejected, StatusExpired:
		return
	}
	switch {
	case o.Remaining.IsZero():
		o.Status = StatusFilled
	case o.Remaining.LessThan(o.Quantity):
		o.Status = StatusPartiallyFilled
	default:
		o.Status = StatusOpen
	}
}

// Validate checks basic syntactic correctness of the order intent.
// It does NOT perform business checks like available liquidity.
func (o *Order) Validate() error {
	if o == nil {
		return errors.New("order is nil")
	}
	if o.ID == "" {
		return errors.New("order id is required")
	}
	if o.Instrument == "" {
		return errors.New("instrument is required")
	}
	if o.Side != BUY && o.Side != SELL {
		return errors.New("invalid side: must be BUY or SELL")
	}
	if o.Kind != LIMIT && o.Kind != MARKET {
		return errors.New("invalid kind: must be LIMIT or MARKET")
	}
	switch o.TimeInForce {
	case GTC, FOK, IOC:
	default:
		return errors.New("invalid time in force: must be GTC, FOK or IOC")
	}
	if !o.Quantity.IsPositive() {
		return errors.New("quantity must be > 0")
	}
	if o.Kind == LIMIT && !o.Price.IsPositive() {
		return errors.New("limit orders must have price > 0")
	}
	// MARKET orders carry no meaningful price; matching ignores it
	return nil
}
