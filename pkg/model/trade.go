package model

import "github.com/shopspring/decimal"

// Trade is one fill produced by a single match step. The taker is the
// incoming order, the maker the resting one; the trade executes at the
// maker's (resting) price.
type Trade struct {
	Instrument   string          `json:"instrument"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	MakerOrderID string          `json:"maker_order_id"`
	TakerOrderID string          `json:"taker_order_id"`
	TakerSide    Side            `json:"taker_side"`
	Timestamp    int64           `json:"timestamp"` // unix ms
}
