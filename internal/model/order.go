package model

import "time"

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Order is a request handed to an execution sink.
type Order struct {
	Symbol string
	Side   Side
	Size   float64
	Price  float64
	Venue  string
}

// Fill records an accepted order together with the sink's order identifier.
type Fill struct {
	OrderID string
	Order   Order
	Time    time.Time
}
