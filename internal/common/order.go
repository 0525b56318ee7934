package common

import (
	"fmt"
)

// Order is one trader's intent to trade. Orders are values: the book keeps
// its own copy and the exchange stamps Sequence on that copy.
type Order struct {
	TraderID string // Who owns this order
	Side     Side   // Order side
	Price    int    // Limit price in ticks
	Quantity int    // Always 1 for the current strategies
	Time     int    // Tick at which the order was created
	Sequence uint64 // Assigned by the exchange on acceptance, 0 until then
}

func NewOrder(traderID string, side Side, price, quantity, time int) Order {
	return Order{
		TraderID: traderID,
		Side:     side,
		Price:    price,
		Quantity: quantity,
		Time:     time,
	}
}

func (order Order) String() string {
	return fmt.Sprintf(
		"[%s %s P=%d Q=%d T=%d S=%d]",
		order.TraderID,
		order.Side,
		order.Price,
		order.Quantity,
		order.Time,
		order.Sequence,
	)
}
