package common

import (
	"encoding/json"
	"fmt"
)

type EventType string

const (
	TradeEvent  EventType = "Trade"
	CancelEvent EventType = "Cancel"
)

// Event is a tape record. The set of implementations is closed: Trade and Cancel.
type Event interface {
	Type() EventType
	EventTime() int
}

// Trade accounts for the two parties who matched. Party1 is the resting
// counterparty, Party2 the aggressor whose order caused the cross.
type Trade struct {
	Time     int
	Price    int
	Party1   string
	Party2   string
	Quantity int
}

func (t Trade) Type() EventType { return TradeEvent }
func (t Trade) EventTime() int  { return t.Time }

// Involves reports whether traderID is one of the two parties.
func (t Trade) Involves(traderID string) bool {
	return t.Party1 == traderID || t.Party2 == traderID
}

func (t Trade) String() string {
	return fmt.Sprintf("Trade{T=%d P=%d %s<-%s Q=%d}", t.Time, t.Price, t.Party1, t.Party2, t.Quantity)
}

func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     EventType `json:"type"`
		Time     int       `json:"time"`
		Price    int       `json:"price"`
		Party1   string    `json:"party1"`
		Party2   string    `json:"party2"`
		Quantity int       `json:"qty"`
	}{TradeEvent, t.Time, t.Price, t.Party1, t.Party2, t.Quantity})
}

// Cancel records the removal of a resting order.
type Cancel struct {
	Time  int
	Order Order
}

func (c Cancel) Type() EventType { return CancelEvent }
func (c Cancel) EventTime() int  { return c.Time }

func (c Cancel) String() string {
	return fmt.Sprintf("Cancel{T=%d %s}", c.Time, c.Order)
}

func (c Cancel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  EventType `json:"type"`
		Time  int       `json:"time"`
		Order orderJSON `json:"order"`
	}{CancelEvent, c.Time, orderJSON{
		TraderID: c.Order.TraderID,
		Side:     c.Order.Side.String(),
		Price:    c.Order.Price,
		Quantity: c.Order.Quantity,
		Time:     c.Order.Time,
		Sequence: c.Order.Sequence,
	}})
}

type orderJSON struct {
	TraderID string `json:"tid"`
	Side     string `json:"side"`
	Price    int    `json:"price"`
	Quantity int    `json:"qty"`
	Time     int    `json:"time"`
	Sequence uint64 `json:"qid"`
}
