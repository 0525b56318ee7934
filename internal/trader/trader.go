package trader

import (
	"errors"
	"fmt"
	"strings"

	"cdagym/internal/common"
)

var (
	ErrNoPendingOrder = errors.New("trader has no pending order")
	ErrUnknownKind    = errors.New("unknown trader kind")
	ErrNotParty       = errors.New("trader is not a party to the trade")
)

// Kind tags the strategy a trader runs.
type Kind string

const (
	Player   Kind = "PLAYER"
	Giveaway Kind = "GIVEAWAY"
	// After Gode & Sunder 1993.
	ZIU Kind = "ZIU"
	ZIC Kind = "ZIC"
	// After Cliff 1997.
	ZIP Kind = "ZIP"
)

var kinds = []Kind{Player, Giveaway, ZIU, ZIC, ZIP}

func ParseKind(s string) (Kind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "GVWY" {
		return Giveaway, nil
	}
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Trader is a market participant holding at most one pending order.
//
// Each turn the driver calls Update with the latest public snapshot, then
// Action. Action returns an order only while one is pending. Notify is called
// for every trade the trader was a party to.
type Trader interface {
	ID() string
	Kind() Kind

	// Assign hands the trader a new customer order, replacing any pending one.
	Assign(order common.Order)
	// Pending returns the customer order currently being worked.
	Pending() (common.Order, bool)
	// Side is the side of the last assigned order, kept after it completes.
	Side() common.Side
	Balance() int

	Action(external *common.Order, time int) (common.Order, bool)
	Update(snapshot common.Snapshot)
	Notify(trade common.Trade) error
}

// New creates a trader of the given kind. src is only consumed by the random
// strategies and may be nil for Player and Giveaway.
func New(kind Kind, id string, prices common.PriceRange, src Source) (Trader, error) {
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	switch kind {
	case Player:
		return NewPlayer(id, prices), nil
	case Giveaway:
		return NewGiveaway(id, prices), nil
	case ZIU:
		return NewZIU(id, prices, src), nil
	case ZIC:
		return NewZIC(id, prices, src), nil
	case ZIP:
		return NewZIP(id, prices, src), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// base carries the bookkeeping shared by every strategy.
type base struct {
	id      string
	kind    Kind
	prices  common.PriceRange
	order   *common.Order
	side    common.Side
	balance int
}

func newBase(kind Kind, id string, prices common.PriceRange) base {
	return base{id: id, kind: kind, prices: prices}
}

func (b *base) ID() string        { return b.id }
func (b *base) Kind() Kind        { return b.kind }
func (b *base) Side() common.Side { return b.side }
func (b *base) Balance() int      { return b.balance }

func (b *base) Assign(order common.Order) {
	b.order = &order
	b.side = order.Side
}

func (b *base) Pending() (common.Order, bool) {
	if b.order == nil {
		return common.Order{}, false
	}
	return *b.order, true
}

// Update is a no-op for strategies that do not learn.
func (b *base) Update(common.Snapshot) {}

// quote builds the order to send for the pending customer order.
func (b *base) quote(price, time int) common.Order {
	return common.NewOrder(b.id, b.order.Side, price, b.order.Quantity, time)
}

// Notify books the profit of a completed trade against the trader's own limit
// price and clears the pending order.
func (b *base) Notify(trade common.Trade) error {
	if !trade.Involves(b.id) {
		return fmt.Errorf("%w: %s in %s", ErrNotParty, b.id, trade)
	}
	if b.order == nil {
		return fmt.Errorf("notify %s: %w", b.id, ErrNoPendingOrder)
	}
	benefit, err := Benefit(*b.order, trade.Price)
	if err != nil {
		return err
	}
	b.balance += benefit
	b.order = nil
	return nil
}

// Benefit is the surplus of trading at price given the customer's limit: what
// a buyer saves below its limit, or what a seller earns above it.
func Benefit(limit common.Order, price int) (int, error) {
	switch limit.Side {
	case common.Bid:
		return limit.Price - price, nil
	case common.Ask:
		return price - limit.Price, nil
	}
	return 0, fmt.Errorf("%w: %d", common.ErrInvalidSide, int(limit.Side))
}
