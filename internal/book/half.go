package book

import (
	"errors"
	"fmt"
	"slices"

	"cdagym/internal/common"
)

var (
	ErrEmptySide = errors.New("book side is empty")
)

type SubmitResult int

const (
	// Added means the trader had no resting order on this side.
	Added SubmitResult = iota
	// Replaced means the trader's previous order was overwritten.
	Replaced
)

func (r SubmitResult) String() string {
	if r == Replaced {
		return "Replaced"
	}
	return "Added"
}

// Half is one side of the book for a single instrument. It holds at most one
// order per trader. The price levels and the anonymized view are derived data
// and are rebuilt from the order map after every write.
//
// Queue priority inside a price level follows arrival: the order in which
// traders first placed an order that is still resting. Replacing an order keeps
// the trader's arrival slot, even when the price changes. Cancelling or
// matching releases it.
type Half struct {
	side   common.Side
	prices common.PriceRange

	orders  map[string]common.Order
	arrival []string

	levels *PriceLevels
	anon   []common.Level
}

func NewHalf(side common.Side, prices common.PriceRange) (*Half, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidSide, int(side))
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	return &Half{
		side:   side,
		prices: prices,
		orders: make(map[string]common.Order),
		levels: newPriceLevels(side),
		anon:   []common.Level{},
	}, nil
}

func (h *Half) Side() common.Side { return h.side }

// Len is the number of resting orders.
func (h *Half) Len() int { return len(h.orders) }

// Submit clamps the order price into the legal range and upserts it by trader.
func (h *Half) Submit(order common.Order) SubmitResult {
	order.Price = h.prices.Clamp(order.Price)

	result := Added
	if _, ok := h.orders[order.TraderID]; ok {
		result = Replaced
	} else {
		h.arrival = append(h.arrival, order.TraderID)
	}
	h.orders[order.TraderID] = order

	h.rebuild()
	return result
}

// Cancel removes the trader's order. Returns false if there was none.
func (h *Half) Cancel(traderID string) bool {
	if _, ok := h.orders[traderID]; !ok {
		return false
	}
	delete(h.orders, traderID)
	if i := slices.Index(h.arrival, traderID); i >= 0 {
		h.arrival = slices.Delete(h.arrival, i, i+1)
	}

	h.rebuild()
	return true
}

// Best returns the best price and the owner of the first queued order there.
func (h *Half) Best() (price int, traderID string, ok bool) {
	level, ok := h.levels.Min()
	if !ok {
		return 0, "", false
	}
	return level.Price, level.Entries[0].TraderID, true
}

// PopBest removes the order identified by Best and returns its owner.
// Callers are expected to check Best first.
func (h *Half) PopBest() (string, error) {
	_, traderID, ok := h.Best()
	if !ok {
		return "", fmt.Errorf("pop %s: %w", h.side, ErrEmptySide)
	}
	h.Cancel(traderID)
	return traderID, nil
}

// Order returns the resting order of a trader.
func (h *Half) Order(traderID string) (common.Order, bool) {
	o, ok := h.orders[traderID]
	return o, ok
}

// Anonymized returns [price, total quantity] rows, best first.
func (h *Half) Anonymized() []common.Level {
	return slices.Clone(h.anon)
}

// Levels returns a copy of the full price-level structure, best first.
func (h *Half) Levels() []PriceLevel {
	out := make([]PriceLevel, 0, h.levels.Len())
	h.levels.Scan(func(level *PriceLevel) bool {
		out = append(out, level.clone())
		return true
	})
	return out
}

// rebuild recomputes the price levels and the anonymized view from the order
// map, walking traders in arrival order so each queue stays FIFO.
func (h *Half) rebuild() {
	levels := newPriceLevels(h.side)
	for _, traderID := range h.arrival {
		order := h.orders[traderID]

		// Levels comparator only accounts for price, so a dummy level works
		// as the search key.
		level, ok := levels.GetMut(&PriceLevel{Price: order.Price})
		if !ok {
			level = &PriceLevel{Price: order.Price}
			levels.Set(level)
		}
		level.push(Entry{
			Time:     order.Time,
			Quantity: order.Quantity,
			TraderID: order.TraderID,
			Sequence: order.Sequence,
		})
	}

	anon := make([]common.Level, 0, levels.Len())
	levels.Scan(func(level *PriceLevel) bool {
		anon = append(anon, common.Level{Price: level.Price, Quantity: level.Quantity})
		return true
	})

	h.levels = levels
	h.anon = anon
}
