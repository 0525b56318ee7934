package engine

import (
	"errors"
	"fmt"

	"cdagym/internal/book"
	"cdagym/internal/common"

	"github.com/rs/zerolog/log"
)

// This is the main matching engine.

var (
	ErrNotInitialized = errors.New("exchange not initialized")
)

// Exchange is a continuous double auction for a single instrument. It owns a
// half book per side, the sequence counter and the tape. A new session needs a
// new Exchange: there is no reset in place.
type Exchange struct {
	prices common.PriceRange

	bids *book.Half
	asks *book.Half

	// Last sequence id handed out. Ids are shared by both sides.
	sequence uint64

	tape []common.Event
}

func New(minPrice, maxPrice int) (*Exchange, error) {
	prices, err := common.NewPriceRange(minPrice, maxPrice)
	if err != nil {
		return nil, err
	}
	bids, err := book.NewHalf(common.Bid, prices)
	if err != nil {
		return nil, err
	}
	asks, err := book.NewHalf(common.Ask, prices)
	if err != nil {
		return nil, err
	}
	return &Exchange{
		prices: prices,
		bids:   bids,
		asks:   asks,
	}, nil
}

func (e *Exchange) Prices() common.PriceRange { return e.prices }

// Sequence is the last sequence id assigned, 0 if none yet.
func (e *Exchange) Sequence() uint64 { return e.sequence }

func (e *Exchange) ready() error {
	if e == nil || e.bids == nil || e.asks == nil {
		return ErrNotInitialized
	}
	return nil
}

func (e *Exchange) half(side common.Side) (*book.Half, error) {
	switch side {
	case common.Bid:
		return e.bids, nil
	case common.Ask:
		return e.asks, nil
	}
	return nil, fmt.Errorf("%w: %d", common.ErrInvalidSide, int(side))
}

// Process rests the order in the book and, if it crosses the best order on the
// other side, executes a single unit trade.
//
// The trade prints at the resting order's price, so any price improvement goes
// to the side that was already in the book. A nil trade with a nil error means
// the order did not cross and is now resting.
func (e *Exchange) Process(order common.Order, time int) (*common.Trade, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	half, err := e.half(order.Side)
	if err != nil {
		return nil, err
	}

	e.add(half, order)

	bestBid, _, bidOk := e.bids.Best()
	bestAsk, _, askOk := e.asks.Best()
	if !bidOk || !askOk {
		return nil, nil
	}

	// Only the side of the incoming order is checked; the other side is the
	// counterparty and its best price sets the trade price.
	var (
		price       int
		party       *book.Half
		counterpart *book.Half
	)
	switch {
	case order.Side == common.Bid && bestBid >= bestAsk:
		price, party, counterpart = bestAsk, e.bids, e.asks
	case order.Side == common.Ask && bestAsk <= bestBid:
		price, party, counterpart = bestBid, e.asks, e.bids
	default:
		return nil, nil
	}

	partyID, err := party.PopBest()
	if err != nil {
		return nil, err
	}
	counterpartyID, err := counterpart.PopBest()
	if err != nil {
		return nil, err
	}

	trade := common.Trade{
		Time:     time,
		Price:    price,
		Party1:   counterpartyID,
		Party2:   partyID,
		Quantity: order.Quantity,
	}
	e.tape = append(e.tape, trade)

	log.Debug().
		Int("time", time).
		Int("price", price).
		Str("party1", counterpartyID).
		Str("party2", partyID).
		Msg("trade executed")

	return &trade, nil
}

// add stamps a fresh sequence id on the order and rests it on its side.
func (e *Exchange) add(half *book.Half, order common.Order) {
	e.sequence++
	order.Sequence = e.sequence

	res := half.Submit(order)

	log.Debug().
		Str("trader", order.TraderID).
		Stringer("side", order.Side).
		Int("price", order.Price).
		Uint64("seq", order.Sequence).
		Stringer("result", res).
		Msg("order accepted")
}

// Cancel removes the trader's resting order on the order's side and records
// the cancellation on the tape.
func (e *Exchange) Cancel(order common.Order, time int) error {
	if err := e.ready(); err != nil {
		return err
	}
	half, err := e.half(order.Side)
	if err != nil {
		return err
	}

	removed := half.Cancel(order.TraderID)
	e.tape = append(e.tape, common.Cancel{Time: time, Order: order})

	log.Debug().
		Int("time", time).
		Str("trader", order.TraderID).
		Stringer("side", order.Side).
		Bool("removed", removed).
		Msg("order cancelled")

	return nil
}

// Snapshot publishes what traders are allowed to see: anonymized depth for
// both sides and the whole tape.
func (e *Exchange) Snapshot(time int) (common.Snapshot, error) {
	if err := e.ready(); err != nil {
		return common.Snapshot{}, err
	}
	return common.Snapshot{
		Time: time,
		Bids: e.bids.Anonymized(),
		Asks: e.asks.Anonymized(),
		Tape: e.Tape(),
	}, nil
}

// Tape returns a copy of every event recorded so far.
func (e *Exchange) Tape() []common.Event {
	tape := make([]common.Event, len(e.tape))
	copy(tape, e.tape)
	return tape
}

// Depth exposes the full price-level structure of one side, including queue
// order. Used for inspection; traders only see Snapshot.
func (e *Exchange) Depth(side common.Side) ([]book.PriceLevel, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	half, err := e.half(side)
	if err != nil {
		return nil, err
	}
	return half.Levels(), nil
}

// Resting returns the trader's order on the given side, if any.
func (e *Exchange) Resting(traderID string, side common.Side) (common.Order, bool) {
	if e.ready() != nil {
		return common.Order{}, false
	}
	half, err := e.half(side)
	if err != nil {
		return common.Order{}, false
	}
	return half.Order(traderID)
}
