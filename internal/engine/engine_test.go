package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"cdagym/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// --- Setup & Helpers --------------------------------------------------------

func newTestExchange(t *testing.T) *Exchange {
	t.Helper()
	e, err := New(1, 1000)
	require.NoError(t, err)
	return e
}

func process(t *testing.T, e *Exchange, tid string, side common.Side, price, time int) *common.Trade {
	t.Helper()
	trade, err := e.Process(common.NewOrder(tid, side, price, 1, time), time)
	require.NoError(t, err)
	return trade
}

// --- Tests ------------------------------------------------------------------

func TestNew_InvalidRange(t *testing.T) {
	_, err := New(10, 5)
	assert.ErrorIs(t, err, common.ErrInvalidPriceRange)
}

func TestZeroValue_NotInitialized(t *testing.T) {
	var e Exchange

	_, err := e.Process(common.NewOrder("A", common.Bid, 5, 1, 0), 0)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, e.Cancel(common.NewOrder("A", common.Bid, 5, 1, 0), 0), ErrNotInitialized)

	_, err = e.Snapshot(0)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, e.DumpTape(&bytes.Buffer{}), ErrNotInitialized)
}

func TestProcess_InvalidSide(t *testing.T) {
	e := newTestExchange(t)

	_, err := e.Process(common.NewOrder("A", common.Side(3), 5, 1, 0), 0)
	assert.ErrorIs(t, err, common.ErrInvalidSide)
	assert.Zero(t, e.Sequence(), "rejected orders must not consume a sequence id")
}

func TestProcess_AskHitsBestBid(t *testing.T) {
	e := newTestExchange(t)

	assert.Nil(t, process(t, e, "A", common.Bid, 5, 0))
	assert.Nil(t, process(t, e, "B", common.Bid, 10, 1))

	trade := process(t, e, "C", common.Ask, 8, 2)
	require.NotNil(t, trade)
	assert.Equal(t, common.Trade{Time: 2, Price: 10, Party1: "B", Party2: "C", Quantity: 1}, *trade)

	snap, err := e.Snapshot(3)
	require.NoError(t, err)
	assert.Equal(t, []common.Level{{Price: 5, Quantity: 1}}, snap.Bids)
	assert.Empty(t, snap.Asks)
	assert.Equal(t, []common.Event{*trade}, snap.Tape)
}

func TestProcess_BidLiftsBestAsk(t *testing.T) {
	e := newTestExchange(t)

	assert.Nil(t, process(t, e, "D", common.Ask, 20, 0))
	assert.Nil(t, process(t, e, "E", common.Ask, 15, 1))

	snap, _ := e.Snapshot(1)
	assert.Equal(t, []common.Level{{Price: 15, Quantity: 1}, {Price: 20, Quantity: 1}}, snap.Asks)

	trade := process(t, e, "F", common.Bid, 30, 2)
	require.NotNil(t, trade)
	// The resting ask sets the price, not the aggressive bid.
	assert.Equal(t, 15, trade.Price)
	assert.Equal(t, "E", trade.Party1)
	assert.Equal(t, "F", trade.Party2)
}

func TestProcess_NoCross(t *testing.T) {
	e := newTestExchange(t)

	assert.Nil(t, process(t, e, "A", common.Bid, 10, 0))
	assert.Nil(t, process(t, e, "B", common.Ask, 11, 1))

	snap, _ := e.Snapshot(1)
	assert.Len(t, snap.Bids, 1)
	assert.Len(t, snap.Asks, 1)
	assert.Empty(t, snap.Tape)
}

func TestProcess_ReplacementDoesNotGrowBook(t *testing.T) {
	e := newTestExchange(t)

	process(t, e, "A", common.Bid, 10, 0)
	process(t, e, "A", common.Bid, 12, 1)

	snap, _ := e.Snapshot(1)
	assert.Equal(t, []common.Level{{Price: 12, Quantity: 1}}, snap.Bids)

	o, ok := e.Resting("A", common.Bid)
	require.True(t, ok)
	assert.Equal(t, uint64(2), o.Sequence)
}

func TestProcess_ClampsBeforeCrossing(t *testing.T) {
	e := newTestExchange(t)

	process(t, e, "A", common.Ask, 5000, 0)
	trade := process(t, e, "B", common.Bid, 2000, 1)

	require.NotNil(t, trade)
	assert.Equal(t, 1000, trade.Price)
}

func TestCancel_RecordsOnTape(t *testing.T) {
	e := newTestExchange(t)

	order := common.NewOrder("A", common.Ask, 20, 1, 0)
	_, err := e.Process(order, 0)
	require.NoError(t, err)

	require.NoError(t, e.Cancel(order, 1))
	snap, _ := e.Snapshot(2)
	assert.Empty(t, snap.Asks)
	require.Len(t, snap.Tape, 1)
	assert.Equal(t, common.CancelEvent, snap.Tape[0].Type())
	assert.Equal(t, 1, snap.Tape[0].EventTime())

	// Cancelling a missing order still leaves a record and never trades.
	require.NoError(t, e.Cancel(order, 2))
	assert.Len(t, e.Tape(), 2)
	assert.Zero(t, e.Trades())
}

func TestCancel_InvalidSide(t *testing.T) {
	e := newTestExchange(t)
	err := e.Cancel(common.NewOrder("A", common.Side(-1), 1, 1, 0), 0)
	assert.ErrorIs(t, err, common.ErrInvalidSide)
}

func TestSnapshot_Idempotent(t *testing.T) {
	e := newTestExchange(t)
	process(t, e, "A", common.Bid, 10, 0)
	process(t, e, "B", common.Ask, 9, 1)
	process(t, e, "C", common.Ask, 30, 2)

	first, _ := e.Snapshot(3)
	second, _ := e.Snapshot(3)
	assert.Equal(t, first, second)

	// Mutating a snapshot must not leak into the exchange.
	first.Asks[0].Price = 1
	first.Tape[0] = common.Cancel{}
	third, _ := e.Snapshot(3)
	assert.Equal(t, second, third)
}

func TestSnapshot_JSONShape(t *testing.T) {
	e := newTestExchange(t)
	process(t, e, "A", common.Bid, 10, 0)
	process(t, e, "B", common.Ask, 9, 1)

	snap, _ := e.Snapshot(2)
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"time":2,"bids":[],"asks":[],"tape":[{"type":"Trade","time":1,"price":10,"party1":"A","party2":"B","qty":1}]}`,
		string(raw))
}

func TestDumpTape(t *testing.T) {
	e := newTestExchange(t)
	process(t, e, "A", common.Bid, 10, 0)
	process(t, e, "B", common.Ask, 9, 1)
	require.NoError(t, e.Cancel(common.NewOrder("C", common.Bid, 1, 1, 2), 2))
	process(t, e, "C", common.Ask, 40, 3)
	process(t, e, "D", common.Bid, 50, 4)

	var buf bytes.Buffer
	require.NoError(t, e.DumpTape(&buf))
	assert.Equal(t, "1, 10\n4, 40\n", buf.String())
	assert.Equal(t, 2, e.Trades())
}

func TestDepth_QueueOrder(t *testing.T) {
	e := newTestExchange(t)
	process(t, e, "A", common.Ask, 10, 0)
	process(t, e, "B", common.Ask, 10, 1)

	levels, err := e.Depth(common.Ask)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.Len(t, levels[0].Entries, 2)
	assert.Equal(t, "A", levels[0].Entries[0].TraderID)
	assert.Equal(t, uint64(1), levels[0].Entries[0].Sequence)
	assert.Equal(t, "B", levels[0].Entries[1].TraderID)
	assert.Equal(t, uint64(2), levels[0].Entries[1].Sequence)
}

func TestProperty_ExecutionAtRestingPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e, _ := New(1, 100)

		n := rapid.IntRange(1, 60).Draw(t, "n")
		for i := range n {
			side := common.Side(rapid.IntRange(0, 1).Draw(t, "side"))
			tid := fmt.Sprintf("T%d", rapid.IntRange(0, 9).Draw(t, "trader"))
			price := rapid.IntRange(-10, 110).Draw(t, "price")

			before, _ := e.Snapshot(i)
			trade, err := e.Process(common.NewOrder(tid, side, price, 1, i), i)
			if err != nil {
				t.Fatalf("process: %v", err)
			}
			if trade == nil {
				continue
			}

			resting := before.Asks
			if side == common.Ask {
				resting = before.Bids
			}
			if len(resting) == 0 {
				t.Fatalf("trade %v with an empty opposite side", trade)
			}
			if trade.Price != resting[0].Price {
				t.Fatalf("trade at %d, resting best was %d", trade.Price, resting[0].Price)
			}
			if trade.Party2 != tid {
				t.Fatalf("aggressor %s, trade names %s", tid, trade.Party2)
			}
		}

		// The book is never left crossed.
		snap, _ := e.Snapshot(n)
		if len(snap.Bids) > 0 && len(snap.Asks) > 0 && snap.Bids[0].Price >= snap.Asks[0].Price {
			t.Fatalf("crossed book: %v / %v", snap.Bids[0], snap.Asks[0])
		}
	})
}

func TestProperty_SequenceStrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e, _ := New(1, 100)
		last := e.Sequence()

		n := rapid.IntRange(1, 50).Draw(t, "n")
		for i := range n {
			side := common.Side(rapid.IntRange(0, 1).Draw(t, "side"))
			tid := fmt.Sprintf("T%d", rapid.IntRange(0, 4).Draw(t, "trader"))
			order := common.NewOrder(tid, side, rapid.IntRange(1, 100).Draw(t, "price"), 1, i)
			if _, err := e.Process(order, i); err != nil {
				t.Fatalf("process: %v", err)
			}
			if e.Sequence() <= last {
				t.Fatalf("sequence went from %d to %d", last, e.Sequence())
			}
			last = e.Sequence()
		}
	})
}
