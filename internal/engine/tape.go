package engine

import (
	"bufio"
	"fmt"
	"io"

	"cdagym/internal/common"
)

// DumpTape writes one "time, price" line per trade on the tape. Cancels are
// skipped.
func (e *Exchange) DumpTape(w io.Writer) error {
	if err := e.ready(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, ev := range e.tape {
		trade, ok := ev.(common.Trade)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%d, %d\n", trade.Time, trade.Price); err != nil {
			return fmt.Errorf("unable to write tape: %w", err)
		}
	}
	return bw.Flush()
}

// Trades counts trade records on the tape.
func (e *Exchange) Trades() int {
	n := 0
	for _, ev := range e.tape {
		if ev.Type() == common.TradeEvent {
			n++
		}
	}
	return n
}
