package common

// Level is one row of the anonymized book: a price and the total quantity
// resting there.
type Level struct {
	Price    int `json:"price"`
	Quantity int `json:"qty"`
}

// Snapshot is the public market state handed to every trader. Bids and Asks
// are best-first. Tape is the full event history; consumers track their own
// position in it.
type Snapshot struct {
	Time int     `json:"time"`
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
	Tape []Event `json:"tape"`
}

// BestBid returns the top bid level, if any.
func (s Snapshot) BestBid() (Level, bool) {
	if len(s.Bids) == 0 {
		return Level{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level, if any.
func (s Snapshot) BestAsk() (Level, bool) {
	if len(s.Asks) == 0 {
		return Level{}, false
	}
	return s.Asks[0], true
}

// LastEvent returns the most recent tape record, if any.
func (s Snapshot) LastEvent() (Event, bool) {
	if len(s.Tape) == 0 {
		return nil, false
	}
	return s.Tape[len(s.Tape)-1], true
}

// Trades filters the tape down to trade records.
func (s Snapshot) Trades() []Trade {
	var trades []Trade
	for _, ev := range s.Tape {
		if t, ok := ev.(Trade); ok {
			trades = append(trades, t)
		}
	}
	return trades
}
