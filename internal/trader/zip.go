package trader

import (
	"math"

	"cdagym/internal/common"
)

// ZIPParams are the learning coefficients of a ZIP trader.
type ZIPParams struct {
	Beta       float64 // Learning rate
	Momentum   float64 // Weight of the previous change
	CA         float64 // Absolute perturbation of targets
	CR         float64 // Relative perturbation of targets
	MarginBuy  float64 // Initial margin when bidding, below zero
	MarginSell float64 // Initial margin when asking, above zero
}

// DrawZIPParams samples coefficients the way Cliff (1997) does. ca and cr are
// fixed at 0.05.
func DrawZIPParams(src Source) ZIPParams {
	return ZIPParams{
		Beta:       0.1 + 0.4*src.Float64(),
		Momentum:   0.1 * src.Float64(),
		CA:         0.05,
		CR:         0.05,
		MarginBuy:  -1.0 * (0.05 + 0.3*src.Float64()),
		MarginSell: 0.05 + 0.3*src.Float64(),
	}
}

// ZIPTrader (zero-intelligence plus) quotes its limit shifted by a margin and
// moves that margin after every snapshot, toward targets derived from trades
// and quotes it sees on the public book.
type ZIPTrader struct {
	base
	src Source

	params ZIPParams

	price      int     // Price currently quoted
	margin     float64 // Margin behind price
	marginBuy  float64
	marginSell float64
	prevChange float64 // last_d in Cliff'97

	// Best bid and ask seen on the previous update. An empty side is
	// remembered as the range bound with zero quantity.
	prevBestBidPrice int
	prevBestBidQty   int
	prevBestAskPrice int
	prevBestAskQty   int
}

// NewZIP draws the trader's coefficients from src.
func NewZIP(id string, prices common.PriceRange, src Source) *ZIPTrader {
	src = orGlobal(src)
	return NewZIPWithParams(id, prices, src, DrawZIPParams(src))
}

func NewZIPWithParams(id string, prices common.PriceRange, src Source, params ZIPParams) *ZIPTrader {
	return &ZIPTrader{
		base:             newBase(ZIP, id, prices),
		src:              orGlobal(src),
		params:           params,
		marginBuy:        params.MarginBuy,
		marginSell:       params.MarginSell,
		prevBestBidPrice: prices.Min,
		prevBestAskPrice: prices.Max,
	}
}

func (z *ZIPTrader) Params() ZIPParams { return z.params }
func (z *ZIPTrader) Quote() int        { return z.price }
func (z *ZIPTrader) Margin() float64   { return z.margin }

// Margins returns the stored buy and sell margins.
func (z *ZIPTrader) Margins() (buy, sell float64) {
	return z.marginBuy, z.marginSell
}

func (z *ZIPTrader) Assign(order common.Order) {
	z.base.Assign(order)

	if order.Side == common.Bid {
		z.margin = z.marginBuy
	} else {
		z.margin = z.marginSell
	}
	z.price = z.priceAt(z.margin)
}

func (z *ZIPTrader) Action(_ *common.Order, time int) (common.Order, bool) {
	if z.order == nil {
		return common.Order{}, false
	}
	return z.quote(z.price, time), true
}

func (z *ZIPTrader) priceAt(margin float64) int {
	return int(math.Round(float64(z.order.Price) * (1.0 + margin)))
}

// zipSignals is what changed on the book since the previous update.
type zipSignals struct {
	bestBid, bestAsk common.Level
	hasBid, hasAsk   bool

	bidImproved bool
	bidHit      bool
	askImproved bool
	askLifted   bool

	deal *common.Trade
}

func (z *ZIPTrader) Update(snapshot common.Snapshot) {
	sig := z.observe(snapshot)

	if z.order != nil {
		switch z.order.Side {
		case common.Ask:
			z.adaptAsk(sig, snapshot)
		case common.Bid:
			z.adaptBid(sig, snapshot)
		}
	}

	z.remember(sig)
}

func (z *ZIPTrader) observe(snapshot common.Snapshot) zipSignals {
	var sig zipSignals
	sig.bestBid, sig.hasBid = snapshot.BestBid()
	sig.bestAsk, sig.hasAsk = snapshot.BestAsk()

	switch {
	case sig.hasBid:
		if z.prevBestBidPrice < sig.bestBid.Price {
			sig.bidImproved = true
		} else if tradedAt(snapshot, snapshot.Time-1) {
			sig.bidHit = true
		}
	case z.prevBestBidQty > 0:
		// The bid side emptied: hit if the last record is a trade, not a cancel.
		sig.bidHit = lastIsTrade(snapshot)
	}

	switch {
	case sig.hasAsk:
		if z.prevBestAskPrice > sig.bestAsk.Price {
			sig.askImproved = true
		} else if tradedAt(snapshot, snapshot.Time-1) {
			sig.askLifted = true
		}
	case z.prevBestAskQty > 0:
		sig.askLifted = lastIsTrade(snapshot)
	}

	if sig.bidHit || sig.askLifted {
		if last, ok := snapshot.LastEvent(); ok {
			if trade, ok := last.(common.Trade); ok {
				sig.deal = &trade
			}
		}
	}
	return sig
}

func (z *ZIPTrader) adaptAsk(sig zipSignals, snapshot common.Snapshot) {
	if sig.deal != nil {
		tradePrice := sig.deal.Price
		if z.price <= tradePrice {
			z.alterProfit(z.targetUp(tradePrice))
		} else if sig.askLifted && !z.willingToTrade(tradePrice) {
			z.alterProfit(z.targetDown(tradePrice))
		}
		return
	}

	// No deal: aim above the best bid, or at the worst ask if nobody bids.
	if sig.askImproved && z.price > sig.bestAsk.Price {
		var target int
		if sig.hasBid {
			target = z.targetUp(sig.bestBid.Price)
		} else {
			target = snapshot.Asks[len(snapshot.Asks)-1].Price
		}
		z.alterProfit(target)
	}
}

func (z *ZIPTrader) adaptBid(sig zipSignals, snapshot common.Snapshot) {
	if sig.deal != nil {
		tradePrice := sig.deal.Price
		if z.price >= tradePrice {
			z.alterProfit(z.targetDown(tradePrice))
		} else if sig.bidHit && !z.willingToTrade(tradePrice) {
			z.alterProfit(z.targetUp(tradePrice))
		}
		return
	}

	// No deal: aim below the best ask, or at the worst bid if nobody asks.
	if sig.bidImproved && z.price < sig.bestBid.Price {
		var target int
		if sig.hasAsk {
			target = z.targetDown(sig.bestAsk.Price)
		} else {
			target = snapshot.Bids[len(snapshot.Bids)-1].Price
		}
		z.alterProfit(target)
	}
}

func (z *ZIPTrader) remember(sig zipSignals) {
	z.prevBestBidPrice, z.prevBestBidQty = z.prices.Min, 0
	if sig.hasBid {
		z.prevBestBidPrice, z.prevBestBidQty = sig.bestBid.Price, sig.bestBid.Quantity
	}
	z.prevBestAskPrice, z.prevBestAskQty = z.prices.Max, 0
	if sig.hasAsk {
		z.prevBestAskPrice, z.prevBestAskQty = sig.bestAsk.Price, sig.bestAsk.Quantity
	}
}

// alterProfit moves the quote toward target with a momentum-smoothed
// Widrow-Hoff step. The new margin is kept only if it has the sign the
// order's side requires; the quote is recomputed from the stored margin either
// way.
func (z *ZIPTrader) alterProfit(target int) {
	limit := float64(z.order.Price)
	if limit == 0 {
		return
	}

	diff := float64(target - z.price)
	change := (1.0-z.params.Momentum)*(z.params.Beta*diff) + z.params.Momentum*z.prevChange
	z.prevChange = change
	newMargin := (float64(z.price)+change)/limit - 1.0

	if z.order.Side == common.Bid {
		if newMargin < 0.0 {
			z.marginBuy = newMargin
		}
		z.margin = z.marginBuy
	} else {
		if newMargin > 0.0 {
			z.marginSell = newMargin
		}
		z.margin = z.marginSell
	}

	z.price = z.priceAt(z.margin)
}

// targetUp perturbs price upward by a relative and an absolute jitter.
func (z *ZIPTrader) targetUp(price int) int {
	absolute := z.params.CA * z.src.Float64()
	relative := float64(price) * (1.0 + z.params.CR*z.src.Float64())
	return int(math.Round(relative + absolute))
}

// targetDown perturbs price downward by a relative and an absolute jitter.
func (z *ZIPTrader) targetDown(price int) int {
	absolute := z.params.CA * z.src.Float64()
	relative := float64(price) * (1.0 - z.params.CR*z.src.Float64())
	return int(math.Round(relative - absolute))
}

func (z *ZIPTrader) willingToTrade(price int) bool {
	if z.order == nil {
		return false
	}
	if z.order.Side == common.Bid {
		return z.price >= price
	}
	return z.price <= price
}

// tradedAt reports whether the most recent tape record is a trade at time.
func tradedAt(snapshot common.Snapshot, time int) bool {
	last, ok := snapshot.LastEvent()
	if !ok {
		return false
	}
	return last.Type() == common.TradeEvent && last.EventTime() == time
}

func lastIsTrade(snapshot common.Snapshot) bool {
	last, ok := snapshot.LastEvent()
	return ok && last.Type() == common.TradeEvent
}
