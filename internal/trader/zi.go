package trader

import "cdagym/internal/common"

// ZIUTrader is zero-intelligence unconstrained: it quotes uniformly over the
// whole legal range and can trade at a loss.
type ZIUTrader struct {
	base
	src Source
}

func NewZIU(id string, prices common.PriceRange, src Source) *ZIUTrader {
	return &ZIUTrader{base: newBase(ZIU, id, prices), src: orGlobal(src)}
}

func (z *ZIUTrader) Action(_ *common.Order, time int) (common.Order, bool) {
	if z.order == nil {
		return common.Order{}, false
	}
	price := intBetween(z.src, z.prices.Min, z.prices.Max)
	return z.quote(price, time), true
}

// ZICTrader is zero-intelligence constrained: it quotes uniformly between the
// range bound and its limit, so it never trades at a loss.
type ZICTrader struct {
	base
	src Source
}

func NewZIC(id string, prices common.PriceRange, src Source) *ZICTrader {
	return &ZICTrader{base: newBase(ZIC, id, prices), src: orGlobal(src)}
}

func (z *ZICTrader) Action(_ *common.Order, time int) (common.Order, bool) {
	if z.order == nil {
		return common.Order{}, false
	}
	limit := z.prices.Clamp(z.order.Price)

	var price int
	if z.order.Side == common.Bid {
		price = intBetween(z.src, z.prices.Min, limit)
	} else {
		price = intBetween(z.src, limit, z.prices.Max)
	}
	return z.quote(price, time), true
}
