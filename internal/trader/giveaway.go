package trader

import "cdagym/internal/common"

// GiveawayTrader quotes its customer's limit price unchanged.
type GiveawayTrader struct {
	base
}

func NewGiveaway(id string, prices common.PriceRange) *GiveawayTrader {
	return &GiveawayTrader{base: newBase(Giveaway, id, prices)}
}

func (g *GiveawayTrader) Action(_ *common.Order, time int) (common.Order, bool) {
	if g.order == nil {
		return common.Order{}, false
	}
	return g.quote(g.order.Price, time), true
}
