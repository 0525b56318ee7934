package trader

import "cdagym/internal/common"

// PlayerTrader is driven from outside: Action forwards whatever order the
// caller supplies.
type PlayerTrader struct {
	base
}

func NewPlayer(id string, prices common.PriceRange) *PlayerTrader {
	return &PlayerTrader{base: newBase(Player, id, prices)}
}

func (p *PlayerTrader) Action(external *common.Order, _ int) (common.Order, bool) {
	if p.order == nil || external == nil {
		return common.Order{}, false
	}
	return *external, true
}

// Prices exposes the legal range so a policy can shape its quotes.
func (p *PlayerTrader) Prices() common.PriceRange {
	return p.prices
}
