package book

import (
	"cdagym/internal/common"

	"github.com/tidwall/btree"
)

type PriceLevels = btree.BTreeG[*PriceLevel]

// bidLess sorts price levels greatest first, so Min() is the best bid.
func bidLess(a, b *PriceLevel) bool {
	return a.Price > b.Price
}

// askLess sorts price levels least first, so Min() is the best ask.
func askLess(a, b *PriceLevel) bool {
	return a.Price < b.Price
}

func newPriceLevels(side common.Side) *PriceLevels {
	less := bidLess
	if side == common.Ask {
		less = askLess
	}
	// A half book is never shared between goroutines.
	return btree.NewBTreeGOptions(less, btree.Options{NoLocks: true})
}
