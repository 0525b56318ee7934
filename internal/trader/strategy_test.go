package trader

import (
	"testing"

	"cdagym/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiveaway_QuotesLimit(t *testing.T) {
	g := NewGiveaway("G", testPrices)

	_, ok := g.Action(nil, 0)
	assert.False(t, ok)

	g.Assign(customer("G", common.Ask, 42))
	o, ok := g.Action(nil, 7)
	require.True(t, ok)
	assert.Equal(t, common.NewOrder("G", common.Ask, 42, 1, 7), o)
}

func TestZIU_CoversWholeRange(t *testing.T) {
	z := NewZIU("U", testPrices, NewSource(7))
	z.Assign(customer("U", common.Bid, 50))

	seenAboveLimit := false
	for i := range 500 {
		o, ok := z.Action(nil, i)
		require.True(t, ok)
		assert.True(t, testPrices.Contains(o.Price), "price %d", o.Price)
		assert.Equal(t, common.Bid, o.Side)
		if o.Price > 50 {
			seenAboveLimit = true
		}
	}
	assert.True(t, seenAboveLimit, "ZIU ignores its limit")
}

func TestZIC_NeverCrossesLimit(t *testing.T) {
	src := NewSource(11)

	bidder := NewZIC("B", testPrices, src)
	bidder.Assign(customer("B", common.Bid, 30))
	asker := NewZIC("A", testPrices, src)
	asker.Assign(customer("A", common.Ask, 70))

	for i := range 500 {
		b, _ := bidder.Action(nil, i)
		a, _ := asker.Action(nil, i)
		assert.True(t, b.Price >= testPrices.Min && b.Price <= 30, "bid %d", b.Price)
		assert.True(t, a.Price >= 70 && a.Price <= testPrices.Max, "ask %d", a.Price)
	}
}

func TestZIC_ScriptedDraw(t *testing.T) {
	src := &scriptedSource{n: 4}
	z := NewZIC("A", testPrices, src)
	z.Assign(customer("A", common.Ask, 90))

	o, _ := z.Action(nil, 0)
	// 90 + (4 mod 11)
	assert.Equal(t, 94, o.Price)
}

func TestSameSeed_SameQuotes(t *testing.T) {
	a := NewZIU("U", testPrices, NewSource(3))
	b := NewZIU("U", testPrices, NewSource(3))
	a.Assign(customer("U", common.Ask, 10))
	b.Assign(customer("U", common.Ask, 10))

	for i := range 20 {
		oa, _ := a.Action(nil, i)
		ob, _ := b.Action(nil, i)
		assert.Equal(t, oa, ob)
	}
}

func TestPlayer_PassThrough(t *testing.T) {
	p := NewPlayer("PLAYER", testPrices)
	action := common.NewOrder("PLAYER", common.Bid, 33, 1, 2)

	_, ok := p.Action(&action, 2)
	assert.False(t, ok, "no pending order, no action")

	p.Assign(customer("PLAYER", common.Bid, 40))
	o, ok := p.Action(&action, 2)
	require.True(t, ok)
	assert.Equal(t, action, o)

	_, ok = p.Action(nil, 3)
	assert.False(t, ok)
	assert.Equal(t, testPrices, p.Prices())
}
