package session

import (
	"errors"
	"fmt"
	"strings"

	"cdagym/internal/common"
	"cdagym/internal/trader"
)

var (
	ErrUnknownPolicy = errors.New("unknown policy")
)

// Policy picks the player's order for the next step, or nil to stay out. src
// is the session's generator so that seeded runs replay exactly.
type Policy func(obs Observation, src trader.Source) *common.Order

// IdlePolicy never trades.
func IdlePolicy(Observation, trader.Source) *common.Order { return nil }

// GiveawayPolicy quotes the customer's limit.
func GiveawayPolicy(obs Observation, _ trader.Source) *common.Order {
	if !obs.Player.HasOrder {
		return nil
	}
	return playerQuote(obs, obs.Player.Order.Price)
}

// ZIUPolicy quotes anywhere in the price range, limit or not.
func ZIUPolicy(obs Observation, src trader.Source) *common.Order {
	if !obs.Player.HasOrder {
		return nil
	}
	prices := obs.Player.Prices
	return playerQuote(obs, between(src, prices.Min, prices.Max))
}

// ZICPolicy quotes at random on the profitable side of the limit.
func ZICPolicy(obs Observation, src trader.Source) *common.Order {
	if !obs.Player.HasOrder {
		return nil
	}
	prices := obs.Player.Prices
	limit := prices.Clamp(obs.Player.Order.Price)
	if obs.Player.Order.Side == common.Bid {
		return playerQuote(obs, between(src, prices.Min, limit))
	}
	return playerQuote(obs, between(src, limit, prices.Max))
}

func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "idle", "none":
		return IdlePolicy, nil
	case "giveaway", "gvwy":
		return GiveawayPolicy, nil
	case "ziu":
		return ZIUPolicy, nil
	case "zic":
		return ZICPolicy, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

func playerQuote(obs Observation, price int) *common.Order {
	o := common.NewOrder(obs.Player.ID, obs.Player.Order.Side, price, obs.Player.Order.Quantity, obs.Snapshot.Time)
	return &o
}

func between(src trader.Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}
