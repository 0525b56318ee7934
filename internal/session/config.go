package session

import (
	"errors"
	"fmt"

	"cdagym/internal/common"
	"cdagym/internal/trader"
)

var (
	ErrInvalidConfig = errors.New("invalid session config")
)

// PlayerID names the externally driven trader.
const PlayerID = "PLAYER"

// Cohort is a group of traders sharing a strategy and a side. Ids are Prefix
// followed by a counter that keeps running across cohorts with the same
// prefix, so two ZIP cohorts produce ZIP0..ZIP9 and ZIP10..ZIP19.
type Cohort struct {
	Kind   trader.Kind
	Side   common.Side
	Count  int
	Prefix string
}

type Config struct {
	MaxTime  int // Last tick of the session
	MinPrice int
	MaxPrice int

	// Give traders a fresh order of their last side once they complete one.
	Replenish bool
	Seed      uint64

	// Customer limit prices are drawn uniformly from Center +/- Spread.
	OrderCenter int
	OrderSpread int

	// Include PLAYER, whose initial side is drawn at random.
	Player     bool
	Population []Cohort
}

func DefaultConfig() Config {
	return Config{
		MaxTime:     180,
		MinPrice:    1,
		MaxPrice:    1000,
		OrderCenter: 50,
		OrderSpread: 10,
		Player:      true,
		Population: []Cohort{
			{Kind: trader.ZIP, Side: common.Bid, Count: 10, Prefix: "ZIP"},
			{Kind: trader.ZIP, Side: common.Ask, Count: 10, Prefix: "ZIP"},
		},
	}
}

func (c Config) Validate() error {
	if _, err := common.NewPriceRange(c.MinPrice, c.MaxPrice); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.MaxTime < 1 {
		return fmt.Errorf("%w: max time %d", ErrInvalidConfig, c.MaxTime)
	}
	if c.OrderSpread < 0 {
		return fmt.Errorf("%w: negative order spread", ErrInvalidConfig)
	}
	if c.OrderCenter-c.OrderSpread < c.MinPrice {
		return fmt.Errorf("%w: limits can fall to %d, below min price %d",
			ErrInvalidConfig, c.OrderCenter-c.OrderSpread, c.MinPrice)
	}
	for i, cohort := range c.Population {
		if cohort.Count < 0 {
			return fmt.Errorf("%w: cohort %d has negative count", ErrInvalidConfig, i)
		}
		if !cohort.Side.Valid() {
			return fmt.Errorf("%w: cohort %d: %w", ErrInvalidConfig, i, common.ErrInvalidSide)
		}
		if cohort.Kind == trader.Player {
			return fmt.Errorf("%w: cohort %d: the player is enabled with Player", ErrInvalidConfig, i)
		}
		if _, err := trader.ParseKind(string(cohort.Kind)); err != nil {
			return fmt.Errorf("%w: cohort %d: %w", ErrInvalidConfig, i, err)
		}
	}
	return nil
}
