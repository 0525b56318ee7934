package session

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"cdagym/internal/common"
	"cdagym/internal/engine"
	"cdagym/internal/trader"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotReset        = errors.New("session has not been reset")
	ErrSessionDone     = errors.New("session is over")
	ErrUnknownTrader   = errors.New("unknown trader")
	ErrDuplicateTrader = errors.New("duplicate trader id")
	ErrForeignAction   = errors.New("player action carries another trader's id")
)

// PlayerView is the player's private state, next to the public snapshot.
type PlayerView struct {
	ID       string
	Side     common.Side
	Order    common.Order // Pending customer order, valid if HasOrder
	HasOrder bool
	Balance  int
	Prices   common.PriceRange
}

type Observation struct {
	Snapshot common.Snapshot
	Player   PlayerView
}

type StepResult struct {
	Observation Observation
	// Change of the player's balance during the step.
	Reward int
	Done   bool
	Trades []common.Trade
	// Final balances per trader, only set once Done.
	Balances map[string]int
}

// Session runs one trading day: an exchange, a population of traders and a
// clock. A Session is not safe for concurrent use; run one per goroutine.
type Session struct {
	id  uuid.UUID
	cfg Config
	rng *rand.Rand

	exchange *engine.Exchange
	traders  map[string]trader.Trader
	ids      []string // Creation order

	time        int
	done        bool
	initialized bool
}

func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		id:  uuid.New(),
		cfg: cfg,
		rng: trader.NewSource(cfg.Seed),
	}, nil
}

func (s *Session) ID() uuid.UUID  { return s.id }
func (s *Session) Config() Config { return s.cfg }
func (s *Session) Time() int      { return s.time }
func (s *Session) Done() bool     { return s.done }

// TraderIDs lists traders in creation order.
func (s *Session) TraderIDs() []string { return slices.Clone(s.ids) }

func (s *Session) Trader(id string) (trader.Trader, bool) {
	t, ok := s.traders[id]
	return t, ok
}

// Reset builds a fresh exchange and population and rewinds the clock to 1.
// The random generator is not reseeded, so successive resets of one session
// produce different days.
func (s *Session) Reset() (Observation, error) {
	ex, err := engine.New(s.cfg.MinPrice, s.cfg.MaxPrice)
	if err != nil {
		return Observation{}, err
	}
	s.exchange = ex
	s.time = 1
	s.done = false

	if err := s.populate(); err != nil {
		return Observation{}, err
	}
	s.initialized = true

	log.Info().
		Stringer("session", s.id).
		Uint64("seed", s.cfg.Seed).
		Int("traders", len(s.ids)).
		Msg("session reset")

	return s.observe()
}

func (s *Session) populate() error {
	s.traders = make(map[string]trader.Trader)
	s.ids = nil

	if s.cfg.Player {
		side := common.Side(s.rng.IntN(2))
		if err := s.enroll(trader.Player, PlayerID, side); err != nil {
			return err
		}
	}

	counters := make(map[string]int)
	for _, cohort := range s.cfg.Population {
		for range cohort.Count {
			id := fmt.Sprintf("%s%d", cohort.Prefix, counters[cohort.Prefix])
			counters[cohort.Prefix]++
			if err := s.enroll(cohort.Kind, id, cohort.Side); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) enroll(kind trader.Kind, id string, side common.Side) error {
	if _, ok := s.traders[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTrader, id)
	}
	t, err := trader.New(kind, id, s.exchange.Prices(), s.rng)
	if err != nil {
		return err
	}
	t.Assign(s.customerOrder(id, side, 0))
	s.traders[id] = t
	s.ids = append(s.ids, id)
	return nil
}

// customerOrder draws a unit limit order around the configured center.
func (s *Session) customerOrder(id string, side common.Side, time int) common.Order {
	price := s.cfg.OrderCenter - s.cfg.OrderSpread + s.rng.IntN(2*s.cfg.OrderSpread+1)
	return common.NewOrder(id, side, price, 1, time)
}

// Step advances the session by one tick. Every trader, in a fresh random
// order, sees the same snapshot; then every trader acts in that same order and
// each resulting order is matched immediately. playerAction is passed to the
// player and may be nil.
func (s *Session) Step(playerAction *common.Order) (StepResult, error) {
	if !s.initialized {
		return StepResult{}, ErrNotReset
	}
	if s.done {
		return StepResult{}, ErrSessionDone
	}
	if playerAction != nil {
		if playerAction.TraderID != PlayerID {
			return StepResult{}, fmt.Errorf("%w: %q", ErrForeignAction, playerAction.TraderID)
		}
		// Checked before anyone trades so a rejected step leaves the book alone.
		if !playerAction.Side.Valid() {
			return StepResult{}, fmt.Errorf("player action: %w: %d", common.ErrInvalidSide, int(playerAction.Side))
		}
	}

	before := s.playerBalance()

	order := slices.Clone(s.ids)
	s.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	snapshot, err := s.exchange.Snapshot(s.time)
	if err != nil {
		return StepResult{}, err
	}
	for _, id := range order {
		s.traders[id].Update(snapshot)
	}

	var trades []common.Trade
	for _, id := range order {
		quote, ok := s.traders[id].Action(playerAction, s.time)
		if !ok {
			continue
		}
		trade, err := s.exchange.Process(quote, s.time)
		if err != nil {
			return StepResult{}, fmt.Errorf("process order of %s: %w", id, err)
		}
		if trade == nil {
			continue
		}
		if err := s.notify(*trade); err != nil {
			return StepResult{}, err
		}
		trades = append(trades, *trade)
	}

	if len(trades) > 0 {
		log.Debug().
			Stringer("session", s.id).
			Int("time", s.time).
			Int("trades", len(trades)).
			Msg("step traded")
	}

	if s.cfg.Replenish {
		s.replenish(order)
	}

	if s.time >= s.cfg.MaxTime {
		s.done = true
	}
	s.time++

	obs, err := s.observe()
	if err != nil {
		return StepResult{}, err
	}
	res := StepResult{
		Observation: obs,
		Reward:      s.playerBalance() - before,
		Done:        s.done,
		Trades:      trades,
	}
	if s.done {
		res.Balances = s.Balances()
		log.Info().
			Stringer("session", s.id).
			Int("trades", s.exchange.Trades()).
			Msg("session finished")
	}
	return res, nil
}

// notify tells both parties about the trade, once if they are the same trader.
func (s *Session) notify(trade common.Trade) error {
	parties := []string{trade.Party1}
	if trade.Party2 != trade.Party1 {
		parties = append(parties, trade.Party2)
	}
	for _, id := range parties {
		t, ok := s.traders[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTrader, id)
		}
		err := t.Notify(trade)
		if errors.Is(err, trader.ErrNoPendingOrder) {
			// A leftover order from a completed assignment filled. Nothing to book.
			log.Warn().Err(err).Stringer("trade", trade).Msg("trade for trader without order")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) replenish(ids []string) {
	for _, id := range ids {
		t := s.traders[id]
		if _, ok := t.Pending(); ok {
			continue
		}
		t.Assign(s.customerOrder(id, t.Side(), s.time))
	}
}

func (s *Session) observe() (Observation, error) {
	snapshot, err := s.exchange.Snapshot(s.time)
	if err != nil {
		return Observation{}, err
	}
	obs := Observation{Snapshot: snapshot}
	if p, ok := s.traders[PlayerID]; ok {
		order, has := p.Pending()
		obs.Player = PlayerView{
			ID:       PlayerID,
			Side:     p.Side(),
			Order:    order,
			HasOrder: has,
			Balance:  p.Balance(),
			Prices:   s.exchange.Prices(),
		}
	}
	return obs, nil
}

func (s *Session) playerBalance() int {
	if p, ok := s.traders[PlayerID]; ok {
		return p.Balance()
	}
	return 0
}

// Balances maps every trader id to its accumulated surplus.
func (s *Session) Balances() map[string]int {
	out := make(map[string]int, len(s.traders))
	for id, t := range s.traders {
		out[id] = t.Balance()
	}
	return out
}

// Tape returns the exchange's event record, nil before the first Reset.
func (s *Session) Tape() []common.Event {
	if s.exchange == nil {
		return nil
	}
	return s.exchange.Tape()
}

// DumpTape writes the trade tape as CSV.
func (s *Session) DumpTape(w io.Writer) error {
	if s.exchange == nil {
		return ErrNotReset
	}
	return s.exchange.DumpTape(w)
}
