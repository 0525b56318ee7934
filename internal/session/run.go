package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cdagym/internal/common"
	"cdagym/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// Summary is the outcome of one complete session.
type Summary struct {
	SessionID uuid.UUID
	Seed      uint64
	Steps     int
	Reward    int // Player's total
	Trades    int
	Balances  map[string]int
}

// Run resets the session and steps it to the end, asking policy for the
// player's order each tick. A nil policy idles.
func (s *Session) Run(ctx context.Context, policy Policy) (Summary, error) {
	if policy == nil {
		policy = IdlePolicy
	}
	obs, err := s.Reset()
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{SessionID: s.id, Seed: s.cfg.Seed}
	for {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}

		var action *common.Order
		if obs.Player.ID != "" {
			action = policy(obs, s.rng)
		}
		res, err := s.Step(action)
		if err != nil {
			return Summary{}, fmt.Errorf("step %d: %w", s.time, err)
		}
		sum.Steps++
		sum.Reward += res.Reward
		sum.Trades += len(res.Trades)
		obs = res.Observation

		if res.Done {
			sum.Balances = res.Balances
			return sum, nil
		}
	}
}

type BatchOptions struct {
	Workers uint
	Policy  Policy
	// Write each session's trade tape to <TapeDir>/<session id>.csv if set.
	TapeDir string
}

type batchJob struct {
	index int
	seed  uint64
}

// RunBatch plays one session per seed on a worker pool. Summaries come back in
// seed order. The first failing session cancels the rest.
func RunBatch(ctx context.Context, cfg Config, seeds []uint64, opts BatchOptions) ([]Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.TapeDir != "" {
		if err := os.MkdirAll(opts.TapeDir, 0o755); err != nil {
			return nil, fmt.Errorf("unable to create tape dir: %w", err)
		}
	}

	summaries := make([]Summary, len(seeds))
	t, ctx := tomb.WithContext(ctx)
	pool := utils.NewWorkerPool(opts.Workers)

	work := func(_ *tomb.Tomb, task any) error {
		job := task.(batchJob)
		c := cfg
		c.Seed = job.seed

		s, err := New(c)
		if err != nil {
			return err
		}
		sum, err := s.Run(ctx, opts.Policy)
		if err != nil {
			return fmt.Errorf("session seed %d: %w", job.seed, err)
		}
		if opts.TapeDir != "" {
			if err := s.writeTape(opts.TapeDir); err != nil {
				return err
			}
		}
		summaries[job.index] = sum

		log.Info().
			Stringer("session", sum.SessionID).
			Uint64("seed", job.seed).
			Int("reward", sum.Reward).
			Int("trades", sum.Trades).
			Msg("session complete")
		return nil
	}

	t.Go(func() error {
		pool.Setup(t, work)
		defer pool.Close()
		for i, seed := range seeds {
			if err := pool.AddTask(t, batchJob{index: i, seed: seed}); err != nil {
				return nil
			}
		}
		return nil
	})

	if err := t.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *Session) writeTape(dir string) error {
	path := filepath.Join(dir, s.id.String()+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create tape file: %w", err)
	}
	if err := s.DumpTape(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
