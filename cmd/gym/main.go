package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"cdagym/internal/config"
	"cdagym/internal/session"
	"cdagym/internal/utils"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	envPath := flag.String("env", "", ".env file with CDA_* overrides")
	seeds := flag.String("seeds", "0", "Session seeds: comma separated values or ranges, e.g. 1-8,42")
	workers := flag.Uint("workers", 0, "Concurrent sessions (0 keeps the config value)")
	policyName := flag.String("policy", "idle", "Player policy: ['idle', 'giveaway', 'ziu', 'zic']")
	tapeDir := flag.String("tape-dir", "", "Write each session's trade tape as CSV here")
	pretty := flag.Bool("pretty", false, "Human readable logs")
	flag.Parse()

	if err := run(*configPath, *envPath, *seeds, *workers, *policyName, *tapeDir, *pretty); err != nil {
		log.Error().Err(err).Msg("gym failed")
		os.Exit(1)
	}
}

func run(configPath, envPath, seedSpec string, workers uint, policyName, tapeDir string, pretty bool) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if err := cfg.ApplyEnv(envPath); err != nil {
		return err
	}
	if err := utils.SetupLogger(cfg.LogLevel, pretty); err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	sc, err := cfg.Session()
	if err != nil {
		return err
	}
	policy, err := session.ParsePolicy(policyName)
	if err != nil {
		return err
	}
	seeds, err := parseSeeds(seedSpec)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	log.Info().
		Int("sessions", len(seeds)).
		Uint("workers", cfg.Workers).
		Str("policy", policyName).
		Msg("starting batch")

	sums, err := session.RunBatch(ctx, sc, seeds, session.BatchOptions{
		Workers: cfg.Workers,
		Policy:  policy,
		TapeDir: tapeDir,
	})
	if err != nil {
		return err
	}

	total, trades := 0, 0
	for _, sum := range sums {
		total += sum.Reward
		trades += sum.Trades
	}
	log.Info().
		Int("sessions", len(sums)).
		Int("reward", total).
		Float64("mean_reward", float64(total)/float64(len(sums))).
		Int("trades", trades).
		Msg("batch complete")
	return nil
}

var errBadSeeds = errors.New("bad seed list")

// parseSeeds expands "1-3,7" into [1 2 3 7].
func parseSeeds(spec string) ([]uint64, error) {
	var seeds []uint64
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.ParseUint(lo, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errBadSeeds, part)
		}
		last := first
		if isRange {
			if last, err = strconv.ParseUint(hi, 10, 64); err != nil || last < first {
				return nil, fmt.Errorf("%w: %q", errBadSeeds, part)
			}
		}
		for s := first; s <= last; s++ {
			seeds = append(seeds, s)
			if s == last {
				break
			}
		}
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: empty", errBadSeeds)
	}
	return seeds, nil
}
