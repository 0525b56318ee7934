package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cdagym/internal/common"
	"cdagym/internal/session"
	"cdagym/internal/trader"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

type Cohort struct {
	Kind   string `yaml:"kind"`
	Side   string `yaml:"side"`
	Count  int    `yaml:"count"`
	Prefix string `yaml:"prefix"`
}

// Orders shapes the customer orders handed to traders.
type Orders struct {
	Center int `yaml:"center"`
	Spread int `yaml:"spread"`
}

type Config struct {
	MaxTime    int      `yaml:"max_time"`
	MinPrice   int      `yaml:"min_price"`
	MaxPrice   int      `yaml:"max_price"`
	Replenish  bool     `yaml:"replenish"`
	Seed       uint64   `yaml:"seed"`
	Orders     Orders   `yaml:"orders"`
	Player     bool     `yaml:"player"`
	Population []Cohort `yaml:"population"`

	Workers  uint   `yaml:"workers"`
	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		MaxTime:  180,
		MinPrice: 1,
		MaxPrice: 1000,
		Orders:   Orders{Center: 50, Spread: 10},
		Player:   true,
		Population: []Cohort{
			{Kind: "zip", Side: "bid", Count: 10, Prefix: "ZIP"},
			{Kind: "zip", Side: "ask", Count: 10, Prefix: "ZIP"},
		},
		Workers:  4,
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides the config from the environment.
// Priority: ENV > .env file > YAML > defaults
//
// An explicit envPath must exist; without one, a .env in the working directory
// is loaded if present.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("unable to load %s: %w", envPath, err)
		}
	} else {
		_ = godotenv.Load()
	}

	if err := envInt("CDA_MAX_TIME", &c.MaxTime); err != nil {
		return err
	}
	if err := envInt("CDA_MIN_PRICE", &c.MinPrice); err != nil {
		return err
	}
	if err := envInt("CDA_MAX_PRICE", &c.MaxPrice); err != nil {
		return err
	}
	if v := os.Getenv("CDA_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: CDA_SEED: %w", ErrInvalidConfig, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("CDA_REPLENISH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: CDA_REPLENISH: %w", ErrInvalidConfig, err)
		}
		c.Replenish = b
	}
	if v := os.Getenv("CDA_WORKERS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: CDA_WORKERS: %w", ErrInvalidConfig, err)
		}
		c.Workers = uint(n)
	}
	if v := os.Getenv("CDA_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	*dst = n
	return nil
}

// Session converts the file form into a session configuration.
func (c Config) Session() (session.Config, error) {
	out := session.Config{
		MaxTime:     c.MaxTime,
		MinPrice:    c.MinPrice,
		MaxPrice:    c.MaxPrice,
		Replenish:   c.Replenish,
		Seed:        c.Seed,
		OrderCenter: c.Orders.Center,
		OrderSpread: c.Orders.Spread,
		Player:      c.Player,
	}
	for i, cohort := range c.Population {
		kind, err := trader.ParseKind(cohort.Kind)
		if err != nil {
			return session.Config{}, fmt.Errorf("%w: population[%d]: %w", ErrInvalidConfig, i, err)
		}
		side, err := common.ParseSide(cohort.Side)
		if err != nil {
			return session.Config{}, fmt.Errorf("%w: population[%d]: %w", ErrInvalidConfig, i, err)
		}
		prefix := cohort.Prefix
		if prefix == "" {
			prefix = string(kind)
		}
		out.Population = append(out.Population, session.Cohort{
			Kind:   kind,
			Side:   side,
			Count:  cohort.Count,
			Prefix: prefix,
		})
	}
	return out, nil
}

func (c Config) Validate() error {
	sc, err := c.Session()
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
