package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestParseSeeds(t *testing.T) {
	seeds, err := parseSeeds("1-3, 7,9-9")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3, 7, 9}, seeds)

	for _, bad := range []string{"", " , ", "x", "3-1", "1-", "-4"} {
		_, err := parseSeeds(bad)
		assert.ErrorIs(t, err, errBadSeeds, bad)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "gym.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_time: 20\nreplenish: true\n"), 0o644))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, nil, 0o644))
	tapes := filepath.Join(dir, "tapes")

	require.NoError(t, run(cfgPath, envPath, "1-3", 2, "zic", tapes, false))

	entries, err := os.ReadDir(tapes)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	assert.Error(t, run(cfgPath, envPath, "1", 1, "martingale", "", false))
	assert.Error(t, run(filepath.Join(dir, "missing.yaml"), envPath, "1", 1, "idle", "", false))
}
