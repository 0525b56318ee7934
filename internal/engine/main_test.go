package engine

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// Order-level debug logs drown test output.
func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}
