package proptest

import (
	"os"
	"strconv"
	"testing"
	"time"
)

// Config controls how many trials a property runs and with which seed.
type Config struct {
	// NumTrials is the number of generated inputs. Zero means 100.
	NumTrials int

	// Seed fixes the generator seed. Zero picks one from the clock, unless
	// PROPTEST_SEED overrides it.
	Seed int64
}

// DefaultConfig returns the standard 100-trial configuration.
func DefaultConfig() Config {
	return Config{NumTrials: 100}
}

func effectiveSeed(cfg Config) int64 {
	if env := os.Getenv("PROPTEST_SEED"); env != "" {
		if seed, err := strconv.ParseInt(env, 10, 64); err == nil {
			return seed
		}
	}
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

// Check runs the property against cfg.NumTrials generated inputs. The first
// failing trial stops the run and reports the seed, which replays the exact
// input sequence via PROPTEST_SEED.
func Check(t *testing.T, name string, cfg Config, prop func(g *Generator) bool) {
	t.Helper()

	if cfg.NumTrials <= 0 {
		cfg.NumTrials = 100
	}

	seed := effectiveSeed(cfg)
	g := New(seed)

	for i := 0; i < cfg.NumTrials; i++ {
		if !prop(g) {
			t.Errorf("property %q failed on trial %d (rerun with PROPTEST_SEED=%d)",
				name, i+1, seed)
			return
		}
	}
}

// QuickCheck runs the property with the default configuration.
func QuickCheck(t *testing.T, name string, prop func(g *Generator) bool) {
	t.Helper()
	Check(t, name, DefaultConfig(), prop)
}
