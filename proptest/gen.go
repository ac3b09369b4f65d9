// Package proptest is a small property-based testing helper. A property is a
// predicate that must hold for any generated input; Check runs it against many
// seeded random inputs and reports the seed on failure so the run can be
// replayed with PROPTEST_SEED.
package proptest

import (
	"math/rand"
	"time"
)

const (
	lower  = "abcdefghijklmnopqrstuvwxyz"
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits = "0123456789"
)

// Generator produces random values from a single stored seed, so a failing
// trial is reproducible from the seed alone.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// New returns a Generator for the given seed. A zero seed picks one from the
// clock.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed reports the seed this generator was created with.
func (g *Generator) Seed() int64 { return g.seed }

// Intn returns a random int in [0, n). Panics if n <= 0.
func (g *Generator) Intn(n int) int { return g.rng.Intn(n) }

// IntRange returns a random int in [min, max] inclusive.
func (g *Generator) IntRange(min, max int) int {
	if min > max {
		panic("proptest: IntRange min > max")
	}
	if min == max {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}

// Bool returns true or false with equal probability.
func (g *Generator) Bool() bool { return g.rng.Intn(2) == 1 }

// stringFrom builds a string of length [0, maxLen] from the charset.
func (g *Generator) stringFrom(charset string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	b := make([]byte, g.Intn(maxLen+1))
	for i := range b {
		b[i] = charset[g.Intn(len(charset))]
	}
	return string(b)
}

// String returns a printable ASCII string of length [0, maxLen].
func (g *Generator) String(maxLen int) string {
	const printable = lower + upper + digits + " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	return g.stringFrom(printable, maxLen)
}

// StringAlphaLower returns a lowercase alphabetic string of length [0, maxLen].
func (g *Generator) StringAlphaLower(maxLen int) string {
	return g.stringFrom(lower, maxLen)
}

// StringAlphaNum returns an alphanumeric string of length [0, maxLen].
func (g *Generator) StringAlphaNum(maxLen int) string {
	return g.stringFrom(lower+upper+digits, maxLen)
}

// IdentifierLower returns a lowercase identifier of length [1, maxLen]: a
// letter or underscore followed by letters, digits, or underscores.
func (g *Generator) IdentifierLower(maxLen int) string {
	if maxLen < 1 {
		maxLen = 1
	}
	const (
		head = lower + "_"
		body = lower + digits + "_"
	)
	b := make([]byte, g.IntRange(1, maxLen))
	b[0] = head[g.Intn(len(head))]
	for i := 1; i < len(b); i++ {
		b[i] = body[g.Intn(len(body))]
	}
	return string(b)
}

// UniqueIdentifiers returns up to n distinct lowercase identifiers. Fewer may
// come back when maxLen is too small to admit n distinct values.
func (g *Generator) UniqueIdentifiers(n, maxLen int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for attempts := 0; attempts < n*10 && len(out) < n; attempts++ {
		id := g.IdentifierLower(maxLen)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Pick returns a random element of slice. Panics on an empty slice.
func Pick[T any](g *Generator, slice []T) T {
	if len(slice) == 0 {
		panic("proptest: Pick from empty slice")
	}
	return slice[g.Intn(len(slice))]
}

// Shuffle returns a shuffled copy of slice.
func Shuffle[T any](g *Generator, slice []T) []T {
	out := make([]T, len(slice))
	copy(out, slice)
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
