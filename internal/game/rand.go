package game

import "golang.org/x/exp/rand"

// Rand is the random source the engine draws tie-breaks from. Callers
// always supply it; the engine never touches a global source.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// CommandRand returns the source used for the seq-th command of a game with
// the given seed. Replaying a command log with the same seed reproduces
// every tie-break.
func CommandRand(seed uint64, seq int) *rand.Rand {
	return NewRand(seed ^ (uint64(seq)+1)*0x9E3779B97F4A7C15)
}
