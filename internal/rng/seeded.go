package rng

import "math/rand"

// Seeded is a deterministic generator for tests and replays
type Seeded struct {
	r *rand.Rand
}

// NewSeeded returns a generator seeded with the provided value
func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: rand.New(rand.NewSource(seed))} // nolint:gosec
}

// Intn returns a random number in [0, n)
func (s *Seeded) Intn(n int) int {
	return s.r.Intn(n)
}
