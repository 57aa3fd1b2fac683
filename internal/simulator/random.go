package simulator

import (
	"math/rand"
	"time"
)

// RandomSource yields uniform draws in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a time-seeded source. It is not safe for
// concurrent use; each session owns its own.
func NewRandomSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SequenceSource replays fixed draws in order and wraps around. It exists as
// a test seam: tests in this and dependent packages inject it to make walks
// and series deterministic. Production code uses NewRandomSource.
type SequenceSource struct {
	draws []float64
	next  int
}

func NewSequenceSource(draws ...float64) *SequenceSource {
	if len(draws) == 0 {
		draws = []float64{0.5}
	}
	return &SequenceSource{draws: draws}
}

func (s *SequenceSource) Float64() float64 {
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v
}

// Draws reports how many values have been consumed.
func (s *SequenceSource) Draws() int {
	return s.next
}
