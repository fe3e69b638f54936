package forecast

import "math/rand/v2"

// RandomSource supplies uniform draws in [0, 1).
type RandomSource interface {
	Float64() float64
}

// SystemSource draws from the process-wide generator. Safe for concurrent use.
type SystemSource struct{}

// Float64 implements RandomSource.
func (SystemSource) Float64() float64 { return rand.Float64() }

// NewSeededSource returns a deterministic source. It is not safe for
// concurrent use.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SequenceSource replays fixed values in order and wraps around. Useful for
// pinning the noise terms in tests and demos.
type SequenceSource struct {
	Values []float64
	next   int
}

// Float64 implements RandomSource. An empty sequence always yields 0.5,
// which makes every noise term zero.
func (s *SequenceSource) Float64() float64 {
	if len(s.Values) == 0 {
		return 0.5
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}
