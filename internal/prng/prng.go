// Package prng implements the seeded pseudo-random step function shared by
// the live play engine and the replay verifier. The exact 32-bit integer
// arithmetic is the linchpin of replay verification: given the same seed and
// call sequence, the output is bit-identical across platforms.
package prng

const increment = 0x6D2B79F5

// Step advances a 32-bit state by one round and derives a float in [0,1).
// The mixing is mulberry32: add a constant, two xorshift/multiply rounds,
// final shift. Do not "simplify" any of it.
func Step(state uint32) (uint32, float64) {
	state += increment
	t := state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return state, float64(t^(t>>14)) / (1 << 32)
}

// Source threads PRNG state through calls explicitly, so the server can run
// many concurrent independent replays with no shared mutable state.
type Source struct {
	state uint32
}

func New(seed uint32) *Source {
	return &Source{state: seed}
}

// Float returns the next value in [0,1) and advances the state.
func (s *Source) Float() float64 {
	var f float64
	s.state, f = Step(s.state)
	return f
}

func (s *Source) State() uint32 {
	return s.state
}
