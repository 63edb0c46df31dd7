// Package seededrand is a tiny linear-congruential generator used wherever the league
// needs "random" choices that must replay exactly: picking a bye team, breaking ties
// between equally good pairing sets, and choosing home/away.
//
// math/rand is not used here because its sequence is an implementation detail of the Go
// release. The same seed must produce the same draws on every platform and in every
// client that re-implements the generator, so the arithmetic is spelled out: 64-bit
// integer math with a single division at the end.
package seededrand

// The classic ANSI C constants, modulus 2^31.
const (
	multiplier = 1103515245
	increment  = 12345
	modulus    = 1 << 31
)

// State is the generator's whole internal state. It is always in [0, 2^31).
type State uint32

// Seed converts any int64 seed (negative included) into a starting State.
func Seed(seed int64) State {
	s := seed % modulus
	if s < 0 {
		s += modulus
	}
	return State(s)
}

// Next advances the generator once and returns a value in [0,1) together with the new
// state. It is a pure function: the caller owns the state.
func Next(s State) (float64, State) {
	n := (uint64(s)*multiplier + increment) % modulus
	return float64(n) / modulus, State(n)
}

// Rand wraps a State for callers that just want a stream of draws.
// A Rand is not safe for concurrent use; create one per computation.
type Rand struct {
	state State
}

// New returns a generator positioned at Seed(seed).
func New(seed int64) *Rand {
	return &Rand{state: Seed(seed)}
}

// State reports the current state, so a computation can be resumed later.
func (r *Rand) State() State {
	return r.state
}

// Float64 returns the next value in [0,1).
func (r *Rand) Float64() float64 {
	v, next := Next(r.state)
	r.state = next
	return v
}

// Intn returns a uniform index in [0,n). It returns 0 when n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Shuffle permutes n elements in place with a Fisher-Yates walk from the end,
// calling swap for every exchange.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
