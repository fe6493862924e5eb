package calculation

import "math"

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// SeededRandom is a linear congruential generator with glibc constants.
// Each trial owns its own instance so that a seed fully determines the draws.
type SeededRandom struct {
	state uint64
}

// NewSeededRandom creates a generator. Negative seeds use their magnitude and a zero
// state is replaced by 1.
func NewSeededRandom(seed int64) *SeededRandom {
	r := &SeededRandom{}
	r.Reset(seed)
	return r
}

// Reset reseeds the generator
func (r *SeededRandom) Reset(seed int64) {
	if seed < 0 {
		seed = -seed
	}
	r.state = uint64(seed) % lcgModulus
	if r.state == 0 {
		r.state = 1
	}
}

// Next returns a uniform draw in [0, 1)
func (r *SeededRandom) Next() float64 {
	r.state = (lcgMultiplier*r.state + lcgIncrement) % lcgModulus
	return float64(r.state) / lcgModulus
}

// NextGaussian returns a standard normal draw using the Box-Muller transform
func (r *SeededRandom) NextGaussian() float64 {
	u1 := r.Next()
	for u1 == 0 {
		u1 = r.Next()
	}
	u2 := r.Next()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
