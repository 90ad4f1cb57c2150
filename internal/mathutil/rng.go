package mathutil

// SeededRNG is a linear congruential generator used wherever the avatar
// runtime needs deterministic randomness (the blink scheduler, auto-look
// target sampling). A fixed seed must reproduce an identical sequence
// across runs, which rules out math/rand's global source.
type SeededRNG struct {
	state uint64
	m     uint64
	a     uint64
	c     uint64
}

// NewSeededRNG creates a generator seeded deterministically from seed.
func NewSeededRNG(seed int64) *SeededRNG {
	return &SeededRNG{
		state: uint64(seed),
		m:     0x80000000, // 2^31
		a:     1103515245,
		c:     12345,
	}
}

// Next returns the next value in [0, 1).
func (r *SeededRNG) Next() float64 {
	r.state = (r.a*r.state + r.c) % r.m
	return float64(r.state) / float64(r.m)
}

// NextFloat returns a value in [min, max).
func (r *SeededRNG) NextFloat(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// NextInt returns an integer in [min, max].
func (r *SeededRNG) NextInt(min, max int) int {
	return min + int(r.Next()*float64(max-min+1))
}
