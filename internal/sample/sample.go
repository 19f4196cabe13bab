package sample

import (
	"fmt"
	"math"
	"math/rand"
)

// Stream returns a deterministic random source for one generation stage.
// Every stage seeds as base+offset so re-running a single stage reproduces
// identical output regardless of how many draws other stages consumed.
func Stream(baseSeed, stageOffset int64) *rand.Rand {
	return rand.New(rand.NewSource(baseSeed + stageOffset))
}

// Weighted draws one item from population according to weights.
// Weights need not sum to 1; they are treated as relative masses.
// Panics if population and weights differ in length or total weight is zero:
// distribution tables are compiled-in and a mismatch is a programming error.
func Weighted[T any](r *rand.Rand, population []T, weights []float64) T {
	if len(population) != len(weights) {
		panic(fmt.Sprintf("sample: %d items but %d weights", len(population), len(weights)))
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		panic("sample: total weight is zero")
	}
	target := r.Float64() * total
	for i, w := range weights {
		target -= w
		if target < 0 {
			return population[i]
		}
	}
	return population[len(population)-1]
}

// WeightedN draws n items with replacement.
func WeightedN[T any](r *rand.Rand, population []T, weights []float64, n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = Weighted(r, population, weights)
	}
	return out
}

// Uniform draws one item with equal probability.
func Uniform[T any](r *rand.Rand, population []T) T {
	return population[r.Intn(len(population))]
}

// WithoutReplacement draws n distinct items. n is clamped to len(population).
func WithoutReplacement[T any](r *rand.Rand, population []T, n int) []T {
	if n > len(population) {
		n = len(population)
	}
	idx := r.Perm(len(population))[:n]
	out := make([]T, n)
	for i, j := range idx {
		out[i] = population[j]
	}
	return out
}

// Poisson draws from a Poisson distribution via Knuth's method.
// Fine for the small lambdas the generators use (< 100).
func Poisson(r *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= r.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

// LogNormal draws exp(N(mu, sigma)).
func LogNormal(r *rand.Rand, mu, sigma float64) float64 {
	return math.Exp(r.NormFloat64()*sigma + mu)
}

// NormalClamped draws N(mean, std) clamped to [lo, hi].
func NormalClamped(r *rand.Rand, mean, std, lo, hi float64) float64 {
	v := r.NormFloat64()*std + mean
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// IntBetween draws an integer in [lo, hi).
func IntBetween(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo)
}

// FloatBetween draws uniformly in [lo, hi).
func FloatBetween(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Bernoulli reports true with probability p.
func Bernoulli(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// Round2 rounds to two decimal places, the scale used for monetary amounts.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
