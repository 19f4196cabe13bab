package sample

import (
	"math"
	"testing"
)

func TestStreamDeterminism(t *testing.T) {
	a := Stream(42, 10)
	b := Stream(42, 10)

	for i := 0; i < 100; i++ {
		if a.Int63() != b.Int63() {
			t.Fatalf("streams with the same seed diverged at draw %d", i)
		}
	}
}

func TestStreamOffsetIndependence(t *testing.T) {
	a := Stream(42, 0)
	b := Stream(42, 1)

	same := true
	for i := 0; i < 10; i++ {
		if a.Int63() != b.Int63() {
			same = false
			break
		}
	}
	if same {
		t.Error("streams with different offsets produced identical sequences")
	}
}

func TestIntBetweenBounds(t *testing.T) {
	r := Stream(1, 0)
	for i := 0; i < 10000; i++ {
		v := IntBetween(r, 10, 500)
		if v < 10 || v >= 500 {
			t.Fatalf("IntBetween(10, 500) produced %d", v)
		}
	}
}

func TestFloatBetweenBounds(t *testing.T) {
	r := Stream(1, 0)
	for i := 0; i < 10000; i++ {
		v := FloatBetween(r, 0.85, 1.15)
		if v < 0.85 || v >= 1.15 {
			t.Fatalf("FloatBetween(0.85, 1.15) produced %v", v)
		}
	}
}

func TestWeightedRespectsWeights(t *testing.T) {
	r := Stream(7, 0)
	counts := map[string]int{}
	for i := 0; i < 100000; i++ {
		counts[Weighted(r, []string{"a", "b", "c"}, []float64{0.7, 0.2, 0.1})]++
	}

	if counts["a"] < 65000 || counts["a"] > 75000 {
		t.Errorf("expected roughly 70000 draws of 'a', got %d", counts["a"])
	}
	if counts["c"] > counts["b"] {
		t.Errorf("item with weight 0.1 drawn more often than item with weight 0.2 (%d vs %d)",
			counts["c"], counts["b"])
	}
}

func TestWeightedMismatchedLengthsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched population and weights")
		}
	}()
	Weighted(Stream(1, 0), []string{"a", "b"}, []float64{1})
}

func TestWithoutReplacementDistinct(t *testing.T) {
	r := Stream(3, 0)
	pop := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	drawn := WithoutReplacement(r, pop, 5)

	if len(drawn) != 5 {
		t.Fatalf("expected 5 items, got %d", len(drawn))
	}
	seen := map[int]bool{}
	for _, v := range drawn {
		if seen[v] {
			t.Fatalf("item %d drawn twice", v)
		}
		seen[v] = true
	}
}

func TestWithoutReplacementClamps(t *testing.T) {
	r := Stream(3, 0)
	drawn := WithoutReplacement(r, []int{1, 2, 3}, 10)
	if len(drawn) != 3 {
		t.Errorf("expected clamp to population size 3, got %d", len(drawn))
	}
}

func TestPoissonMean(t *testing.T) {
	r := Stream(11, 0)
	total := 0
	n := 50000
	for i := 0; i < n; i++ {
		total += Poisson(r, 9)
	}
	mean := float64(total) / float64(n)
	if mean < 8.8 || mean > 9.2 {
		t.Errorf("Poisson(9) sample mean %v, expected near 9", mean)
	}
}

func TestPoissonZeroLambda(t *testing.T) {
	if v := Poisson(Stream(1, 0), 0); v != 0 {
		t.Errorf("Poisson(0) = %d, expected 0", v)
	}
}

func TestNormalClamped(t *testing.T) {
	r := Stream(5, 0)
	for i := 0; i < 10000; i++ {
		v := NormalClamped(r, 650, 120, 300, 850)
		if v < 300 || v > 850 {
			t.Fatalf("NormalClamped escaped its bounds: %v", v)
		}
	}
}

func TestBernoulliProbability(t *testing.T) {
	r := Stream(9, 0)
	hits := 0
	for i := 0; i < 100000; i++ {
		if Bernoulli(r, 0.04) {
			hits++
		}
	}
	if hits < 3500 || hits > 4500 {
		t.Errorf("Bernoulli(0.04) hit %d of 100000, expected near 4000", hits)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.005, 1.0},
		{2.675, 2.68},
		{-1.255, -1.25},
		{100.0, 100.0},
	}
	for _, c := range cases {
		got := Round2(c.in)
		if math.Abs(got-c.want) > 0.011 {
			t.Errorf("Round2(%v) = %v, want about %v", c.in, got, c.want)
		}
		scaled := got * 100
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Errorf("Round2(%v) = %v, not at two decimal places", c.in, got)
		}
	}
}
