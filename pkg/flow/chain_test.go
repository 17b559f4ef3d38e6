package flow

import (
	"slices"
	"testing"

	"github.com/uxlens/journeyflow/pkg/journey"
)

func TestPairWeight_Tiers(t *testing.T) {
	g := Collect([]journey.Journey{
		// A↔B balanced loop: 2 each way.
		{Name: "loop", Steps: steps("A", "B", "A", "B", "A")},
		// C→D strong one-way: 3 transitions.
		{Name: "c1", Steps: steps("C", "D")},
		{Name: "c2", Steps: steps("C", "D")},
		{Name: "c3", Steps: steps("C", "D")},
		// E→F incidental: once.
		{Name: "e", Steps: steps("E", "F")},
	})

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"balanced loop gets 5x", "A", "B", 4 * (3 + 2*1.0)},
		{"strong one-way gets 1.5x", "C", "D", 3 * 1.5},
		{"incidental traffic at face value", "E", "F", 1},
		{"no connection", "A", "F", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PairWeight(g, tt.a, tt.b, Options{}); got != tt.want {
				t.Errorf("PairWeight(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPairWeight_Symmetric(t *testing.T) {
	g := Collect([]journey.Journey{
		{Name: "U1", Steps: steps("A", "B", "A")},
	})

	if ab, ba := PairWeight(g, "A", "B", Options{}), PairWeight(g, "B", "A", Options{}); ab != ba {
		t.Errorf("PairWeight not symmetric: %v vs %v", ab, ba)
	}
}

func TestPairWeight_LopsidedLoop(t *testing.T) {
	// A→B 4 times, B→A once: balance 0.25, amplification 3.5x.
	g := Collect([]journey.Journey{
		{Name: "U1", Steps: steps("A", "B", "A", "B")},
		{Name: "U2", Steps: steps("A", "B")},
		{Name: "U3", Steps: steps("A", "B")},
	})

	want := 5 * (3 + 2*0.25)
	if got := PairWeight(g, "A", "B", Options{}); got != want {
		t.Errorf("PairWeight(A, B) = %v, want %v", got, want)
	}
}

func TestOrderBucket_TinyBucketsUnchanged(t *testing.T) {
	g := NewTransitionGraph()

	if got := OrderBucket(g, nil, Options{}); len(got) != 0 {
		t.Errorf("OrderBucket(nil) = %v, want empty", got)
	}
	if got := OrderBucket(g, []string{"A"}, Options{}); !slices.Equal(got, []string{"A"}) {
		t.Errorf("OrderBucket([A]) = %v, want [A]", got)
	}
}

func TestOrderBucket_LoopPairAdjacent(t *testing.T) {
	// D is heavily trafficked one-way, but the A↔B loop must win the seed.
	g := Collect([]journey.Journey{
		{Name: "U1", Steps: steps("A", "B", "A")},
		{Name: "c1", Steps: steps("C", "D")},
		{Name: "c2", Steps: steps("C", "D")},
	})

	order := OrderBucket(g, []string{"A", "C", "B", "D"}, Options{})

	ai, bi := slices.Index(order, "A"), slices.Index(order, "B")
	if ai == -1 || bi == -1 || abs(ai-bi) != 1 {
		t.Errorf("A and B not adjacent in %v", order)
	}
}

func TestOrderBucket_NoTransitionsKeepsInputOrder(t *testing.T) {
	g := NewTransitionGraph()
	in := []string{"C", "A", "B"}

	if got := OrderBucket(g, in, Options{}); !slices.Equal(got, in) {
		t.Errorf("OrderBucket(%v) = %v, want input order", in, got)
	}
}

func TestOrderBucket_ZeroWeightScreensAppendedInOrder(t *testing.T) {
	// A↔B connect; X, Y, Z are isolated and must trail in input order.
	g := Collect([]journey.Journey{
		{Name: "U1", Steps: steps("A", "B", "A")},
	})

	order := OrderBucket(g, []string{"X", "A", "Y", "B", "Z"}, Options{})

	if len(order) != 5 {
		t.Fatalf("got %d screens, want 5", len(order))
	}
	tail := order[2:]
	if !slices.Equal(tail, []string{"X", "Y", "Z"}) {
		t.Errorf("isolated screens = %v, want [X Y Z] in input order", tail)
	}
}

func TestOrderBucket_IsPermutation(t *testing.T) {
	g := Collect([]journey.Journey{
		{Name: "U1", Steps: steps("A", "B", "C", "D", "E", "A", "C")},
		{Name: "U2", Steps: steps("E", "D", "C", "B", "A")},
	})

	in := []string{"A", "B", "C", "D", "E"}
	order := OrderBucket(g, in, Options{})

	sorted := slices.Clone(order)
	slices.Sort(sorted)
	wantSorted := slices.Clone(in)
	slices.Sort(wantSorted)
	if !slices.Equal(sorted, wantSorted) {
		t.Errorf("OrderBucket(%v) = %v, not a permutation", in, order)
	}
}

func TestOrderBucket_GrowsFromBothEnds(t *testing.T) {
	// Chain A-B (loop, seeds), C attaches to B, D attaches to A: the result
	// must be a path D-A-B-C or its tail-grown equivalent, never interleave.
	g := Collect([]journey.Journey{
		{Name: "U1", Steps: steps("A", "B", "A", "B")},
		{Name: "U2", Steps: steps("B", "C", "B", "C")},
		{Name: "U3", Steps: steps("D", "A", "D", "A")},
	})

	order := OrderBucket(g, []string{"A", "B", "C", "D"}, Options{})

	ai, bi := slices.Index(order, "A"), slices.Index(order, "B")
	ci, di := slices.Index(order, "C"), slices.Index(order, "D")
	if abs(ai-bi) != 1 {
		t.Errorf("A,B not adjacent in %v", order)
	}
	if abs(bi-ci) != 1 {
		t.Errorf("B,C not adjacent in %v", order)
	}
	if abs(ai-di) != 1 {
		t.Errorf("A,D not adjacent in %v", order)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
