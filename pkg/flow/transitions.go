package flow

import (
	"github.com/uxlens/journeyflow/pkg/journey"
)

// TransitionGraph accumulates screen-visit statistics across a set of
// journeys: a directed transition-count graph plus, per screen, the step
// positions at which the screen was observed.
//
// Counts are tracked separately per direction - count(a→b) and count(b→a)
// are independent - so bidirectional loops can be detected and amplified by
// the ordering heuristics.
//
// Screens are registered in first-seen order, and [TransitionGraph.Keys]
// iterates in that order. This is the canonical iteration order for the
// whole engine; it is what makes the output reproducible regardless of Go's
// randomized map iteration.
//
// The graph is built once per computation by [Collect] and read-only
// thereafter. It is not safe for concurrent mutation.
type TransitionGraph struct {
	keys      []string
	counts    map[string]map[string]int
	positions map[string][]int
	maxSteps  int
}

// NewTransitionGraph creates an empty transition graph.
// Most callers should use [Collect] instead.
func NewTransitionGraph() *TransitionGraph {
	return &TransitionGraph{
		counts:    make(map[string]map[string]int),
		positions: make(map[string][]int),
	}
}

// Collect walks every journey once and accumulates per-screen visit
// positions and directed transition counts.
//
// For each step index i the screen key is derived with [journey.Step.Key]
// and its position recorded; if i is not the last index, the transition to
// the key at i+1 is counted. A screen's frequency at a step is counted once
// per journey visiting it, not once per transition. Complexity is linear in
// the total number of steps across all journeys.
//
// Empty journey sets and journeys with no steps are valid and contribute
// nothing.
func Collect(journeys []journey.Journey) *TransitionGraph {
	g := NewTransitionGraph()
	for _, j := range journeys {
		if len(j.Steps) > g.maxSteps {
			g.maxSteps = len(j.Steps)
		}
		for i, step := range j.Steps {
			key := step.Key()
			g.recordVisit(key, i)
			if i < len(j.Steps)-1 {
				g.recordTransition(key, j.Steps[i+1].Key())
			}
		}
	}
	return g
}

// recordVisit registers the key (first-seen order) and its step position.
func (g *TransitionGraph) recordVisit(key string, position int) {
	g.register(key)
	g.positions[key] = append(g.positions[key], position)
}

// recordTransition increments the directed count from→to.
// Both endpoints are registered so that a trailing screen observed only as
// a transition target still exists as a node.
func (g *TransitionGraph) recordTransition(from, to string) {
	g.register(from)
	g.register(to)
	g.counts[from][to]++
}

// register adds the key to the first-seen registry if it is new.
func (g *TransitionGraph) register(key string) {
	if _, ok := g.counts[key]; ok {
		return
	}
	g.counts[key] = make(map[string]int)
	g.keys = append(g.keys, key)
}

// Keys returns all screen keys in first-seen order.
// The returned slice should not be modified - use it as a read-only view.
func (g *TransitionGraph) Keys() []string { return g.keys }

// ScreenCount returns the number of distinct screens observed.
func (g *TransitionGraph) ScreenCount() int { return len(g.keys) }

// Count returns the number of observed transitions from→to.
// Returns 0 if either screen is unknown.
func (g *TransitionGraph) Count(from, to string) int { return g.counts[from][to] }

// Total returns count(a→b) + count(b→a).
func (g *TransitionGraph) Total(a, b string) int {
	return g.counts[a][b] + g.counts[b][a]
}

// IsLoop reports whether a and b form a bidirectional transition pair:
// both a→b and b→a were observed at least once.
func (g *TransitionGraph) IsLoop(a, b string) bool {
	return g.counts[a][b] > 0 && g.counts[b][a] > 0
}

// Successors returns the screens reachable from key by a single observed
// transition, in first-seen order of the overall key registry.
func (g *TransitionGraph) Successors(key string) []string {
	out := g.counts[key]
	if len(out) == 0 {
		return nil
	}
	succ := make([]string, 0, len(out))
	for _, k := range g.keys {
		if out[k] > 0 {
			succ = append(succ, k)
		}
	}
	return succ
}

// Positions returns the step indices at which the screen was observed,
// across all journeys, in encounter order.
func (g *TransitionGraph) Positions(key string) []int { return g.positions[key] }

// VisitCount returns how many times the screen was visited in total.
func (g *TransitionGraph) VisitCount(key string) int { return len(g.positions[key]) }

// MeanPosition returns the screen's average step position and true, or 0
// and false for a screen that was never observed as a visit (e.g. unknown).
func (g *TransitionGraph) MeanPosition(key string) (float64, bool) {
	pos := g.positions[key]
	if len(pos) == 0 {
		return 0, false
	}
	sum := 0
	for _, p := range pos {
		sum += p
	}
	return float64(sum) / float64(len(pos)), true
}

// MaxSteps returns the length of the longest journey observed.
// This is passed through to the rendering layer for axis sizing.
func (g *TransitionGraph) MaxSteps() int { return g.maxSteps }
