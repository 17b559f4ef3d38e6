package flow

import (
	"maps"
	"math"
	"slices"
)

// Bucket is an ordered group of screens sharing a coarse position band.
// Index is floor(meanPosition / bucketWidth) for the screens originally
// assigned to it; screens pulled in by affinity reassignment may have a
// neighboring base index.
type Bucket struct {
	Index   int
	Screens []string
}

// AssignBuckets groups screens into coarse position buckets and returns the
// buckets in ascending index order.
//
// Each screen's base bucket is floor(meanPosition / opts.BucketWidth). On
// top of that, a reassignment rule keeps short backtrack loops together:
// for each screen, processed in first-seen order, the buckets at base-1,
// base, and base+1 are scored by summed connection strength to the members
// already placed there. Bidirectional transitions between the screen and a
// member count double (2 * (a→b + b→a)); one-way transitions count at face
// value. The screen goes to the strongest candidate, falling back to its
// base bucket when the best strength is below opts.MinBucketAffinity. Ties
// favor the base bucket, then the lower index.
//
// A screen with no transitions to any neighboring bucket always lands in
// its base bucket - a singleton assignment, never an error. Because the
// scoring only sees previously processed screens, the processing order is
// part of the contract: it is the first-seen order of the key registry,
// which makes the result reproducible for identical input.
func AssignBuckets(g *TransitionGraph, opts Options) []Bucket {
	opts = opts.WithDefaults()

	assigned := make(map[int][]string)
	for _, key := range g.Keys() {
		mean, ok := g.MeanPosition(key)
		if !ok {
			mean = 0
		}
		base := int(math.Floor(mean / float64(opts.BucketWidth)))

		best, bestStrength := base, g.bucketAffinity(key, assigned[base])
		for _, candidate := range []int{base - 1, base + 1} {
			if candidate < 0 {
				continue
			}
			if s := g.bucketAffinity(key, assigned[candidate]); s > bestStrength {
				best, bestStrength = candidate, s
			}
		}
		if bestStrength < opts.MinBucketAffinity {
			best = base
		}
		assigned[best] = append(assigned[best], key)
	}

	indices := slices.Sorted(maps.Keys(assigned))
	buckets := make([]Bucket, 0, len(indices))
	for _, idx := range indices {
		buckets = append(buckets, Bucket{Index: idx, Screens: assigned[idx]})
	}
	return buckets
}

// bucketAffinity sums the connection strength between key and the screens
// already placed in a candidate bucket. A bidirectional pair counts double
// the combined one-way sum.
func (g *TransitionGraph) bucketAffinity(key string, members []string) int {
	strength := 0
	for _, m := range members {
		total := g.Total(key, m)
		if g.IsLoop(key, m) {
			total *= 2
		}
		strength += total
	}
	return strength
}

// BucketIndexOf returns a lookup from screen key to assigned bucket index.
func BucketIndexOf(buckets []Bucket) map[string]int {
	m := make(map[string]int)
	for _, b := range buckets {
		for _, s := range b.Screens {
			m[s] = b.Index
		}
	}
	return m
}
