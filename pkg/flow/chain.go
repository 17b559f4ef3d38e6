package flow

import "slices"

// PairWeight scores the connection between two screens for chain building.
//
// The tiers, from strongest to weakest:
//
//   - True loop (both directions observed): the combined count is amplified
//     by opts.LoopWeightBase + opts.LoopBalanceWeight*balance, where balance
//     is min/max of the two directional counts. A fully balanced loop -
//     equal traffic both ways, the signature of users bouncing between two
//     screens in confusion - gets the full 5x; a lopsided "loop" gets
//     closer to 3x.
//   - Strong one-way traffic (count ≥ opts.StrongPairThreshold): a smaller
//     opts.StrongPairBoost multiplier.
//   - Everything else: the raw combined count.
//
// The tiering deliberately foregrounds genuine back-and-forth loops over
// incidental one-way traffic.
func PairWeight(g *TransitionGraph, a, b string, opts Options) float64 {
	opts = opts.WithDefaults()

	ab, ba := g.Count(a, b), g.Count(b, a)
	total := float64(ab + ba)
	if total == 0 {
		return 0
	}

	if ab > 0 && ba > 0 {
		balance := float64(min(ab, ba)) / float64(max(ab, ba))
		return total * (opts.LoopWeightBase + opts.LoopBalanceWeight*balance)
	}
	if ab+ba >= opts.StrongPairThreshold {
		return total * opts.StrongPairBoost
	}
	return total
}

// OrderBucket permutes one bucket's screens so that strongly connected
// screens end up adjacent, heuristically minimizing line crossings in the
// rendered chart.
//
// The algorithm is greedy chain construction:
//
//  1. Buckets of ≤1 screen are returned unchanged.
//  2. The chain is seeded with the highest-weight pair found by an
//     exhaustive pairwise scan (O(n²), fine for bucket-sized n).
//  3. Each remaining screen is scored against the chain's head and tail;
//     the best-scoring screen attaches to whichever end scores higher.
//  4. Screens with zero weight to both ends are appended to the tail in
//     their original order.
//
// OrderBucket never fails: with no transition data at all it degrades to
// the input order. All tie-breaks take the first candidate in input order,
// so the result is deterministic.
func OrderBucket(g *TransitionGraph, screens []string, opts Options) []string {
	if len(screens) <= 1 {
		return slices.Clone(screens)
	}
	opts = opts.WithDefaults()

	// Seed with the strongest pair.
	var seedA, seedB int
	bestWeight := 0.0
	for i := 0; i < len(screens); i++ {
		for j := i + 1; j < len(screens); j++ {
			if w := PairWeight(g, screens[i], screens[j], opts); w > bestWeight {
				seedA, seedB, bestWeight = i, j, w
			}
		}
	}
	if bestWeight == 0 {
		// No transition data anywhere in the bucket.
		return slices.Clone(screens)
	}

	chain := []string{screens[seedA], screens[seedB]}
	remaining := make([]string, 0, len(screens)-2)
	for i, s := range screens {
		if i != seedA && i != seedB {
			remaining = append(remaining, s)
		}
	}

	for len(remaining) > 0 {
		head, tail := chain[0], chain[len(chain)-1]

		bestIdx := -1
		var bestHead, bestTail, bestScore float64
		for i, s := range remaining {
			hw := PairWeight(g, s, head, opts)
			tw := PairWeight(g, s, tail, opts)
			if score := max(hw, tw); score > bestScore {
				bestIdx, bestHead, bestTail, bestScore = i, hw, tw, score
			}
		}

		if bestIdx == -1 {
			// Nothing connects to either end anymore; append the rest in
			// their original order.
			chain = append(chain, remaining...)
			break
		}

		next := remaining[bestIdx]
		remaining = slices.Delete(remaining, bestIdx, bestIdx+1)
		if bestHead > bestTail {
			chain = append([]string{next}, chain...)
		} else {
			chain = append(chain, next)
		}
	}

	return chain
}
