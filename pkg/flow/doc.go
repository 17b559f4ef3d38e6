// Package flow computes a one-dimensional screen ordering for journey
// trajectory charts.
//
// # Overview
//
// A trajectory chart plots every journey as a polyline over a step-indexed
// x-axis and a categorical screen y-axis (a parallel-coordinates / alluvial
// view). The readability of that chart depends almost entirely on the order
// of the screen axis: screens that users frequently transition between -
// especially in bidirectional loops - should sit next to each other so lines
// stay short and crossings stay rare.
//
// This package solves exactly that 1-D ordering problem. The pipeline is:
//
//	Journeys
//	    ↓
//	[Collect] transition counts + visit positions (one linear pass)
//	    ↓
//	[AssignBuckets] group screens by mean visit position, with
//	                affinity-based reassignment to neighboring buckets
//	    ↓
//	[OrderBucket] greedy chain construction within each bucket
//	    ↓
//	[Compute] concatenated global screen order + per-journey series
//
// # Heuristic, Not Exact
//
// The underlying problem - minimum linear arrangement weighted by edge
// strength - is NP-hard in general. The bucket optimizer is a deliberate
// greedy trade-off: it seeds a chain with the strongest-connected screen
// pair and grows it from both ends. It makes no claim of global optimality;
// an exact solver would be exponential and the charts it would improve are
// the ones nobody can read anyway.
//
// # Determinism
//
// Given the same journeys in the same input order, the engine produces the
// same order every time. All iteration happens over first-seen key order,
// never over Go map order, and every tie-break rule is pinned down (first
// candidate wins).
//
// # Tuning
//
// The bucket width and the loop-amplification constants in [Options] are
// empirically chosen values preserved from chart-tuning sessions. They are
// exposed as overridable fields rather than re-derived.
package flow
