package flow

import (
	"encoding/json"
	"fmt"

	"github.com/uxlens/journeyflow/pkg/journey"
)

// Default tuning values. The bucket width and the loop-amplification
// constants were chosen empirically during chart tuning; they are preserved
// as named, overridable values rather than re-derived.
const (
	// DefaultBucketWidth is the number of step positions per position bucket.
	DefaultBucketWidth = 3

	// DefaultMinBucketAffinity is the minimum connection strength required
	// to pull a screen out of its base bucket.
	DefaultMinBucketAffinity = 2

	// DefaultLoopWeightBase is the base multiplier for bidirectional pairs.
	DefaultLoopWeightBase = 3.0

	// DefaultLoopBalanceWeight scales the balance factor of a loop; a fully
	// balanced loop reaches DefaultLoopWeightBase + DefaultLoopBalanceWeight.
	DefaultLoopBalanceWeight = 2.0

	// DefaultStrongPairThreshold is the one-way transition count at which
	// the strong-pair boost applies.
	DefaultStrongPairThreshold = 3

	// DefaultStrongPairBoost is the multiplier for strong one-way pairs.
	DefaultStrongPairBoost = 1.5

	// MinAxisSteps is the floor for the reported step-axis size, so the
	// chart keeps a usable axis even with zero journeys.
	MinAxisSteps = 1
)

// Options tunes the layout engine. The zero value means "use defaults";
// individual fields can be overridden independently.
type Options struct {
	// BucketWidth is the number of step positions grouped into one bucket.
	BucketWidth int `json:"bucket_width,omitempty"`

	// MinBucketAffinity is the minimum summed connection strength required
	// for affinity-based bucket reassignment.
	MinBucketAffinity int `json:"min_bucket_affinity,omitempty"`

	// LoopWeightBase is the base amplification for bidirectional pairs.
	LoopWeightBase float64 `json:"loop_weight_base,omitempty"`

	// LoopBalanceWeight scales the loop balance factor (min/max of the two
	// directional counts).
	LoopBalanceWeight float64 `json:"loop_balance_weight,omitempty"`

	// StrongPairThreshold is the combined count at which one-way pairs get
	// the strong-pair boost.
	StrongPairThreshold int `json:"strong_pair_threshold,omitempty"`

	// StrongPairBoost is the multiplier for strong one-way pairs.
	StrongPairBoost float64 `json:"strong_pair_boost,omitempty"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
// Callers deriving cache keys from options should normalize through this
// first, so explicit defaults and the zero value key identically.
func (o Options) WithDefaults() Options {
	if o.BucketWidth <= 0 {
		o.BucketWidth = DefaultBucketWidth
	}
	if o.MinBucketAffinity <= 0 {
		o.MinBucketAffinity = DefaultMinBucketAffinity
	}
	if o.LoopWeightBase <= 0 {
		o.LoopWeightBase = DefaultLoopWeightBase
	}
	if o.LoopBalanceWeight <= 0 {
		o.LoopBalanceWeight = DefaultLoopBalanceWeight
	}
	if o.StrongPairThreshold <= 0 {
		o.StrongPairThreshold = DefaultStrongPairThreshold
	}
	if o.StrongPairBoost <= 0 {
		o.StrongPairBoost = DefaultStrongPairBoost
	}
	return o
}

// Point is one plotted step of a journey: the step index on the x-axis and
// the screen key on the categorical y-axis. It serializes as a two-element
// tuple, the form charting libraries consume:
//
//	[3, "Checkout"]
type Point struct {
	Step   int
	Screen string
}

// MarshalJSON emits the point as a [stepIndex, screenKey] tuple.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Step, p.Screen})
}

// UnmarshalJSON accepts the [stepIndex, screenKey] tuple form.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.Step); err != nil {
		return fmt.Errorf("point step: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Screen); err != nil {
		return fmt.Errorf("point screen: %w", err)
	}
	return nil
}

// Series is one journey re-expressed for plotting: the same screens in the
// same visit order, with each step as a [Point]. The mapping is direct and
// stable - it reuses the same key extraction as the ordering itself.
type Series struct {
	Name   string  `json:"name" bson:"name"`
	Points []Point `json:"points" bson:"points"`
}

// Result is the engine's externally visible artifact.
type Result struct {
	// ScreenOrder is the categorical screen-axis order: every distinct
	// screen key observed in any journey, exactly once.
	ScreenOrder []string `json:"screen_order" bson:"screen_order"`

	// MaxSteps bounds the step axis; it is the longest journey length,
	// floored at MinAxisSteps.
	MaxSteps int `json:"max_steps" bson:"max_steps"`

	// Series holds one plottable series per input journey, in input order.
	Series []Series `json:"series" bson:"series"`
}

// Compute runs the full layout pipeline over the journeys and returns the
// global screen order plus plotting data.
//
// Compute is pure: it has no I/O, retains no state across calls, and is
// deterministic for identical input (including input order). It never fails
// on malformed or sparse input - empty journey sets, single-step journeys,
// screens without transitions, and weight ties all degrade to well-defined
// fallback orderings. A step missing both name and id yields a blank screen
// category, which signals an upstream data quality problem rather than an
// engine defect.
func Compute(journeys []journey.Journey, opts Options) Result {
	opts = opts.WithDefaults()

	g := Collect(journeys)
	order := make([]string, 0, g.ScreenCount())
	for _, b := range AssignBuckets(g, opts) {
		order = append(order, OrderBucket(g, b.Screens, opts)...)
	}

	series := make([]Series, len(journeys))
	for i, j := range journeys {
		points := make([]Point, len(j.Steps))
		for s, step := range j.Steps {
			points[s] = Point{Step: s, Screen: step.Key()}
		}
		series[i] = Series{Name: j.Name, Points: points}
	}

	return Result{
		ScreenOrder: order,
		MaxSteps:    max(g.MaxSteps(), MinAxisSteps),
		Series:      series,
	}
}
