// Package render turns transition graphs and computed layouts into visual
// and machine-readable outputs.
//
// # Overview
//
// Two families of output are supported:
//
//   - Graphviz diagrams of the transition graph for debugging layouts:
//     [ToDOT] produces DOT text, [RenderSVG] and [RenderPNG] rasterize it.
//     Edge thickness scales with transition volume and backtrack loops are
//     drawn as a single double-headed edge, so a glance shows which pairs
//     the ordering pass will fight to keep adjacent.
//
//   - The chart artifact: [Artifact] wraps a computed [flow.Result] with
//     metadata and marshals to the JSON consumed by the trajectory chart
//     frontend.
//
// # Usage
//
//	g := flow.Collect(journeys)
//	result := flow.Compute(journeys, flow.Options{})
//
//	dot := render.ToDOT(g, result.ScreenOrder, render.Options{})
//	svg, err := render.RenderSVG(dot)
//
// [flow.Result]: github.com/uxlens/journeyflow/pkg/flow#Result
package render
