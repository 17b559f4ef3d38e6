package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/uxlens/journeyflow/pkg/flow"
)

// Options configures transition graph rendering.
type Options struct {
	// Detailed includes visit counts and mean positions in node labels.
	// When false, only the screen key is shown.
	Detailed bool
}

// ToDOT converts a transition graph to Graphviz DOT format. The order slice
// (typically [flow.Result].ScreenOrder) fixes node emission order so output
// is stable; screens present in the graph but missing from order are
// appended in first-seen order.
//
// Backtrack loops are drawn as a single double-headed edge labeled with both
// directional counts. Edge thickness scales with transition volume.
func ToDOT(g *flow.TransitionGraph, order []string, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph journeys {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	keys := emitOrder(g, order)
	for _, key := range keys {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", key, nodeLabel(g, key, opts.Detailed))
	}

	buf.WriteString("\n")
	max := maxCount(g)
	emitted := make(map[[2]string]bool)
	for _, from := range keys {
		for _, to := range g.Successors(from) {
			if emitted[[2]string{from, to}] {
				continue
			}
			emitted[[2]string{from, to}] = true

			ab := g.Count(from, to)
			if g.IsLoop(from, to) {
				emitted[[2]string{to, from}] = true
				ba := g.Count(to, from)
				fmt.Fprintf(&buf, "  %q -> %q [dir=both, color=\"#d94f4f\", label=\"%d/%d\", penwidth=%.1f];\n",
					from, to, ab, ba, penwidth(ab+ba, max))
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=\"%d\", penwidth=%.1f];\n",
				from, to, ab, penwidth(ab, max))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// emitOrder merges the requested order with any graph screens it omits.
func emitOrder(g *flow.TransitionGraph, order []string) []string {
	inOrder := make(map[string]bool, len(order))
	for _, key := range order {
		inOrder[key] = true
	}

	merged := make([]string, 0, g.ScreenCount())
	for _, key := range order {
		merged = append(merged, key)
	}
	for _, key := range g.Keys() {
		if !inOrder[key] {
			merged = append(merged, key)
		}
	}
	return merged
}

func nodeLabel(g *flow.TransitionGraph, key string, detailed bool) string {
	if !detailed {
		return key
	}

	parts := []string{fmt.Sprintf("visits: %d", g.VisitCount(key))}
	if mean, ok := g.MeanPosition(key); ok {
		parts = append(parts, fmt.Sprintf("mean step: %.1f", mean))
	}
	return key + "\n" + strings.Join(parts, "\n")
}

func maxCount(g *flow.TransitionGraph) int {
	max := 0
	for _, from := range g.Keys() {
		for _, to := range g.Successors(from) {
			if c := g.Count(from, to); c > max {
				max = c
			}
		}
	}
	return max
}

// penwidth maps a transition count to a stroke width between 1 and 4.
func penwidth(count, max int) float64 {
	if max == 0 {
		return 1
	}
	return 1 + 3*float64(count)/float64(max)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG, normalizeViewBox)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG, nil)
}

func renderFormat(dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if post != nil {
		return post(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg element to a zero-origin viewBox
// with explicit pixel dimensions, which embeds cleanly in the web frontend.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
