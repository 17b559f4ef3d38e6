// Package pkg provides the core libraries for Journeyflow layout computation.
//
// # Overview
//
// Journeyflow turns users' screen-visit journeys into a linear screen
// ordering for step-indexed trajectory charts, placing frequently
// transitioned-between screens (especially bidirectional loops) next to each
// other. The pkg directory is organized into these areas:
//
//  1. [journey] - Input data model (journeys, steps, screen keys)
//  2. [flow] - The layout engine (transition graph, buckets, chain ordering)
//  3. [render] - Output artifacts (DOT/SVG/PNG graphs, JSON export)
//  4. [pipeline] - Orchestration (fetch → compute → render)
//  5. [cache], [store], [httputil] - Infrastructure (caching, persistence, backend client)
//
// # Architecture
//
// The typical data flow through Journeyflow:
//
//	Analytics Backend / journeys.json
//	         ↓
//	    [journey] package (parse + screen key extraction)
//	         ↓
//	    [flow] package (transition graph → buckets → chain ordering)
//	         ↓
//	    [render] package (JSON artifact, Graphviz views)
//	         ↓
//	    Trajectory chart / DOT/SVG/PNG output
//
// # Quick Start
//
// Compute a screen ordering from a journey export:
//
//	import (
//	    "github.com/uxlens/journeyflow/pkg/flow"
//	    "github.com/uxlens/journeyflow/pkg/journey"
//	)
//
//	journeys, _ := journey.ReadJourneysFile("journeys.json")
//	result := flow.Compute(journeys, flow.Options{})
//	fmt.Println(result.ScreenOrder)
//
// Run the full cached pipeline:
//
//	runner := pipeline.NewRunner(fileCache, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    JourneysFile: "journeys.json",
//	    Formats:      []string{"json", "svg"},
//	})
//
// # Main Packages
//
// [journey] - Journeys, steps, and canonical screen keys. A step's identity
// is its screen name plus optional stable identifier ("Home", "Home_4").
//
// [flow] - The deterministic layout engine. Builds a directed transition
// graph, groups screens into mean-position buckets with affinity
// reassignment, and orders each bucket by greedy chain construction with
// amplified loop weights.
//
// [render] - Graphviz DOT/SVG/PNG views of the transition graph and the
// JSON artifact consumed by the charting frontend.
//
// [pipeline] - The fetch → compute → render Runner with per-stage caching,
// shared by the CLI and the HTTP API.
//
// [cache] - Byte caches (file, Redis, null) plus the key scheme that ties
// cache entries to input hashes and tuning options.
//
// [store] - Report persistence (MongoDB, in-memory) for computed layouts.
//
// [httputil] - Retrying, response-caching client for the analytics backend.
//
// [config] - TOML configuration for the server, backends, and layout tuning.
//
// [errors] - Coded errors shared by CLI and API, with HTTP status mapping.
//
// [observability] - Hook registry for pipeline, cache, and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/flow/...     # Engine only
//	go test -run Example       # Examples only
//
// [journey]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/journey
// [flow]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/flow
// [render]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/cache
// [store]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/store
// [httputil]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/httputil
// [config]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/config
// [errors]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/uxlens/journeyflow/pkg/observability
package pkg
