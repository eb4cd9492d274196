// Package pkg provides the libraries behind vlanimate, a compiler for
// animated charts.
//
// # Overview
//
// An animated chart is a declarative chart with a "time" encoding channel
// and animation selections. vlanimate compiles it in two steps: a base
// compiler turns the static chart into a reactive dataflow graph, and the
// animation compiler adds the signals and datasets that play it (a clock,
// keyframe datasets, tweens, pauses, enter/exit handling and selection
// bridges). The packages are organized as follows:
//
//  1. [spec] and [vega] - Chart and dataflow graph models
//  2. [elaborate] and [compile] - The two compiler passes
//  3. [vegalite] - Base compiler adapters
//  4. [depgraph] and [timeline] - Analysis of compiled graphs
//  5. [pipeline] - Orchestration (elaborate → compile → check) with caching
//
// # Architecture
//
//	chart.json
//	    ↓
//	[spec] parse into units, layers and vertical concatenations
//	    ↓
//	[elaborate] fill in time scales, keys and animation selections
//	    ↓
//	[vegalite] compile the static chart to a base graph
//	    ↓
//	[compile] add the animation machinery scope by scope
//	    ↓
//	[depgraph] check that every reference resolves
//	    ↓
//	dataflow graph JSON
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, doc, pipeline.Options{Check: true})
//	if err != nil {
//	    return err
//	}
//	vega.WriteFile(res.Graph, "chart.vg.json")
//
// # Main Packages
//
// ## Models
//
// [spec] - The chart model. Spec variants (unit, layer, vconcat) are decided
// once at decode time; unknown properties pass through untouched.
//
// [vega] - The dataflow graph model with merge by name and reference
// rewriting.
//
// ## Compiler
//
// [elaborate] - Resolves every implicit animation default so the compiler
// sees explicit values.
//
// [compile] - Splits a chart into independently clocked scopes and emits
// their clock, keyframe, interpolation, rescale, selection and enter/exit
// components.
//
// [vegalite] - The in-process reference base compiler and an adapter around
// an external compiler command.
//
// ## Analysis
//
// [depgraph] - Signal, data and scale dependency graph of a compiled graph,
// unresolved reference checks, DOT and SVG output.
//
// [timeline] - Reference simulator of the emitted clock: band and linear
// time scales, easing, pauses and keyed frame joins.
//
// [datasource] - Loads chart data from inline values, files or URLs.
//
// ## Infrastructure
//
// [pipeline] - Runner used by the CLI and the HTTP server.
//
// [cache] - File, Redis and null caches for elaborated charts, compiled
// graphs and remote data.
//
// [store] - Persistence of compiled graphs (memory, MongoDB).
//
// [config] - TOML configuration.
//
// [observability] - Hooks for pipeline, cache and data source events.
//
// [errors] - Structured error codes.
//
// # Testing
//
//	go test ./...                                   # All tests
//	VLANIMATE_TEST_REDIS_URL=redis://localhost:6379 go test ./pkg/cache
//	VLANIMATE_TEST_MONGO_URI=mongodb://localhost go test ./pkg/store
//
// [spec]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/spec
// [vega]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/vega
// [elaborate]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/elaborate
// [compile]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/compile
// [vegalite]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/vegalite
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/depgraph
// [timeline]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/timeline
// [datasource]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/datasource
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/vlanimate/pkg/errors
package pkg
