// Package depgraph extracts the references between the named parts of a
// compiled dataflow graph and checks that every one of them resolves.
//
// # References
//
// A compiled graph names four kinds of things: datasets, signals, scales and
// marks. They refer to each other through structural fields (a dataset's
// source, a mark's from, a scale's data-driven domain) and through
// expressions, where signals appear as bare identifiers, datasets as the
// first argument of data('name') and similar functions, and scales as the
// first argument of scale('name', ...), invert, bandwidth, domain and range.
//
// [Expression] scans a single expression; [Build] collects every reference of
// a graph into a [Graph].
//
// # Checking
//
// [Check] reports references to names the graph never defines. Self
// references are allowed: a signal may read its own previous value.
//
//	if err := depgraph.Check(g); err != nil {
//		return err
//	}
//
// # Rendering
//
// [ToDOT] emits Graphviz DOT source for the graph and [RenderSVG] renders it
// in-process with [github.com/goccy/go-graphviz].
package depgraph
