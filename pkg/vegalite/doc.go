// Package vegalite adapts base grammar compilers: the components that lower
// ordinary mark/encoding/data specifications into a baseline dataflow graph
// that the animation compiler then extends.
//
// Two adapters implement [Compiler]:
//
//   - [Command] runs an external process (by default the vega-lite CLI,
//     "vl2vg") with the specification on stdin and decodes the graph from
//     stdout. This is the production path.
//   - [Reference] lowers a core subset of the grammar in process: unit, layer
//     and vconcat views over inline or URL data with position, color, size,
//     opacity, shape, text and geographic channels, bar stacking, series
//     facets for lines and areas, and point selections. It follows the naming
//     scheme of the vega-lite compiler (source_0, data_0, marks,
//     layer_0_marks, concat_0_group, ...) so that graphs from either adapter
//     can be animated the same way.
//
// Use [New] to build the adapter selected by configuration.
package vegalite
