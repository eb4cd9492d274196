// Package compile turns an elaborated animation spec into a dataflow graph.
//
// The static part of the chart is lowered once by a base grammar compiler
// (see package vegalite) after the animation-specific fields have been
// stripped. The result is then extended scope by scope: each independently
// clocked part of the chart gets its clock signals, its time scale, its
// pause holds and its selection bridge, and each of its animated marks gets
// keyframe datasets, interpolated encodings, rescaled domains and enter/exit
// encodings. Every stage produces a graph fragment merged into the
// accumulated graph by name (see vega.Merge).
//
// # Naming
//
// Names created for a scope carry the scope suffix: "" for the root scope,
// "_layer_0" or "_concat_1" otherwise. Signals of the root scope are
// therefore anim_clock, t_index, anim_val_curr and so on; a child scope gets
// anim_clock_layer_0, t_index_layer_0, and so on. Names derived from a
// selection (sel_tuple, sel_toggle, sel_slider) carry the selection's name
// instead.
//
// # Datasets
//
// For a mark reading dataset D in a scope keyed on field k:
//
//	D_curr         rows of the current keyframe
//	D_next         rows of the next keyframe
//	D_eq           D_curr with the matching next row attached as "next"
//	D_eq_next      D_next rows that have a current match
//	D_interpolate  D_eq without unmatched rows; the mark reads from it
//	D_continuity   every keyed row sorted by time, for spline predicates
package compile
