// Package vega models the reactive dataflow graph emitted by the compiler.
//
// A graph ([Spec]) is four named collections — data, signals, scales and
// marks — plus any top-level keys the baseline graph carried (width, axes,
// legends, ...), which are preserved verbatim in Extra maps so that a graph
// decoded from the base grammar compiler round-trips without loss.
//
// # Fragments and merging
//
// Every compiler stage produces a partial [Spec] (a fragment) and the
// accumulated graph is updated with [Merge]. Merge is the only way state
// accumulates: an entry whose name already exists is removed from its old
// position and the new entry is appended; untouched entries keep their
// relative order. Merging a fragment twice is the same as merging it once.
//
//	g = vega.Merge(g, &vega.Spec{Signals: []vega.Signal{{Name: "anim_clock", Init: "0"}}})
//
// # Serialization
//
// [Marshal], [Write], [WriteFile], [Read] and [ReadFile] mirror each other.
// Output is indented and deterministic: map-valued properties are emitted with
// sorted keys.
package vega
