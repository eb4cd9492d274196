// Package spec defines the animated chart specification accepted by the
// compiler.
//
// An animated chart is a static chart specification extended with a time
// encoding and timer-driven point selections. The tree has three shapes,
// decided once when the document is parsed:
//
//   - [*Unit]: a single mark with an encoding
//   - [*Layer]: ordered children drawn on top of each other, optionally
//     sharing one time encoding and one set of selections
//   - [*VConcat]: vertically stacked units, each animated independently
//
// Everything the compiler does not interpret (data, width, projection, title,
// ordinary params, ...) is kept verbatim so that the document can be handed to
// the base grammar compiler after [Sanitize] strips the animation-only parts.
//
// # Parsing
//
//	s, err := spec.Parse(data)
//	switch s := s.(type) {
//	case *spec.Unit:
//	case *spec.Layer:
//	case *spec.VConcat:
//	}
//
// # Scopes
//
// Each independently clocked part of a chart is a scope, identified by a
// [ScopeID]. The root scope uses unsuffixed signal names; nested scopes append
// "_" + id to every name they create.
package spec
