package vega

import (
	"encoding/json"

	"github.com/matzehuels/vlanimate/internal/jsonx"
)

// Merge returns a new graph holding acc with partial merged in.
//
// For each of data, signals, scales and marks, entries of acc whose name
// appears in partial are dropped and partial's entries are appended. Within
// partial a repeated name keeps its last occurrence. Unnamed entries are never
// replaced. Neither argument is modified; the result shares entry values with
// its inputs, so callers that need to edit an entry must [Mark.Clone] it first.
func Merge(acc, partial *Spec) *Spec {
	if acc == nil {
		acc = &Spec{}
	}
	if partial == nil {
		partial = &Spec{}
	}
	out := &Spec{
		Data:    mergeNamed(acc.Data, partial.Data, func(d *Data) string { return d.Name }),
		Signals: mergeNamed(acc.Signals, partial.Signals, func(s *Signal) string { return s.Name }),
		Scales:  mergeNamed(acc.Scales, partial.Scales, func(s *Scale) string { return s.Name }),
		Marks:   mergeNamed(acc.Marks, partial.Marks, func(m *Mark) string { return m.Name }),
		Extra:   jsonx.CloneRaw(acc.Extra),
	}
	for k, v := range partial.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage, len(partial.Extra))
		}
		out.Extra[k] = v
	}
	return out
}

func mergeNamed[T any](acc, partial []T, nameOf func(*T) string) []T {
	if len(acc) == 0 && len(partial) == 0 {
		return nil
	}
	// name -> index of its last occurrence in partial
	incoming := make(map[string]int, len(partial))
	for i := range partial {
		if n := nameOf(&partial[i]); n != "" {
			incoming[n] = i
		}
	}
	out := make([]T, 0, len(acc)+len(partial))
	for i := range acc {
		if _, replaced := incoming[nameOf(&acc[i])]; replaced {
			continue
		}
		out = append(out, acc[i])
	}
	for i := range partial {
		if n := nameOf(&partial[i]); n != "" && incoming[n] != i {
			continue
		}
		out = append(out, partial[i])
	}
	return out
}

// Empty reports whether the fragment carries no entries.
func (s *Spec) Empty() bool {
	return s == nil || len(s.Data)+len(s.Signals)+len(s.Scales)+len(s.Marks) == 0
}
