package vega

// FieldRef is the field-bearing part of an encode channel's value reference.
type FieldRef struct {
	Field string
	Scale string

	// Band and Offset are carried over from the original reference, nil when absent.
	Band   any
	Offset any
}

// ParseFieldRef extracts the field reference from an encode channel value.
// A production-rule array resolves to its last entry, the unconditional
// default. Channels bound to a constant, a signal or a non-string field are
// reported as not field-bound.
func ParseFieldRef(v any) (FieldRef, bool) {
	if rules, ok := v.([]any); ok {
		if len(rules) == 0 {
			return FieldRef{}, false
		}
		v = rules[len(rules)-1]
	}
	if rules, ok := v.([]Object); ok {
		if len(rules) == 0 {
			return FieldRef{}, false
		}
		v = rules[len(rules)-1]
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return FieldRef{}, false
	}
	field, ok := obj["field"].(string)
	if !ok || field == "" {
		return FieldRef{}, false
	}
	ref := FieldRef{Field: field, Band: obj["band"], Offset: obj["offset"]}
	ref.Scale, _ = obj["scale"].(string)
	return ref, true
}

var discreteRangeTypes = map[string]bool{
	"ordinal":     true,
	"bin-ordinal": true,
	"quantile":    true,
	"quantize":    true,
	"threshold":   true,
}

var continuousDomainTypes = map[string]bool{
	"":           true, // linear is the default scale type
	"linear":     true,
	"log":        true,
	"pow":        true,
	"sqrt":       true,
	"symlog":     true,
	"time":       true,
	"utc":        true,
	"sequential": true,
}

var namedColorRanges = map[string]bool{
	"category":  true,
	"diverging": true,
	"heatmap":   true,
	"ordinal":   true,
	"ramp":      true,
}

// DiscreteRange reports whether the scale maps to a discrete set of outputs.
// Interpolating through such a scale is meaningless.
func (s *Scale) DiscreteRange() bool { return discreteRangeTypes[s.Type] }

// ContinuousDomain reports whether the scale has a continuous domain that can
// be rebound to a subset of the data.
func (s *Scale) ContinuousDomain() bool { return continuousDomainTypes[s.Type] }

// ColorRange reports whether the scale outputs colors: a scheme range, a named
// color range, or a scale conventionally named after a color channel.
func (s *Scale) ColorRange() bool {
	switch r := s.Range.(type) {
	case string:
		if namedColorRanges[r] {
			return true
		}
	case map[string]any:
		if _, ok := r["scheme"]; ok {
			return true
		}
	}
	switch s.Name {
	case "color", "fill", "stroke":
		return true
	}
	return false
}

// RebindDomain returns a copy of a scale domain whose data references to from
// point at to instead. It handles the single {data, field} form, the
// {data, fields} form and the {fields: [{data, field}, ...]} multi-source form.
// The boolean reports whether anything was rebound.
func RebindDomain(domain any, from, to string) (any, bool) {
	obj, ok := domain.(map[string]any)
	if !ok {
		return domain, false
	}
	out := CloneObject(obj)
	changed := false
	if d, ok := out["data"].(string); ok && d == from {
		out["data"] = to
		changed = true
	}
	if fields, ok := out["fields"].([]any); ok {
		for _, f := range fields {
			ref, ok := f.(map[string]any)
			if !ok {
				continue
			}
			if d, ok := ref["data"].(string); ok && d == from {
				ref["data"] = to
				changed = true
			}
		}
	}
	return out, changed
}

// DomainData returns the dataset names referenced by a scale domain.
func DomainData(domain any) []string {
	obj, ok := domain.(map[string]any)
	if !ok {
		return nil
	}
	var names []string
	if d, ok := obj["data"].(string); ok {
		names = append(names, d)
	}
	if fields, ok := obj["fields"].([]any); ok {
		for _, f := range fields {
			if ref, ok := f.(map[string]any); ok {
				if d, ok := ref["data"].(string); ok {
					names = append(names, d)
				}
			}
		}
	}
	return names
}
