package elaborate

import "github.com/matzehuels/vlanimate/pkg/spec"

// Default time ranges, in milliseconds.
const (
	DefaultBandStep  = 500
	DefaultLinearEnd = 5000
)

// TimeEncoding returns a copy of t with scale type, range, zero, key and
// rescale resolved. markType and encodings feed the key heuristic; the first
// encoding with a usable channel wins.
func TimeEncoding(t *spec.TimeEncoding, markType string, encodings ...*spec.Encoding) *spec.TimeEncoding {
	out := t.Clone()
	if out == nil {
		out = &spec.TimeEncoding{}
	}
	if out.Scale == nil {
		out.Scale = &spec.TimeScale{}
	}
	sc := out.Scale

	if sc.Type == "" {
		if sc.Range.StepLike() || len(sc.Domain) == 0 {
			sc.Type = spec.ScaleBand
		} else {
			sc.Type = spec.ScaleLinear
		}
	}
	if sc.Range == nil {
		switch sc.Type {
		case spec.ScaleLinear:
			sc.Range = &spec.TimeRange{Values: []any{0.0, float64(DefaultLinearEnd)}}
		default:
			step := float64(DefaultBandStep)
			sc.Range = &spec.TimeRange{Step: &step}
		}
	}
	if sc.Type == spec.ScaleLinear && sc.Zero == nil {
		f := false
		sc.Zero = &f
	}

	switch {
	case out.Key == nil:
		if field := inferKey(markType, encodings); field != "" {
			out.Key = &spec.Key{Field: field, Loop: new(bool)}
		} else {
			out.Key = &spec.Key{Disabled: true}
		}
	case !out.Key.Disabled && out.Key.Loop == nil:
		out.Key.Loop = new(bool)
	}

	if out.Rescale == nil {
		out.Rescale = new(bool)
	}
	return out
}

// inferKey picks the field that identifies an entity across keyframes: a bar's
// nominal x or y field, else the color field, else the detail field.
func inferKey(markType string, encodings []*spec.Encoding) string {
	if markType == "bar" {
		for _, ch := range []string{"x", "y"} {
			for _, e := range encodings {
				if def, ok := e.Channel(ch); ok && def.Field != "" && def.Type == "nominal" {
					return def.Field
				}
			}
		}
	}
	for _, ch := range []string{"color", "detail"} {
		for _, e := range encodings {
			if def, ok := e.Channel(ch); ok && def.Field != "" {
				return def.Field
			}
		}
	}
	return ""
}
