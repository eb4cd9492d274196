package vegalite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

type paramDef struct {
	Name   string          `json:"name"`
	Value  any             `json:"value"`
	Expr   string          `json:"expr"`
	Bind   any             `json:"bind"`
	Select json.RawMessage `json:"select"`
}

type selectDef struct {
	Type      string   `json:"type"`
	Fields    []string `json:"fields"`
	Encodings []string `json:"encodings"`
}

// params lowers variable parameters to signals and point selections to a
// store dataset plus the signals that maintain it.
func (l *lowering) params(params []spec.Param, v *view, m *markBuild) error {
	for _, p := range params {
		var def paramDef
		if err := json.Unmarshal(p.Raw, &def); err != nil {
			return fmt.Errorf("param: %w", err)
		}
		if def.Name == "" {
			return errors.MissingField("param", "name")
		}
		if len(def.Select) == 0 {
			l.variable(def)
			continue
		}
		var sel selectDef
		if err := json.Unmarshal(def.Select, &sel.Type); err != nil {
			if err := json.Unmarshal(def.Select, &sel); err != nil {
				return fmt.Errorf("param %q: %w", def.Name, err)
			}
		}
		if sel.Type != "point" {
			return errors.New(errors.ErrCodeUnsupported, "%s selection %q is not supported by the reference compiler", sel.Type, def.Name)
		}
		fields := sel.Fields
		for _, enc := range sel.Encodings {
			if c, ok := m.field(enc); ok {
				fields = append(fields, c.Field)
			}
		}
		if len(fields) == 0 {
			return errors.New(errors.ErrCodeUnsupported, "point selection %q needs fields", def.Name)
		}
		l.point(def.Name, fields, strings.TrimSuffix(v.path, "_"))
	}
	return nil
}

func (l *lowering) variable(def paramDef) {
	if _, ok := l.g.Signal(def.Name); ok {
		return
	}
	sig := vega.Signal{Name: def.Name, Value: def.Value, Bind: def.Bind}
	if def.Expr != "" {
		sig.Update = def.Expr
	}
	l.g.Signals = append(l.g.Signals, sig)
}

func (l *lowering) point(name string, fields []string, unit string) {
	store := name + "_store"
	if _, ok := l.g.Dataset(store); ok {
		return
	}
	l.g.Data = append(l.g.Data, vega.Data{Name: store})

	if !l.unitSignal {
		l.unitSignal = true
		l.g.Signals = append(l.g.Signals, vega.Signal{
			Name:  "unit",
			Value: vega.Object{},
			On:    []vega.Handler{{Events: "pointermove", Update: "isTuple(group()) ? group() : unit"}},
		})
	}

	tupleFields := make([]any, len(fields))
	values := make([]string, len(fields))
	for i, f := range fields {
		tupleFields[i] = vega.Object{"type": spec.TupleEqual, "field": f}
		values[i] = fmt.Sprintf("(item().isVoronoi ? datum.datum : datum)[%q]", f)
	}
	click := []any{vega.Object{"source": "scope", "type": "click"}}
	dblclick := []any{vega.Object{"source": "view", "type": "dblclick"}}

	l.g.Signals = append(l.g.Signals,
		vega.Signal{Name: name + "_tuple_fields", Value: tupleFields},
		vega.Signal{
			Name: name + "_tuple",
			On: []vega.Handler{
				{
					Events: click,
					Update: fmt.Sprintf("datum && item().mark.marktype !== 'group' ? {unit: %q, fields: %s_tuple_fields, values: [%s]} : null",
						unit, name, strings.Join(values, ", ")),
					Force: true,
				},
				{Events: dblclick, Update: "null"},
			},
		},
		vega.Signal{
			Name:  name + "_toggle",
			Value: false,
			On: []vega.Handler{
				{Events: click, Update: "event.shiftKey"},
				{Events: dblclick, Update: "false"},
			},
		},
		vega.Signal{
			Name: name + "_modify",
			On: []vega.Handler{{
				Events: vega.Object{"signal": name + "_tuple"},
				Update: fmt.Sprintf("modify(%q, %s_toggle ? null : %s_tuple, %s_toggle ? null : true, %s_toggle ? %s_tuple : null)",
					store, name, name, name, name, name),
			}},
		},
	)
}
