package spec

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/matzehuels/vlanimate/internal/jsonx"
)

// Encoding maps channels (x, y, color, ...) to their definitions. The time
// channel is parsed; every other channel is kept verbatim.
type Encoding struct {
	Channels map[string]json.RawMessage
	Time     *TimeEncoding
}

// ChannelDef is the part of a channel definition the compiler inspects.
type ChannelDef struct {
	Field string
	Type  string
}

func (e Encoding) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(e.Channels)+1)
	for k, v := range e.Channels {
		m[k] = v
	}
	if e.Time != nil {
		t, err := jsonx.Encode(e.Time)
		if err != nil {
			return nil, err
		}
		m["time"] = t
	}
	return jsonx.Encode(m)
}

func (e *Encoding) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*e = Encoding{}
	if raw, ok := m["time"]; ok {
		delete(m, "time")
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			e.Time = &TimeEncoding{}
			if err := json.Unmarshal(raw, e.Time); err != nil {
				return err
			}
		}
	}
	if len(m) > 0 {
		e.Channels = m
	}
	return nil
}

// Channel returns the field and type of a channel definition. Channels with
// a non-string field, a constant value or a condition-only definition report
// an empty Field.
func (e *Encoding) Channel(name string) (ChannelDef, bool) {
	if e == nil {
		return ChannelDef{}, false
	}
	raw, ok := e.Channels[name]
	if !ok {
		return ChannelDef{}, false
	}
	var def struct {
		Field any    `json:"field"`
		Type  string `json:"type"`
	}
	if err := json.Unmarshal(raw, &def); err != nil {
		return ChannelDef{}, true
	}
	field, _ := def.Field.(string)
	return ChannelDef{Field: field, Type: def.Type}, true
}

// Names returns the channel names in sorted order, without time.
func (e *Encoding) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Channels))
	for k := range e.Channels {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Transform is one entry of a view's transform list. Filters on a selection
// parameter ({"filter": {"param": name}}) are recognized so the compiler can
// move them onto derived datasets.
type Transform struct {
	Raw json.RawMessage

	// Param is the selection a filter transform tests, or "".
	Param string
}

// ParamFilter returns a {"filter": {"param": name}} transform.
func ParamFilter(name string) Transform {
	raw, _ := json.Marshal(map[string]any{"filter": map[string]string{"param": name}})
	return Transform{Raw: raw, Param: name}
}

func (t Transform) MarshalJSON() ([]byte, error) {
	if len(t.Raw) == 0 {
		return []byte("null"), nil
	}
	return t.Raw, nil
}

func (t *Transform) UnmarshalJSON(data []byte) error {
	*t = Transform{Raw: bytes.Clone(data)}
	var probe struct {
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || len(probe.Filter) == 0 {
		return nil
	}
	var pred struct {
		Param string `json:"param"`
	}
	if err := json.Unmarshal(probe.Filter, &pred); err == nil {
		t.Param = pred.Param
	}
	return nil
}
