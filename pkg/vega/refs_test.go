package vega

import (
	"reflect"
	"testing"
)

func TestParseFieldRef(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   FieldRef
		wantOK bool
	}{
		{"scaled", Object{"scale": "x", "field": "v"}, FieldRef{Field: "v", Scale: "x"}, true},
		{"unscaled", Object{"field": "lon"}, FieldRef{Field: "lon"}, true},
		{"band", Object{"scale": "x", "field": "a", "band": 0.5}, FieldRef{Field: "a", Scale: "x", Band: 0.5}, true},
		{"production rule", []any{Object{"test": "datum.a", "value": 1}, Object{"scale": "color", "field": "c"}}, FieldRef{Field: "c", Scale: "color"}, true},
		{"value", Object{"value": 3}, FieldRef{}, false},
		{"signal", Object{"signal": "width"}, FieldRef{}, false},
		{"group field", Object{"field": Object{"group": "width"}}, FieldRef{}, false},
		{"empty rules", []any{}, FieldRef{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFieldRef(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFieldRef() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScaleClassification(t *testing.T) {
	tests := []struct {
		scale      Scale
		discrete   bool
		continuous bool
		color      bool
	}{
		{Scale{Name: "x", Type: "linear"}, false, true, false},
		{Scale{Name: "x", Type: "band"}, false, false, false},
		{Scale{Name: "size", Type: "sqrt"}, false, true, false},
		{Scale{Name: "color", Type: "ordinal", Range: "category"}, true, false, true},
		{Scale{Name: "heat", Type: "linear", Range: Object{"scheme": "viridis"}}, false, true, true},
		{Scale{Name: "shape", Type: "threshold"}, true, false, false},
		{Scale{Name: "y"}, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.scale.Name+"/"+tt.scale.Type, func(t *testing.T) {
			if got := tt.scale.DiscreteRange(); got != tt.discrete {
				t.Errorf("DiscreteRange() = %v, want %v", got, tt.discrete)
			}
			if got := tt.scale.ContinuousDomain(); got != tt.continuous {
				t.Errorf("ContinuousDomain() = %v, want %v", got, tt.continuous)
			}
			if got := tt.scale.ColorRange(); got != tt.color {
				t.Errorf("ColorRange() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestRebindDomain(t *testing.T) {
	single := Object{"data": "data_0", "field": "v"}
	got, changed := RebindDomain(single, "data_0", "data_0_curr")
	if !changed {
		t.Fatal("single domain not rebound")
	}
	if got.(Object)["data"] != "data_0_curr" {
		t.Errorf("data = %v", got.(Object)["data"])
	}
	if single["data"] != "data_0" {
		t.Error("input domain modified")
	}

	multi := Object{"fields": []any{Object{"data": "data_0", "field": "a"}, Object{"data": "data_1", "field": "b"}}}
	got, changed = RebindDomain(multi, "data_1", "data_1_next")
	if !changed {
		t.Fatal("multi-source domain not rebound")
	}
	if names := DomainData(got); !reflect.DeepEqual(names, []string{"data_0", "data_1_next"}) {
		t.Errorf("DomainData() = %v", names)
	}

	if _, changed := RebindDomain([]any{1, 2}, "data_0", "x"); changed {
		t.Error("literal domain reported as rebound")
	}
}

func TestMarkDataset(t *testing.T) {
	plain := Mark{Type: "symbol", From: &From{Data: "data_0"}}
	plain.SetDataset("data_0_curr")
	if plain.Dataset() != "data_0_curr" {
		t.Errorf("plain dataset = %q", plain.Dataset())
	}

	faceted := Mark{
		Type:  "group",
		From:  &From{Facet: &Facet{Name: "faceted_path_marks", Data: "data_0", Groupby: []any{"c"}}},
		Marks: []Mark{{Name: "marks", Type: "line", From: &From{Data: "faceted_path_marks"}}},
	}
	faceted.SetDataset("data_0_curr")
	if faceted.From.Facet.Data != "data_0_curr" {
		t.Errorf("facet data = %q", faceted.From.Facet.Data)
	}
	if faceted.Primary().Name != "marks" {
		t.Errorf("Primary() = %q, want inner line mark", faceted.Primary().Name)
	}
}

func TestMarkCloneIsDeep(t *testing.T) {
	m := Mark{
		Name:   "g",
		Type:   "group",
		From:   &From{Facet: &Facet{Name: "f", Data: "d"}},
		Encode: map[string]Object{"update": {"x": Object{"field": "a"}}},
		Marks:  []Mark{{Name: "inner", Type: "line", Encode: map[string]Object{"update": {}}}},
	}
	c := m.Clone()
	c.From.Facet.Data = "other"
	c.Encode["update"]["x"].(Object)["field"] = "b"
	c.Marks[0].Encode["update"]["y"] = Object{"value": 1}

	if m.From.Facet.Data != "d" {
		t.Error("facet shared with clone")
	}
	if m.Encode["update"]["x"].(Object)["field"] != "a" {
		t.Error("encode shared with clone")
	}
	if _, ok := m.Marks[0].Encode["update"]["y"]; ok {
		t.Error("nested mark shared with clone")
	}
}
