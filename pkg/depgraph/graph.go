package depgraph

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/vlanimate/pkg/vega"
)

// builtinSignals are defined by the runtime for every view.
var builtinSignals = map[string]bool{
	"width":      true,
	"height":     true,
	"padding":    true,
	"autosize":   true,
	"background": true,
	"cursor":     true,
}

// Node is a named part of a graph.
type Node struct {
	Ref

	// Group is the name of the enclosing group mark, "" at the top level.
	Group string

	// Builtin marks runtime-defined signals.
	Builtin bool
}

// Edge records that To reads From.
type Edge struct {
	From Ref
	To   Ref
}

// Unresolved is a reference to a name the graph never defines.
type Unresolved struct {
	Ref Ref
	By  Ref
}

func (u Unresolved) String() string {
	if u.By.Name == "" {
		return fmt.Sprintf("%s (top level)", u.Ref)
	}
	return fmt.Sprintf("%s (referenced by %s)", u.Ref, u.By)
}

// Graph is the reference graph of a compiled dataflow graph.
//
// Nodes and edges are kept in definition order, so building the same input
// always produces the same graph.
type Graph struct {
	nodes      []Node
	index      map[Ref]int
	edges      []Edge
	seen       map[Edge]bool
	unresolved []Unresolved
}

// Nodes returns the graph's nodes in definition order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the graph's edges in discovery order.
func (g *Graph) Edges() []Edge { return g.edges }

// Unresolved returns the references to undefined names.
func (g *Graph) Unresolved() []Unresolved { return g.unresolved }

// Has reports whether the graph defines r.
func (g *Graph) Has(r Ref) bool {
	_, ok := g.index[r]
	return ok
}

// Dependencies returns what r reads, directly.
func (g *Graph) Dependencies(r Ref) []Ref {
	var out []Ref
	for _, e := range g.edges {
		if e.To == r {
			out = append(out, e.From)
		}
	}
	return out
}

// Dependents returns what reads r, directly.
func (g *Graph) Dependents(r Ref) []Ref {
	var out []Ref
	for _, e := range g.edges {
		if e.From == r {
			out = append(out, e.To)
		}
	}
	return out
}

// Upstream returns every node r transitively reads, in breadth-first order.
func (g *Graph) Upstream(r Ref) []Ref {
	seen := map[Ref]bool{r: true}
	queue := []Ref{r}
	var out []Ref
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range g.Dependencies(cur) {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, dep)
			queue = append(queue, dep)
		}
	}
	return out
}

// Build collects the definitions and references of a compiled graph.
func Build(spec *vega.Spec) *Graph {
	g := &Graph{index: map[Ref]int{}, seen: map[Edge]bool{}}
	g.define(spec.Data, spec.Signals, spec.Scales, spec.Marks, "")
	g.scope(spec.Data, spec.Signals, spec.Scales, spec.Marks, "")
	for _, key := range sortedRawKeys(spec.Extra) {
		g.walk(Ref{}, decodeRaw(spec.Extra[key]))
	}
	return g
}

// ============================================================================
// Definitions
// ============================================================================

func (g *Graph) add(n Node) {
	if _, ok := g.index[n.Ref]; ok {
		return
	}
	g.index[n.Ref] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func markRef(m *vega.Mark, group string, i int) Ref {
	if m.Name != "" {
		return Ref{Kind: KindMark, Name: m.Name}
	}
	if group == "" {
		return Ref{Kind: KindMark, Name: fmt.Sprintf("mark_%d", i)}
	}
	return Ref{Kind: KindMark, Name: fmt.Sprintf("%s/mark_%d", group, i)}
}

// define registers every name before any reference is resolved, so that
// forward references resolve.
func (g *Graph) define(data []vega.Data, signals []vega.Signal, scales []vega.Scale, marks []vega.Mark, group string) {
	for _, d := range data {
		g.add(Node{Ref: Ref{Kind: KindData, Name: d.Name}, Group: group})
	}
	for _, s := range signals {
		g.add(Node{Ref: Ref{Kind: KindSignal, Name: s.Name}, Group: group})
	}
	for _, s := range scales {
		g.add(Node{Ref: Ref{Kind: KindScale, Name: s.Name}, Group: group})
	}
	for i := range marks {
		m := &marks[i]
		ref := markRef(m, group, i)
		g.add(Node{Ref: ref, Group: group})
		if m.From != nil && m.From.Facet != nil {
			g.add(Node{Ref: Ref{Kind: KindData, Name: m.From.Facet.Name}, Group: ref.Name})
		}
		g.define(m.Data, m.Signals, m.Scales, m.Marks, ref.Name)
	}
}

// ============================================================================
// References
// ============================================================================

func (g *Graph) scope(data []vega.Data, signals []vega.Signal, scales []vega.Scale, marks []vega.Mark, group string) {
	for _, d := range data {
		owner := Ref{Kind: KindData, Name: d.Name}
		switch src := d.Source.(type) {
		case string:
			g.ref(owner, Ref{Kind: KindData, Name: src})
		case []any:
			for _, s := range src {
				if name, ok := s.(string); ok {
					g.ref(owner, Ref{Kind: KindData, Name: name})
				}
			}
		case []string:
			for _, name := range src {
				g.ref(owner, Ref{Kind: KindData, Name: name})
			}
		}
		for _, t := range d.Transform {
			g.walk(owner, t)
		}
	}

	for _, s := range signals {
		owner := Ref{Kind: KindSignal, Name: s.Name}
		g.expr(owner, s.Init)
		g.expr(owner, s.Update)
		for _, h := range s.On {
			g.walk(owner, h.Events)
			g.expr(owner, h.Update)
		}
	}

	for _, s := range scales {
		owner := Ref{Kind: KindScale, Name: s.Name}
		g.walk(owner, s.Domain)
		g.walk(owner, s.DomainRaw)
		g.walk(owner, s.Range)
		for _, key := range sortedRawKeys(s.Extra) {
			g.walk(owner, decodeRaw(s.Extra[key]))
		}
	}

	for i := range marks {
		m := &marks[i]
		owner := markRef(m, group, i)
		if m.From != nil {
			if m.From.Data != "" {
				g.ref(owner, Ref{Kind: KindData, Name: m.From.Data})
			}
			if f := m.From.Facet; f != nil {
				g.ref(Ref{Kind: KindData, Name: f.Name}, Ref{Kind: KindData, Name: f.Data})
				g.ref(owner, Ref{Kind: KindData, Name: f.Name})
			}
		}
		for _, block := range sortedBlocks(m.Encode) {
			g.walk(owner, m.Encode[block])
		}
		for _, key := range sortedRawKeys(m.Extra) {
			g.walk(owner, decodeRaw(m.Extra[key]))
		}
		g.scope(m.Data, m.Signals, m.Scales, m.Marks, owner.Name)
	}
}

func (g *Graph) ref(owner, target Ref) {
	if target.Name == "" || owner == target {
		return
	}
	if !g.Has(target) {
		if target.Kind == KindSignal && builtinSignals[target.Name] {
			g.add(Node{Ref: target, Builtin: true})
		} else {
			u := Unresolved{Ref: target, By: owner}
			if !slices.Contains(g.unresolved, u) {
				g.unresolved = append(g.unresolved, u)
			}
			return
		}
	}
	if owner.Name == "" {
		return
	}
	e := Edge{From: target, To: owner}
	if g.seen[e] {
		return
	}
	g.seen[e] = true
	g.edges = append(g.edges, e)
}

func (g *Graph) expr(owner Ref, expr string) {
	for _, r := range Expression(expr) {
		g.ref(owner, r)
	}
}

// walk follows the reference-bearing keys of a free-form JSON value.
func (g *Graph) walk(owner Ref, v any) {
	switch v := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(v) {
			val := v[k]
			s, isString := val.(string)
			switch {
			case isString && (k == "signal" || k == "expr" || k == "test"):
				g.expr(owner, s)
			case isString && k == "scale":
				g.ref(owner, Ref{Kind: KindScale, Name: s})
			case isString && (k == "data" || k == "from"):
				g.ref(owner, Ref{Kind: KindData, Name: s})
			case k == "values":
				// inline rows
			default:
				g.walk(owner, val)
			}
		}
	case []any:
		for _, item := range v {
			g.walk(owner, item)
		}
	case []map[string]any:
		for _, item := range v {
			g.walk(owner, item)
		}
	}
}

func decodeRaw(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedRawKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedBlocks(m map[string]vega.Object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
