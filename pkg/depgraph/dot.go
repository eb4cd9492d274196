package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT generation.
type Options struct {
	// Marks includes mark nodes. Without them the diagram shows only the
	// dataflow between datasets, signals and scales.
	Marks bool

	// Builtins includes runtime-defined signals such as width.
	Builtins bool
}

var kindAttrs = map[Kind]string{
	KindData:   `shape=cylinder, fillcolor="#dbeafe"`,
	KindSignal: `shape=box, style="rounded,filled", fillcolor="#fef3c7"`,
	KindScale:  `shape=hexagon, fillcolor="#dcfce7"`,
	KindMark:   `shape=box, fillcolor="#f3f4f6"`,
}

// ToDOT converts the graph to Graphviz DOT source. Edges point from what is
// read to what reads it; nodes inside group marks are clustered by group.
func ToDOT(g *Graph, opts Options) string {
	include := func(n Node) bool {
		if n.Kind == KindMark && !opts.Marks {
			return false
		}
		return !n.Builtin || opts.Builtins
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontsize=12, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	groups := map[string][]Node{}
	var groupOrder []string
	shown := map[Ref]bool{}
	for _, n := range g.Nodes() {
		if !include(n) {
			continue
		}
		shown[n.Ref] = true
		if _, ok := groups[n.Group]; !ok {
			groupOrder = append(groupOrder, n.Group)
		}
		groups[n.Group] = append(groups[n.Group], n)
	}

	for i, group := range groupOrder {
		indent := "  "
		if group != "" {
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
			fmt.Fprintf(&buf, "    label=%q;\n", group)
			buf.WriteString("    style=dashed;\n")
			indent = "    "
		}
		for _, n := range groups[group] {
			fmt.Fprintf(&buf, "%s%q [label=%q, %s];\n", indent, n.String(), n.Name, kindAttrs[n.Kind])
		}
		if group != "" {
			buf.WriteString("  }\n")
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if shown[e.From] && shown[e.To] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From.String(), e.To.String())
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// by its viewBox, so the SVG scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Label summarizes the graph for status output.
func Label(g *Graph) string {
	counts := map[Kind]int{}
	for _, n := range g.Nodes() {
		if !n.Builtin {
			counts[n.Kind]++
		}
	}
	parts := make([]string, 0, 4)
	for _, k := range []Kind{KindData, KindSignal, KindScale, KindMark} {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], k))
	}
	return strings.Join(parts, ", ")
}
