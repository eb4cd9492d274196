package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/vlanimate/pkg/depgraph"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// Graph renders the dependency graph of a compiled spec as DOT source or
// SVG. Mark nodes are included; runtime builtins are not.
func (r *Runner) Graph(ctx context.Context, g *vega.Spec, format string) ([]byte, error) {
	if err := ValidateGraphFormat(format); err != nil {
		return nil, err
	}
	dg := depgraph.Build(g)
	dot := depgraph.ToDOT(dg, depgraph.Options{Marks: true})
	r.Logger.Debug("built dependency graph", "nodes", depgraph.Label(dg), "unresolved", len(dg.Unresolved()))

	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		svg, err := depgraph.RenderSVG(ctx, dot)
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return svg, nil
	}
	return nil, fmt.Errorf("unsupported graph format: %s", format)
}
