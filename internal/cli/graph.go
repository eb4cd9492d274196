package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/pipeline"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format  string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "graph <spec.json|graph.json|->",
		Short: "Draw the signal and data dependencies of a compiled graph",
		Long: `Draw the dependencies between the datasets, signals, scales and marks
of a compiled graph as Graphviz DOT or SVG. An animated chart is compiled
first.`,
		Example: `  vlanimate graph chart.json -f svg -o deps.svg
  vlanimate graph chart.vg.json | dot -Tpng > deps.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateGraphFormat(format); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "--format")
			}
			ctx := cmd.Context()
			doc, err := readInput(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var g *vega.Spec
			if isChart(doc) {
				res, err := runner.Execute(ctx, doc, c.pipelineOptions())
				if err != nil {
					return err
				}
				g = res.Graph
			} else if g, err = vega.Unmarshal(doc); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", inputName(args[0]))
			}

			out, err := runner.Graph(ctx, g, format)
			if err != nil {
				return err
			}
			if err := writeOutput(output, out); err != nil {
				return err
			}
			if output != "" && output != "-" {
				printSuccess("Rendered dependency graph")
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// isChart reports whether doc is an animated chart rather than a compiled
// graph: charts have a mark or a view composition at the top level.
func isChart(doc []byte) bool {
	var top map[string]json.RawMessage
	if json.Unmarshal(doc, &top) != nil {
		return false
	}
	for _, k := range []string{"mark", "layer", "vconcat"} {
		if _, ok := top[k]; ok {
			return true
		}
	}
	return false
}
