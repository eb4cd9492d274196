package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		check   bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "compile <spec.json|->",
		Short: "Compile an animated chart to a dataflow graph",
		Long: `Compile an animated chart to a dataflow graph.

The chart is elaborated, compiled by the configured base compiler and
extended with the clock, keyframe, tween and selection machinery that plays
it. The graph is written to stdout unless --output is given.`,
		Example: `  vlanimate compile chart.json -o chart.vg.json
  cat chart.json | vlanimate compile - --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			opts := c.pipelineOptions()
			opts.Check = check
			opts.Refresh = refresh

			spinner := newSpinner(ctx, "Compiling "+inputName(args[0])+"...")
			spinner.Start()
			res, err := runner.Execute(ctx, doc, opts)
			spinner.Stop()
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				if err := vega.Write(res.Graph, os.Stdout); err != nil {
					return err
				}
			} else if err := vega.WriteFile(res.Graph, output); err != nil {
				return err
			}

			printSuccess("Compiled %s", inputName(args[0]))
			if output != "" && output != "-" {
				printFile(output)
			}
			printStats(res.Stats, res.CacheInfo.CompileHit)
			for _, u := range res.Unresolved {
				printWarning("unresolved %s", u)
			}
			if output != "" && output != "-" {
				printNewline()
				printNextStep("Inspect its dependencies", "vlanimate graph "+output+" -f svg -o graph.svg")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&check, "check", false, "fail when the graph references undefined signals, data or scales")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompile even when a cached result exists")

	return cmd
}

// elaborateCommand creates the elaborate command.
func (c *CLI) elaborateCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "elaborate <spec.json|->",
		Short: "Print a chart with its animation defaults filled in",
		Long: `Print a chart with its animation defaults filled in: the time scale
type and range, keys, rescale, and the animation selection every time
encoding is driven by.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			s, err := runner.Elaborate(ctx, doc, c.pipelineOptions())
			if err != nil {
				return err
			}
			data, err := spec.Marshal(s)
			if err != nil {
				return err
			}
			if err := writeOutput(output, append(data, '\n')); err != nil {
				return err
			}
			if output != "" && output != "-" {
				printSuccess("Elaborated %s", inputName(args[0]))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// inputName names an input argument in status lines.
func inputName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}

// inputDir is the directory relative data URLs of an input resolve against.
func inputDir(path string) string {
	if path == "-" {
		return "."
	}
	return filepath.Dir(path)
}
