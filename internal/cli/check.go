package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/vlanimate/pkg/depgraph"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <graph.json|->",
		Short: "Report references in a compiled graph that name nothing",
		Long: `Report every dataset, signal and scale a compiled graph references
without defining it. Exits non-zero when any reference is unresolved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			g, err := vega.Unmarshal(data)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", inputName(args[0]))
			}

			dg := depgraph.Build(g)
			c.Logger.Debug("built dependency graph", "nodes", depgraph.Label(dg))

			unresolved := dg.Unresolved()
			if len(unresolved) == 0 {
				printSuccess("All references in %s resolve", inputName(args[0]))
				printDetail("%s", depgraph.Label(dg))
				return nil
			}
			for _, u := range unresolved {
				printError("%s", u)
			}
			return dg.Err()
		},
	}
}
