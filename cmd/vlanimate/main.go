package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vlanimate/internal/cli"
	vlerrors "github.com/matzehuels/vlanimate/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The level is known only once flags are parsed.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return loadConfig(cmd, args)
	}

	return root.ExecuteContext(ctx)
}

// exitCode separates bad input (2) from failures of the compiler or its
// collaborators (1).
func exitCode(err error) int {
	switch vlerrors.GetCode(err) {
	case vlerrors.ErrCodeInvalidInput, vlerrors.ErrCodeInvalidSpec, vlerrors.ErrCodeInvalidFormat,
		vlerrors.ErrCodeInvalidConfig, vlerrors.ErrCodeMissingField, vlerrors.ErrCodeFileNotFound:
		return 2
	}
	return 1
}
