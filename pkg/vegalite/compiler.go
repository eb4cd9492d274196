package vegalite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kballard/go-shellquote"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// Compiler lowers a static chart specification into a baseline graph.
type Compiler interface {
	// Compile lowers spec, a JSON document, into a dataflow graph.
	Compile(ctx context.Context, spec []byte) (*vega.Spec, error)

	// Name identifies the adapter in logs and cache keys.
	Name() string
}

// Adapter kinds accepted by [New].
const (
	KindCommand   = "command"
	KindReference = "reference"
)

// DefaultCommand is the command line used when none is configured.
const DefaultCommand = "vl2vg"

// DefaultTimeout bounds a single external compiler run.
const DefaultTimeout = 30 * time.Second

// New returns the adapter of the given kind. command and timeout only apply
// to the command adapter.
func New(kind, command string, timeout time.Duration, logger *log.Logger) (Compiler, error) {
	switch kind {
	case "", KindReference:
		return &Reference{}, nil
	case KindCommand:
		return NewCommand(command, timeout, logger)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown compiler kind %q (want %s or %s)", kind, KindCommand, KindReference)
}

// =============================================================================
// External Process Adapter
// =============================================================================

// Command runs an external compiler process. The specification is written to
// its stdin and the graph is read from its stdout.
type Command struct {
	Argv    []string
	Timeout time.Duration
	Logger  *log.Logger
}

// NewCommand parses a shell-style command line ("npx -p vega-lite vl2vg").
func NewCommand(cmdline string, timeout time.Duration, logger *log.Logger) (*Command, error) {
	if strings.TrimSpace(cmdline) == "" {
		cmdline = DefaultCommand
	}
	argv, err := shellquote.Split(cmdline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse compiler command %q", cmdline)
	}
	if len(argv) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "empty compiler command")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Command{Argv: argv, Timeout: timeout, Logger: logger}, nil
}

// Name returns the command line.
func (c *Command) Name() string { return shellquote.Join(c.Argv...) }

// Compile runs the command once.
func (c *Command) Compile(ctx context.Context, spec []byte) (*vega.Spec, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Stdin = bytes.NewReader(spec)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if c.Logger != nil {
		c.Logger.Debug("base compiler finished", "command", c.Name(), "duration", time.Since(start), "bytes", stdout.Len())
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "%s timed out after %s", c.Argv[0], c.Timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrap(errors.ErrCodeBaseCompiler, fmt.Errorf("%w: %s", err, msg), "%s failed", c.Argv[0])
		}
		return nil, errors.Wrap(errors.ErrCodeBaseCompiler, err, "%s failed", c.Argv[0])
	}

	g, err := vega.Unmarshal(stdout.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBaseCompiler, err, "%s produced an invalid graph", c.Argv[0])
	}
	return g, nil
}
