// Package pipeline runs the elaborate → compile → check stages shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Elaborate: parse the animated chart and resolve every optional
//     animation field (see package elaborate)
//  2. Compile: lower the static chart through the configured base compiler
//     and synthesize the animation graph (see package compile)
//  3. Check: verify that every name an expression mentions is defined
//     (see package depgraph)
//
// Compile results are cached by document hash and compiler, so unchanged
// charts are served without invoking the base compiler again.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{Check: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vega.Write(result.Graph, os.Stdout)
//
// Stages also run on their own:
//
//	s, err := runner.Elaborate(ctx, doc, opts)
//	svg, err := runner.Graph(ctx, result.Graph, pipeline.FormatSVG)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vlanimate/pkg/cache"
	"github.com/matzehuels/vlanimate/pkg/depgraph"
	"github.com/matzehuels/vlanimate/pkg/vega"
	"github.com/matzehuels/vlanimate/pkg/vegalite"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultCompiler is the base compiler kind used when none is configured.
const DefaultCompiler = vegalite.KindReference

// Dependency graph output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidCompilers is the set of base compiler kinds.
var ValidCompilers = map[string]bool{
	vegalite.KindReference: true,
	vegalite.KindCommand:   true,
}

// ValidGraphFormats is the set of dependency graph output formats.
var ValidGraphFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It is decoded from API requests, so
// runtime-only fields are excluded from JSON.
type Options struct {
	// Compiler is the base compiler kind ("reference" or "command").
	Compiler string `json:"compiler,omitempty"`
	// Command is the external compiler command line for the command kind.
	Command string        `json:"-"`
	Timeout time.Duration `json:"-"`

	// Check fails the run when the compiled graph has unresolved references.
	Check bool `json:"check,omitempty"`
	// Refresh bypasses cached results (they are still written).
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	base vegalite.Compiler
}

// Result is the output of a pipeline run.
type Result struct {
	// DocHash is the SHA-256 of the input document.
	DocHash string

	// Graph is the compiled dataflow graph.
	Graph *vega.Spec

	// Unresolved lists the references of Graph that name nothing.
	Unresolved []depgraph.Unresolved

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains sizes and stage timings of a run.
type Stats struct {
	Scopes  int `json:"scopes"`
	Data    int `json:"data"`
	Signals int `json:"signals"`
	Scales  int `json:"scales"`
	Marks   int `json:"marks"`

	ElaborateTime time.Duration `json:"elaborate_ns"`
	CompileTime   time.Duration `json:"compile_ns"`
	CheckTime     time.Duration `json:"check_ns"`
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	CompileHit bool `json:"compile_hit"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateCompiler checks that kind names a base compiler.
func ValidateCompiler(kind string) error {
	if !ValidCompilers[kind] {
		return fmt.Errorf("invalid compiler: %q (must be one of: %s, %s)", kind, vegalite.KindReference, vegalite.KindCommand)
	}
	return nil
}

// ValidateGraphFormat checks that format is a dependency graph format.
func ValidateGraphFormat(format string) error {
	if !ValidGraphFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Compiler == "" {
		o.Compiler = DefaultCompiler
	}
	if o.Command == "" {
		o.Command = vegalite.DefaultCommand
	}
	if o.Timeout == 0 {
		o.Timeout = vegalite.DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks the options.
func (o *Options) Validate() error {
	o.SetDefaults()
	if o.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %s", o.Timeout)
	}
	if o.base != nil {
		return nil
	}
	return ValidateCompiler(o.Compiler)
}

// WithBase returns a copy of o that compiles through c instead of building
// an adapter from Compiler and Command.
func (o Options) WithBase(c vegalite.Compiler) Options {
	o.base = c
	return o
}

// baseCompiler returns the configured adapter.
func (o *Options) baseCompiler() (vegalite.Compiler, error) {
	if o.base != nil {
		return o.base, nil
	}
	return vegalite.New(o.Compiler, o.Command, o.Timeout, o.Logger)
}

// CompileKeyOpts returns cache key options for the compile stage.
func (o *Options) CompileKeyOpts(compiler string) cache.CompileKeyOpts {
	return cache.CompileKeyOpts{Compiler: compiler}
}

// sizes fills the graph size fields of s.
func (s *Stats) sizes(g *vega.Spec) {
	s.Data, s.Signals, s.Scales, s.Marks = len(g.Data), len(g.Signals), len(g.Scales), len(g.Marks)
}
