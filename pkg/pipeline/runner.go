package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vlanimate/pkg/cache"
	"github.com/matzehuels/vlanimate/pkg/compile"
	"github.com/matzehuels/vlanimate/pkg/depgraph"
	"github.com/matzehuels/vlanimate/pkg/elaborate"
	"github.com/matzehuels/vlanimate/pkg/observability"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
	"github.com/matzehuels/vlanimate/pkg/vegalite"
)

// Runner executes pipeline stages with caching. It holds no per-run state,
// so one Runner may serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// selects cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs elaborate → compile → check on a chart document.
func (r *Runner) Execute(ctx context.Context, doc []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	base, err := opts.baseCompiler()
	if err != nil {
		return nil, err
	}

	result := &Result{DocHash: cache.Hash(doc)}

	// Stage 1: Elaborate
	start := time.Now()
	s, err := r.Elaborate(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("elaborate: %w", err)
	}
	result.Stats.ElaborateTime = time.Since(start)
	result.Stats.Scopes = len(compile.Scopes(s))

	// Stage 2: Compile
	start = time.Now()
	g, hit, err := r.CompileWithCacheInfo(ctx, result.DocHash, s, base, opts)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	result.Graph = g
	result.Stats.CompileTime = time.Since(start)
	result.Stats.sizes(g)
	result.CacheInfo.CompileHit = hit

	r.Logger.Info("compiled animation",
		"scopes", result.Stats.Scopes,
		"signals", result.Stats.Signals,
		"cached", hit,
		"duration", result.Stats.CompileTime)

	// Stage 3: Check
	start = time.Now()
	dg := depgraph.Build(g)
	result.Unresolved = dg.Unresolved()
	result.Stats.CheckTime = time.Since(start)
	observability.Pipeline().OnCheckComplete(ctx, len(result.Unresolved), result.Stats.CheckTime)
	if opts.Check {
		if err := dg.Err(); err != nil {
			return nil, fmt.Errorf("check: %w", err)
		}
	}
	return result, nil
}

// Elaborate parses doc and resolves its animation defaults.
func (r *Runner) Elaborate(ctx context.Context, doc []byte, opts Options) (spec.Spec, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	start := time.Now()
	key := r.Keyer.ElaborateKey(cache.Hash(doc))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if s, err := spec.Parse(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "elaborate")
				return s, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "elaborate")
	}

	parsed, err := spec.Parse(doc)
	if err != nil {
		observability.Pipeline().OnElaborateComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	s := elaborate.Elaborate(parsed)
	observability.Pipeline().OnElaborateComplete(ctx, len(compile.Scopes(s)), time.Since(start), nil)

	if data, err := spec.Marshal(s); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLElaborate)); err == nil {
			observability.Cache().OnCacheSet(ctx, "elaborate", len(data))
		}
	}
	return s, nil
}

// CompileWithCacheInfo compiles an elaborated spec and reports whether the
// result came from the cache. docHash identifies the source document.
func (r *Runner) CompileWithCacheInfo(ctx context.Context, docHash string, s spec.Spec, base vegalite.Compiler, opts Options) (*vega.Spec, bool, error) {
	r.applyLogger(&opts)
	key := r.Keyer.CompileKey(docHash, opts.CompileKeyOpts(base.Name()))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := vega.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "compile")
				return g, true, nil
			}
			// Undecodable entries fall through to a recompile.
		}
		observability.Cache().OnCacheMiss(ctx, "compile")
	}

	start := time.Now()
	observability.Pipeline().OnCompileStart(ctx, base.Name())
	g, err := compile.New(base, compile.WithLogger(opts.Logger)).Compile(ctx, s)
	signals := 0
	if g != nil {
		signals = len(g.Signals)
	}
	observability.Pipeline().OnCompileComplete(ctx, base.Name(), signals, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := vega.Marshal(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLCompile)); err == nil {
			observability.Cache().OnCacheSet(ctx, "compile", len(data))
		}
	}
	return g, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
