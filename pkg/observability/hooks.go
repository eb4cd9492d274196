// Package observability lets a binary attach metrics or tracing to the
// compile pipeline without the library importing a backend.
//
// Hooks are registered once by main and read by the libraries:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.LogHooks{Logger: logger})
//	    // ... run application
//	}
//
//	observability.Pipeline().OnCompileStart(ctx, compiler.Name())
//	// ... compile ...
//	observability.Pipeline().OnCompileComplete(ctx, compiler.Name(), len(g.Signals), time.Since(start), err)
//
// Every hook set defaults to a no-op implementation.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Hook Interfaces
// =============================================================================

// PipelineHooks receives events from the elaborate, compile and check stages.
type PipelineHooks interface {
	OnElaborateComplete(ctx context.Context, scopes int, duration time.Duration, err error)

	OnCompileStart(ctx context.Context, compiler string)
	OnCompileComplete(ctx context.Context, compiler string, signals int, duration time.Duration, err error)

	OnCheckComplete(ctx context.Context, unresolved int, duration time.Duration)
}

// CacheHooks receives events from cache lookups. kind is the entry kind
// ("compile", "elaborate" or "source").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// SourceHooks receives events from remote data source fetches.
type SourceHooks interface {
	OnFetch(ctx context.Context, url string)
	OnFetchComplete(ctx context.Context, url string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnElaborateComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnCompileStart(context.Context, string)                         {}
func (NoopPipelineHooks) OnCompileComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnCheckComplete(context.Context, int, time.Duration) {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSourceHooks ignores every fetch event.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnFetch(context.Context, string)                                    {}
func (NoopSourceHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	sourceHooks   SourceHooks   = NoopSourceHooks{}
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSourceHooks registers data source hooks. nil is ignored.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Source returns the registered data source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	sourceHooks = NoopSourceHooks{}
}
