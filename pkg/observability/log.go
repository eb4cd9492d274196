package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, failures at warn.
// It implements all hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ SourceHooks   = LogHooks{}
)

func (h LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(msg, append(kv, "error", err)...)
		return
	}
	h.Logger.Debug(msg, kv...)
}

func (h LogHooks) OnElaborateComplete(_ context.Context, scopes int, d time.Duration, err error) {
	h.done("elaborated", err, "scopes", scopes, "duration", d)
}

func (h LogHooks) OnCompileStart(_ context.Context, compiler string) {
	h.Logger.Debug("compiling", "compiler", compiler)
}

func (h LogHooks) OnCompileComplete(_ context.Context, compiler string, signals int, d time.Duration, err error) {
	h.done("compiled", err, "compiler", compiler, "signals", signals, "duration", d)
}

func (h LogHooks) OnCheckComplete(_ context.Context, unresolved int, d time.Duration) {
	if unresolved > 0 {
		h.Logger.Warn("unresolved references", "count", unresolved, "duration", d)
		return
	}
	h.Logger.Debug("references resolved", "duration", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, kind string) {
	h.Logger.Debug("cache hit", "kind", kind)
}

func (h LogHooks) OnCacheMiss(_ context.Context, kind string) {
	h.Logger.Debug("cache miss", "kind", kind)
}

func (h LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.Logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h LogHooks) OnFetch(_ context.Context, url string) {
	h.Logger.Debug("fetching", "url", url)
}

func (h LogHooks) OnFetchComplete(_ context.Context, url string, size int, d time.Duration, err error) {
	h.done("fetched", err, "url", url, "bytes", size, "duration", d)
}
