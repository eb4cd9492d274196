// Package cache stores compile results and fetched data sources.
//
// A [Cache] is a byte-oriented key/value store with per-entry expiry. Three
// backends are provided:
//
//   - [FileCache] for the CLI, one JSON envelope per key under a directory
//   - [RedisCache] for the HTTP server when several replicas share results
//   - [NullCache] when caching is disabled
//
// Keys are produced by a [Keyer] so that every backend sees the same
// namespace layout. [ScopedKeyer] adds a prefix for per-tenant isolation.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLCompile   = 7 * 24 * time.Hour
	TTLElaborate = 7 * 24 * time.Hour
	TTLSource    = 24 * time.Hour
)

// Cache is the storage contract shared by all backends.
//
// Get reports a miss with (nil, false, nil); an error is returned only when
// the backend itself fails. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// CompileKeyOpts are the inputs besides the document that change a compile
// result. Checking reads the graph without changing it, so it is not one.
type CompileKeyOpts struct {
	Compiler string `json:"compiler"`
}

// Keyer derives cache keys.
type Keyer interface {
	// SourceKey addresses a fetched data source (URL or path).
	SourceKey(uri string) string
	// ElaborateKey addresses an elaborated document.
	ElaborateKey(docHash string) string
	// CompileKey addresses a compiled dataflow graph.
	CompileKey(docHash string, opts CompileKeyOpts) string
}

// keyVersion is bumped whenever the shape of cached values changes.
const keyVersion = "v1"

// DefaultKeyer produces unprefixed keys of the form kind:sha256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SourceKey(uri string) string {
	return hashKey("source", keyVersion, uri)
}

func (DefaultKeyer) ElaborateKey(docHash string) string {
	return hashKey("elaborate", keyVersion, docHash)
}

func (DefaultKeyer) CompileKey(docHash string, opts CompileKeyOpts) string {
	return hashKey("compile", keyVersion, docHash, opts)
}
