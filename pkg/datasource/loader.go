package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vlanimate/pkg/buildinfo"
	"github.com/matzehuels/vlanimate/pkg/cache"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/observability"
	"github.com/matzehuels/vlanimate/pkg/timeline"
)

// MaxSourceBytes bounds how much of a single source is read.
const MaxSourceBytes = 64 << 20

// Definition is the data object of a chart.
type Definition struct {
	Name   string          `json:"name,omitempty"`
	URL    string          `json:"url,omitempty"`
	Values json.RawMessage `json:"values,omitempty"`
	Format Format          `json:"format,omitzero"`
}

// Format selects how a source is decoded.
type Format struct {
	Type     string `json:"type,omitempty"`
	Property string `json:"property,omitempty"`
}

// Loader resolves data definitions into rows.
type Loader struct {
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	client   *http.Client
	baseDir  string
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache caches remote sources in c under keys from k.
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(l *Loader) {
		if c != nil {
			l.cache = c
		}
		if k != nil {
			l.keyer = k
		}
	}
}

// WithHTTPClient replaces the client used for remote sources.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithBaseDir resolves relative URLs against dir, normally the directory of
// the chart file.
func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

// WithRetry sets the attempt count and first backoff delay for remote sources.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(l *Loader) {
		l.attempts = attempts
		l.delay = delay
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns a Loader. Without options nothing is cached and remote
// sources are tried three times starting with a one second delay.
func New(opts ...Option) *Loader {
	l := &Loader{
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		ttl:      cache.TTLSource,
		client:   &http.Client{Timeout: 30 * time.Second},
		baseDir:  ".",
		attempts: 3,
		delay:    time.Second,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load decodes raw as a data definition and returns its rows.
func (l *Loader) Load(ctx context.Context, raw json.RawMessage) ([]timeline.Row, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeMissingField, "chart has no data")
	}
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode data definition")
	}

	switch {
	case len(def.Values) > 0:
		var text string
		if json.Unmarshal(def.Values, &text) == nil {
			return Decode([]byte(text), def.Format.Type, def.Format.Property)
		}
		return Decode(def.Values, "json", def.Format.Property)
	case def.URL != "":
		data, err := l.fetch(ctx, def.URL)
		if err != nil {
			return nil, err
		}
		typ := def.Format.Type
		if typ == "" {
			typ = FormatOf(def.URL)
		}
		rows, err := Decode(data, typ, def.Format.Property)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.URL, err)
		}
		l.logger.Debug("loaded data source", "url", def.URL, "rows", len(rows))
		return rows, nil
	case def.Name != "":
		return nil, errors.New(errors.ErrCodeUnsupported, "named data %q is supplied at runtime", def.Name)
	}
	return nil, errors.New(errors.ErrCodeInvalidSpec, "data must have values, url or name")
}

// FormatOf infers a format type from a URL's extension.
func FormatOf(url string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(path.Ext(url), ".")); ext {
	case "csv", "tsv":
		return ext
	}
	return "json"
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	if !isRemote(url) {
		return l.readFile(url)
	}

	key := l.keyer.SourceKey(url)
	if data, hit, err := l.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "source")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	start := time.Now()
	observability.Source().OnFetch(ctx, url)
	var data []byte
	err := Retry(ctx, l.attempts, l.delay, func() error {
		var err error
		data, err = l.get(ctx, url)
		if err != nil {
			l.logger.Debug("fetch failed", "url", url, "error", err)
		}
		return err
	})
	observability.Source().OnFetchComplete(ctx, url, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
		l.logger.Warn("cache write failed", "url", url, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "source", len(data))
	}
	return data, nil
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "data url %q", url)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", url)
		}
		return nil, retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "%s: not found", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, retryable(errors.New(errors.ErrCodeNetwork, "%s: %s", url, resp.Status))
	case resp.StatusCode >= 300:
		return nil, errors.New(errors.ErrCodeNetwork, "%s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes))
	if err != nil {
		return nil, retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url))
	}
	return data, nil
}

func (l *Loader) readFile(url string) ([]byte, error) {
	p := strings.TrimPrefix(url, "file://")
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.baseDir, filepath.FromSlash(p))
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "data file %s not found", p)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
