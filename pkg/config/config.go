// Package config loads the vlanimate TOML configuration file.
//
// The file is looked up at the path given by --config, then at
// $XDG_CONFIG_HOME/vlanimate/config.toml. Missing files are not an error;
// every field has a default.
//
//	[compiler]
//	kind = "command"
//	command = "npx vl2vg"
//	timeout = "45s"
//
//	[cache]
//	enabled = true
//	redis_url = "redis://localhost:6379/0"
//	ttl = "168h"
//
//	[server]
//	addr = ":8080"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "vlanimate"
//
//	[preview]
//	tick = "16ms"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/pipeline"
	"github.com/matzehuels/vlanimate/pkg/vegalite"
)

// AppName names the configuration and cache directories.
const AppName = "vlanimate"

// Duration is a time.Duration written as a string ("30s", "1h30m").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the whole configuration file.
type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Preview  PreviewConfig  `toml:"preview"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// CompilerConfig selects the base compiler.
type CompilerConfig struct {
	Kind    string   `toml:"kind"`
	Command string   `toml:"command"`
	Timeout Duration `toml:"timeout"`
}

// CacheConfig controls compile result and data source caching. Dir is used
// when RedisURL is empty.
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures `vlanimate serve`. Without MongoURI compiled
// graphs are kept in memory.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// PreviewConfig configures terminal playback.
type PreviewConfig struct {
	Tick Duration `toml:"tick"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Compiler: CompilerConfig{
			Kind:    pipeline.DefaultCompiler,
			Command: vegalite.DefaultCommand,
			Timeout: Duration{vegalite.DefaultTimeout},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:          ":8080",
			MongoDatabase: AppName,
		},
		Preview: PreviewConfig{
			Tick: Duration{time.Second / 60},
		},
	}
}

// Load reads path, or the default location when path is empty. Keys the
// file sets override the defaults; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := pipeline.ValidateCompiler(c.Compiler.Kind); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[compiler] kind")
	}
	if c.Compiler.Kind == vegalite.KindCommand && strings.TrimSpace(c.Compiler.Command) == "" {
		return errors.MissingField("[compiler] kind = \"command\"", "command")
	}
	if c.Compiler.Timeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[compiler] timeout must be positive")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[cache] ttl must not be negative")
	}
	if c.Preview.Tick.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[preview] tick must be positive")
	}
	return nil
}

// PipelineOptions returns the pipeline options the configuration implies.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Compiler: c.Compiler.Kind,
		Command:  c.Compiler.Command,
		Timeout:  c.Compiler.Timeout.Duration,
	}
}

// CacheDir returns Cache.Dir or $XDG_CACHE_HOME/vlanimate.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultPath returns $XDG_CONFIG_HOME/vlanimate/config.toml.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}
