package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/vlanimate/pkg/errors"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Compiler.Kind != "reference" || !cfg.Cache.Enabled || cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := write(t, `
[compiler]
kind = "command"
command = "npx vl2vg --quiet"
timeout = "45s"

[cache]
redis_url = "redis://localhost:6379/1"

[preview]
tick = "40ms"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Compiler.Kind != "command" || cfg.Compiler.Timeout.Duration != 45*time.Second {
		t.Errorf("compiler = %+v", cfg.Compiler)
	}
	if !cfg.Cache.Enabled {
		t.Error("unset cache.enabled should keep its default")
	}
	if cfg.Preview.Tick.Duration != 40*time.Millisecond {
		t.Errorf("tick = %s", cfg.Preview.Tick)
	}

	opts := cfg.PipelineOptions()
	if opts.Compiler != "command" || opts.Command != "npx vl2vg --quiet" || opts.Timeout != 45*time.Second {
		t.Errorf("PipelineOptions = %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[compiler\n", errors.ErrCodeInvalidConfig},
		{"unknown key", "[compiler]\nflavor = \"x\"\n", errors.ErrCodeInvalidConfig},
		{"bad kind", "[compiler]\nkind = \"vega\"\n", errors.ErrCodeInvalidConfig},
		{"bad duration", "[preview]\ntick = \"soon\"\n", errors.ErrCodeInvalidConfig},
		{"zero tick", "[preview]\ntick = \"0s\"\n", errors.ErrCodeInvalidConfig},
		{"empty command", "[compiler]\nkind = \"command\"\ncommand = \" \"\n", errors.ErrCodeMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: err = %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	cfg := Default()
	if dir, _ := cfg.CacheDir(); dir != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("CacheDir = %q", dir)
	}
	cfg.Cache.Dir = "/var/cache/charts"
	if dir, _ := cfg.CacheDir(); dir != "/var/cache/charts" {
		t.Errorf("CacheDir = %q", dir)
	}
}
