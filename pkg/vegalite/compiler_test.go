package vegalite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/matzehuels/vlanimate/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		kind     string
		wantName string
		code     errors.Code
	}{
		{kind: "", wantName: "reference"},
		{kind: KindReference, wantName: "reference"},
		{kind: KindCommand, wantName: DefaultCommand},
		{kind: "wasm", code: errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			c, err := New(tt.kind, "", 0, nil)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if c.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", c.Name(), tt.wantName)
			}
		})
	}
}

func TestNewCommand(t *testing.T) {
	c, err := NewCommand(`npx -p "vega-lite cli" vl2vg`, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"npx", "-p", "vega-lite cli", "vl2vg"}
	if strings.Join(c.Argv, "|") != strings.Join(want, "|") {
		t.Errorf("Argv = %q, want %q", c.Argv, want)
	}
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}

	if _, err := NewCommand(`vl2vg "unterminated`, 0, nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unterminated quote: err = %v, want INVALID_CONFIG", err)
	}
}

func TestCommandCompile(t *testing.T) {
	const graph = `{"marks": [{"name": "marks", "type": "symbol"}]}`

	tests := []struct {
		name    string
		argv    []string
		timeout time.Duration
		code    errors.Code
		message string
	}{
		{name: "echo stdin", argv: []string{"cat"}},
		{name: "failure", argv: []string{"sh", "-c", "echo boom >&2; exit 3"}, code: errors.ErrCodeBaseCompiler, message: "boom"},
		{name: "invalid output", argv: []string{"sh", "-c", "cat >/dev/null; echo nope"}, code: errors.ErrCodeBaseCompiler},
		{name: "timeout", argv: []string{"sleep", "5"}, timeout: 50 * time.Millisecond, code: errors.ErrCodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCommand(shellquote.Join(tt.argv...), tt.timeout, nil)
			if err != nil {
				t.Fatal(err)
			}
			g, err := c.Compile(context.Background(), []byte(graph))
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				if tt.message != "" && !strings.Contains(err.Error(), tt.message) {
					t.Errorf("err = %v, want it to mention %q", err, tt.message)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if _, ok := g.Mark("marks"); !ok {
				t.Errorf("graph has no marks: %+v", g)
			}
		})
	}
}
