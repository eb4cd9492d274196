package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnElaborateComplete(ctx, 2, time.Millisecond, nil)
	p.OnCompileStart(ctx, "reference")
	p.OnCompileComplete(ctx, "reference", 12, time.Millisecond, nil)
	p.OnCheckComplete(ctx, 0, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "compile")
	c.OnCacheMiss(ctx, "compile")
	c.OnCacheSet(ctx, "compile", 1024)

	s := NoopSourceHooks{}
	s.OnFetch(ctx, "https://example.org/data.json")
	s.OnFetchComplete(ctx, "https://example.org/data.json", 10, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should default to NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Source() should default to NoopSourceHooks")
	}

	p := &testPipelineHooks{}
	SetPipelineHooks(p)
	if Pipeline() != p {
		t.Error("SetPipelineHooks did not register hooks")
	}
	c := &testCacheHooks{}
	SetCacheHooks(c)
	if Cache() != c {
		t.Error("SetCacheHooks did not register hooks")
	}
	s := &testSourceHooks{}
	SetSourceHooks(s)
	if Source() != s {
		t.Error("SetSourceHooks did not register hooks")
	}

	SetPipelineHooks(nil)
	if Pipeline() != p {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Reset() should restore NoopSourceHooks")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := LogHooks{Logger: log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})}
	ctx := context.Background()

	h.OnCompileComplete(ctx, "reference", 7, time.Millisecond, nil)
	h.OnFetchComplete(ctx, "https://example.org/x.csv", 0, time.Millisecond, errors.New("boom"))
	h.OnCheckComplete(ctx, 3, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"compiled", "signals=7", "fetched", "boom", "unresolved references", "count=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testSourceHooks struct{ NoopSourceHooks }
