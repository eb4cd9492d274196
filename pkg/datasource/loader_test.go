package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/vlanimate/pkg/cache"
	"github.com/matzehuels/vlanimate/pkg/errors"
)

func TestLoadValues(t *testing.T) {
	tests := []struct {
		name string
		def  string
		want int
	}{
		{"objects", `{"values": [{"year": 2000}, {"year": 2001}]}`, 2},
		{"primitives", `{"values": [1, 2, 3]}`, 3},
		{"property", `{"values": {"rows": {"items": [{"a": 1}]}}, "format": {"property": "rows.items"}}`, 1},
		{"inline csv", `{"values": "a,b\n1,2\n3,4", "format": {"type": "csv"}}`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := New().Load(context.Background(), json.RawMessage(tt.def))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("len(rows) = %d, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestLoadPrimitiveRows(t *testing.T) {
	rows, err := New().Load(context.Background(), json.RawMessage(`{"values": [7]}`))
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["data"] != 7.0 {
		t.Errorf("row = %v, want data: 7", rows[0])
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		def  string
		code errors.Code
	}{
		{"empty", ``, errors.ErrCodeMissingField},
		{"named", `{"name": "table"}`, errors.ErrCodeUnsupported},
		{"nothing", `{}`, errors.ErrCodeInvalidSpec},
		{"not rows", `{"values": {"a": 1}}`, errors.ErrCodeInvalidFormat},
		{"bad format", `{"values": "x", "format": {"type": "topojson"}}`, errors.ErrCodeUnsupported},
		{"missing file", `{"url": "does-not-exist.json"}`, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithBaseDir(t.TempDir())).Load(context.Background(), json.RawMessage(tt.def))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	csv := "year,country,life\n2000,A,70.5\n2001,A,71\n2000,B,\n"
	if err := os.WriteFile(filepath.Join(dir, "life.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := New(WithBaseDir(dir)).Load(context.Background(), json.RawMessage(`{"url": "life.csv"}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0]["year"] != 2000.0 || rows[0]["country"] != "A" || rows[0]["life"] != 70.5 {
		t.Errorf("rows[0] = %v", rows[0])
	}
	if rows[2]["life"] != nil {
		t.Errorf("empty cell = %v, want nil", rows[2]["life"])
	}
}

func TestLoadRemoteCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"year": 2000}, {"year": 2001}]`))
	}))
	defer srv.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := New(WithCache(c, nil), WithHTTPClient(srv.Client()))
	def := json.RawMessage(`{"url": "` + srv.URL + `/gapminder.json"}`)

	for range 2 {
		rows, err := l.Load(context.Background(), def)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("len(rows) = %d, want 2", len(rows))
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestLoadRemoteRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("a\tb\n1\t2\n"))
	}))
	defer srv.Close()

	l := New(WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	rows, err := l.Load(context.Background(), json.RawMessage(`{"url": "`+srv.URL+`/x.tsv"}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 1 || rows[0]["b"] != 2.0 {
		t.Errorf("rows = %v", rows)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("server hits = %d, want 3", n)
	}
}

func TestLoadRemoteNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := New(WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	_, err := l.Load(context.Background(), json.RawMessage(`{"url": "`+srv.URL+`/gone.json"}`))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1 (no retry)", n)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error { return retryable(os.ErrClosed) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"data/cars.json":             "json",
		"https://x.org/life.CSV":     "csv",
		"a.tsv":                      "tsv",
		"https://x.org/api?rows=all": "json",
	}
	for url, want := range tests {
		if got := FormatOf(url); got != want {
			t.Errorf("FormatOf(%q) = %q, want %q", url, got, want)
		}
	}
}
