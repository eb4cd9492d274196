package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vlanimate/pkg/cache"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/pipeline"
	"github.com/matzehuels/vlanimate/pkg/store"
)

const chart = `{
  "data": {"values": [{"year": 2000, "v": 1}, {"year": 2001, "v": 2}]},
  "mark": "point",
  "encoding": {
    "x": {"field": "v", "type": "quantitative"},
    "time": {"field": "year"}
  }
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(c, nil, logger), store.NewMemory(), pipeline.Options{}, logger)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCompileAndFetch(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/compile?check=true", chart)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("compile status = %d", resp.StatusCode)
	}
	first := decode[CompileResponse](t, resp)
	if first.ID == "" || first.Cached {
		t.Errorf("first compile: id = %q, cached = %v", first.ID, first.Cached)
	}
	if !strings.Contains(string(first.Graph), `"anim_clock"`) {
		t.Error("graph has no anim_clock signal")
	}
	if first.Stats.Scopes != 1 {
		t.Errorf("stats.scopes = %d, want 1", first.Stats.Scopes)
	}

	second := decode[CompileResponse](t, post(t, srv.URL+"/v1/compile", chart))
	if !second.Cached || second.ID != first.ID {
		t.Errorf("second compile: id = %q cached = %v, want %q cached", second.ID, second.Cached, first.ID)
	}

	got, err := http.Get(srv.URL + "/v1/graphs/" + first.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer got.Body.Close()
	if got.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", got.StatusCode)
	}
	rec := decode[store.Record](t, got)
	if rec.ID != first.ID || rec.Compiler != pipeline.DefaultCompiler {
		t.Errorf("record = %+v", rec)
	}
}

func TestElaborate(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/elaborate", chart)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`"current_frame_0"`, `"step": 500`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("elaborated spec missing %s:\n%s", want, body)
		}
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"empty body", http.MethodPost, "/v1/compile", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad json", http.MethodPost, "/v1/compile", "{", http.StatusBadRequest, errors.ErrCodeInvalidSpec},
		{"missing field", http.MethodPost, "/v1/compile", `{"data": {"values": []}, "mark": "point", "encoding": {"time": {}}}`, http.StatusBadRequest, errors.ErrCodeMissingField},
		{"bad id", http.MethodGet, "/v1/graphs/not-a-uuid", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown id", http.MethodGet, "/v1/graphs/6f1c1f1e-8f43-4f7a-9a55-3c1d2f4e5a6b", "", http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decode[map[string]ErrorBody](t, resp)
			if body["error"].Code != tt.code {
				t.Errorf("code = %s, want %s", body["error"].Code, tt.code)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeInvalidSpec:  http.StatusBadRequest,
		errors.ErrCodeNotFound:     http.StatusNotFound,
		errors.ErrCodeUnsupported:  http.StatusUnprocessableEntity,
		errors.ErrCodeBaseCompiler: http.StatusBadGateway,
		errors.ErrCodeTimeout:      http.StatusGatewayTimeout,
		"":                         http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := statusOf(code); got != want {
			t.Errorf("statusOf(%q) = %d, want %d", code, got, want)
		}
	}
}
