// Package server exposes the compile pipeline over HTTP.
//
//	POST /v1/compile     chart in, {id, graph, stats} out
//	POST /v1/elaborate   chart in, elaborated chart out
//	GET  /v1/graphs/{id} a stored compile result
//	GET  /healthz        liveness
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/vlanimate/pkg/buildinfo"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/pipeline"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/store"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// MaxBodyBytes bounds request documents.
const MaxBodyBytes = 8 << 20

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	opts   pipeline.Options
	logger *log.Logger
}

// New returns a server compiling with runner and base options opts and
// recording results in st.
func New(runner *pipeline.Runner, st store.Store, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, store: st, opts: opts, logger: logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/compile", s.handleCompile)
		r.Post("/elaborate", s.handleElaborate)
		r.Get("/graphs/{id}", s.handleGraph)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Handlers
// =============================================================================

// CompileResponse is the body of a successful POST /v1/compile.
type CompileResponse struct {
	ID         string          `json:"id"`
	Graph      json.RawMessage `json:"graph"`
	Stats      pipeline.Stats  `json:"stats"`
	Cached     bool            `json:"cached"`
	Unresolved []string        `json:"unresolved,omitempty"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readBody(w, r)
	if !ok {
		return
	}
	opts := s.opts
	opts.Check = boolParam(r, "check", opts.Check)
	opts.Refresh = boolParam(r, "refresh", opts.Refresh)

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	graph, err := vega.Marshal(res.Graph)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode graph"))
		return
	}

	rec, err := s.record(r.Context(), res, graph, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := CompileResponse{
		ID:     rec.ID,
		Graph:  graph,
		Stats:  res.Stats,
		Cached: res.CacheInfo.CompileHit,
	}
	for _, u := range res.Unresolved {
		resp.Unresolved = append(resp.Unresolved, u.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// record reuses the stored record of a cached compile and stores a new one
// otherwise.
func (s *Server) record(ctx context.Context, res *pipeline.Result, graph []byte, opts pipeline.Options) (*store.Record, error) {
	compiler := opts.Compiler
	if compiler == "" {
		compiler = pipeline.DefaultCompiler
	}
	if res.CacheInfo.CompileHit {
		if rec, err := s.store.Lookup(ctx, res.DocHash, compiler); err == nil {
			return rec, nil
		}
	}
	rec := store.NewRecord(res.DocHash, compiler, graph, res.Stats)
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Server) handleElaborate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readBody(w, r)
	if !ok {
		return
	}
	elaborated, err := s.runner.Elaborate(r.Context(), doc, s.opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := spec.Marshal(elaborated)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode spec"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateGraphID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return nil, false
	}
	if len(body) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body is empty"))
		return nil, false
	}
	return body, true
}

func boolParam(r *http.Request, name string, def bool) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusOf maps error codes to HTTP status codes.
func statusOf(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSpec, errors.ErrCodeInvalidFormat, errors.ErrCodeMissingField:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeBaseCompiler, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusOf(code)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	writeJSON(w, status, map[string]ErrorBody{"error": {Code: code, Message: errors.UserMessage(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
