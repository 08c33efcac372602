// Package server hosts the diagram pipeline over HTTP.
//
// The page at / runs a load on every visit, like an admin page mounting its
// diagram, and shows either the chart or the error that stopped the load.
// Concurrent visits share one load. Loads triggered by file changes supersede
// older ones through the pipeline's [pipeline.Loader], so a slow load never
// overwrites a newer schema.
//
// Routes:
//
//	GET  /                 HTML page
//	GET  /api/er-data      raw schema records as fetched
//	GET  /api/diagram      scene model (positioned nodes, ports and links)
//	GET  /api/diagram.svg  rendered SVG
//	GET  /api/layout.json  serialized layout document
//	POST /api/reload       start a new load
//	GET  /ws               websocket stream of repaint notifications
//	GET  /metrics          Prometheus metrics
//	GET  /healthz          liveness probe
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/graph"
	"github.com/matzehuels/erchart/pkg/pipeline"
	"github.com/matzehuels/erchart/pkg/render"
)

// Config configures a [Server].
type Config struct {
	// Loader runs the pipeline. Its Apply hook is owned by the server.
	Loader *pipeline.Loader
	// Gatherer backs /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Logger receives request and load logs. Nil discards them.
	Logger *log.Logger
}

// Server is the HTTP presentation host.
type Server struct {
	loader   *pipeline.Loader
	logger   *log.Logger
	gatherer prometheus.Gatherer

	scene      *render.Scene
	hub        *hub
	group      singleflight.Group
	generation atomic.Uint64
	router     chi.Router
}

// New returns a server for cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		loader:   cfg.Loader,
		logger:   logger,
		gatherer: gatherer,
		scene:    render.NewScene(),
		hub:      newHub(logger),
	}
	s.scene.OnRepaint = s.broadcastRepaint
	s.loader.Apply = s.apply
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/er-data", s.handleERData)
		r.Get("/diagram", s.handleDiagram)
		r.Get("/diagram.svg", s.handleSVG)
		r.Get("/layout.json", s.handleLayout)
		r.Post("/reload", s.handleReload)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Load starts a new load and returns its result. Concurrent callers share
// one load. A load superseded by a newer one yields the newest result.
func (s *Server) Load(ctx context.Context) (*pipeline.Result, error) {
	v, err, _ := s.group.Do("load", func() (any, error) {
		return s.loader.Load(context.WithoutCancel(ctx))
	})
	if errors.Is(err, errors.ErrCodeStaleLoad) {
		if cur := s.loader.Current(); cur != nil {
			return cur, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return v.(*pipeline.Result), nil
}

// Reload starts a load that supersedes any load in flight. File watchers
// use it so that a change made during a slow load is never lost.
func (s *Server) Reload(ctx context.Context) error {
	_, err := s.loader.Load(ctx)
	if errors.Is(err, errors.ErrCodeStaleLoad) {
		return nil
	}
	return err
}

// current returns the applied result, loading one if there is none yet.
func (s *Server) current(ctx context.Context) (*pipeline.Result, error) {
	if cur := s.loader.Current(); cur != nil {
		return cur, nil
	}
	return s.Load(ctx)
}

// apply hands a fresh result to the server's scene. It runs under the
// loader's lock.
func (s *Server) apply(ctx context.Context, res *pipeline.Result) error {
	s.generation.Store(res.Generation)
	if err := render.Present(ctx, s.scene, res.Diagram, res.Layout); err != nil {
		return err
	}
	for _, w := range res.Warnings {
		s.logger.Warn(w.Message, "code", w.Code, "entity", w.Entity, "attribute", w.Attribute)
	}
	return nil
}

// repaintMessage is pushed to websocket clients after every repaint.
type repaintMessage struct {
	Type       string            `json:"type"`
	Generation uint64            `json:"generation"`
	Model      render.SceneModel `json:"model"`
}

func (s *Server) broadcastRepaint(_ context.Context, m render.SceneModel) error {
	data, err := json.Marshal(repaintMessage{Type: "repaint", Generation: s.generation.Load(), Model: m})
	if err != nil {
		return err
	}
	s.hub.broadcast(data)
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: pageTitle, Description: pageDescription}
	res, err := s.Load(r.Context())
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		data.Error = errors.UserMessage(err)
		data.Detail = errors.Chain(err)
	} else {
		data.Generation = res.Generation
		data.Warnings = len(res.Warnings)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleERData(w http.ResponseWriter, r *http.Request) {
	res, err := s.current(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, res.Records)
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	if _, err := s.current(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, s.scene.Snapshot())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	res, err := s.current(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := s.loader.Options
	opts.Formats = []string{render.FormatSVG}
	artifacts, _, err := s.loader.Runner.Render(r.Context(), res, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(artifacts[render.FormatSVG])
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.current(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := graph.WriteLayout(res.Document, w); err != nil {
		s.logger.Error("encode layout", "error", err)
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	cur := s.loader.Current()
	if cur == nil {
		s.writeError(w, pipeline.ErrStale)
		return
	}
	s.writeJSON(w, map[string]any{
		"generation": cur.Generation,
		"load":       cur.LoadID,
		"nodes":      cur.Stats.NodeCount,
		"edges":      cur.Stats.EdgeCount,
		"warnings":   len(cur.Warnings),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var initial []byte
	if m := s.scene.Snapshot(); len(m.Nodes) > 0 {
		initial, _ = json.Marshal(repaintMessage{Type: "repaint", Generation: s.generation.Load(), Model: m})
	}
	s.hub.serve(w, r, initial)
}

// =============================================================================
// Response Helpers
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Chain   []string    `json:"chain,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(errorBody{Code: code, Message: errors.UserMessage(err), Chain: errors.Chain(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidRankDir,
		errors.ErrCodeInvalidFilter, errors.ErrCodeInvalidSource, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeSchemaFetch, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeStaleLoad:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
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
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
