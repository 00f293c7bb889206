// Package server exposes the upload, health and diagnostics endpoints.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lehigh-university-libraries/ocrweb/pkg/engine"
	"github.com/lehigh-university-libraries/ocrweb/pkg/imageproc"
	"github.com/lehigh-university-libraries/ocrweb/pkg/ocr"
)

//go:embed static/*.html
var staticFiles embed.FS

// EngineMonitor is the view of the engine state the handlers need.
type EngineMonitor interface {
	Current() engine.Status
	Refresh(ctx context.Context) engine.Status
	State() engine.State
	Candidates() []string
}

// Options configures a Server.
type Options struct {
	Monitor        EngineMonitor
	Registry       *ocr.Registry
	Recognition    ocr.Config
	MaxUploadBytes int64
	// MaxImagePixels bounds the declared dimensions of an upload.
	MaxImagePixels int64
}

// Server composes the normalizer and recognizer behind the HTTP routes.
type Server struct {
	monitor        EngineMonitor
	registry       *ocr.Registry
	recognizer     ocr.Recognizer
	recognition    ocr.Config
	maxUploadBytes int64
	maxImagePixels int64

	Metrics *Metrics
	handler http.Handler
}

// New validates opts and builds the route table.
func New(opts Options) (*Server, error) {
	if opts.Monitor == nil {
		return nil, errors.New("engine monitor is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("recognizer registry is required")
	}
	if err := opts.Recognition.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recognition config: %w", err)
	}
	recognizer, err := opts.Registry.Get(opts.Recognition.Engine)
	if err != nil {
		return nil, fmt.Errorf("unsupported engine %q (available: %v)", opts.Recognition.Engine, opts.Registry.List())
	}
	if err := ocr.Available(recognizer); err != nil {
		return nil, fmt.Errorf("engine %q cannot run: %w", recognizer.Name(), err)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 16 << 20
	}
	if opts.MaxImagePixels <= 0 {
		opts.MaxImagePixels = imageproc.DefaultMaxPixels
	}

	s := &Server{
		monitor:        opts.Monitor,
		registry:       opts.Registry,
		recognizer:     recognizer,
		recognition:    opts.Recognition,
		maxUploadBytes: opts.MaxUploadBytes,
		maxImagePixels: opts.MaxImagePixels,
	}
	s.Metrics = newMetrics(func() bool { return s.monitor.Current().Working })
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage("static/index.html"))
	mux.HandleFunc("GET /about", s.handlePage("static/about.html"))
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /diagnostics", s.handleDiagnostics)
	mux.HandleFunc("POST /diagnostics/probe", s.handleProbe)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))
	return logRequests(recoverPanics(mux))
}

// ServeHTTP makes Server usable with httptest and any http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		// Two engine attempts plus reading the upload.
		WriteTimeout: 2*s.recognition.Timeout + 30*time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("OCR web interface available", "url", fmt.Sprintf("http://%s", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
