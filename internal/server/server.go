// Package server exposes the chart editor over HTTP.
//
// A single editor instance backs every request. Handlers hold one mutex while
// touching it, so requests apply in arrival order. Exports render a copy of
// the chart outside the lock; a second export while one is running gets 409.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bichil/orgchart/pkg/editor"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/upload"
)

// Config configures a Server.
type Config struct {
	Addr          string
	CORSOrigins   []string
	ExportTimeout time.Duration
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
}

// Server serves one editor.
type Server struct {
	mu       sync.Mutex
	editor   *editor.Editor
	runner   *export.Runner
	uploader upload.Uploader
	logger   *log.Logger
	cfg      Config
}

// New creates a server. uploader may be nil, which disables upload routes.
func New(ed *editor.Editor, runner *export.Runner, uploader upload.Uploader, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = export.NewRunner(nil, nil, logger)
	}
	if cfg.ExportTimeout <= 0 {
		cfg.ExportTimeout = 30 * time.Second
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return &Server{editor: ed, runner: runner, uploader: uploader, logger: logger, cfg: cfg}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Cache", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/chart", s.getChart)
		r.Put("/chart", s.putChart)
		r.Get("/tree", s.getTree)
		r.Get("/state", s.getState)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", s.createNode)
			r.Patch("/{nodeID}", s.updateNode)
			r.Delete("/{nodeID}", s.deleteNode)
		})
		r.Route("/edges", func(r chi.Router) {
			r.Post("/", s.createEdge)
			r.Delete("/{edgeID}", s.deleteEdge)
		})
		r.Route("/root", func(r chi.Router) {
			r.Get("/candidates", s.rootCandidates)
			r.Post("/promote", s.promoteRoot)
			r.Post("/cancel", s.cancelRoot)
		})

		r.Post("/layout", s.autoLayout)
		r.Post("/layout/scatter", s.scatter)
		r.Put("/preview", s.setPreview)
		r.Post("/save", s.save)
		r.Post("/reset", s.reset)
		r.Post("/reload", s.reload)

		r.Get("/export/{format}", s.exportChart)
		r.Post("/export/{format}/upload", s.uploadExport)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "slot", s.editor.Slot())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// withEditor runs fn while holding the editor lock.
func (s *Server) withEditor(fn func(ed *editor.Editor)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.editor)
}
