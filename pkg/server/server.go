// Package server serves the gallery over HTTP.
//
// Every visitor gets a session (cookie "rigwall_session") holding a live
// gallery.App. The HTML page at "/" renders the session's current view and
// drives it through a small JSON API under "/api". The stateless
// "/render.{format}" endpoint runs the pipeline and benefits from its cache.
//
//	srv, err := server.New(server.Options{Gallery: gallery.Options{Seed: 42}})
//	if err != nil {
//	    return err
//	}
//	err = srv.ListenAndServe(ctx, ":8080")
package server

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/matzehuels/rigwall/pkg/cache"
	"github.com/matzehuels/rigwall/pkg/gallery"
	"github.com/matzehuels/rigwall/pkg/pipeline"
	"github.com/matzehuels/rigwall/pkg/render"
	"github.com/matzehuels/rigwall/pkg/session"
	"github.com/matzehuels/rigwall/pkg/submit"
)

// ServiceName names the server in traces.
const ServiceName = "rigwall"

// Defaults for Options left at zero.
const (
	DefaultSubmitRate   = 0.2
	DefaultSubmitBurst  = 3
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
)

// Options configures a Server.
type Options struct {
	// Gallery is the template for every new session. Seed 0 gives each
	// visitor their own random catalog.
	Gallery gallery.Options

	// Title is the page heading.
	Title string

	// Images is served under /images/. Nil disables the route.
	Images fs.FS

	// Runner executes /render.{format}. Nil runs the pipeline uncached.
	Runner *pipeline.Runner

	// PNGImages loads photos for rendered PNGs. Nil draws placeholders.
	PNGImages render.ImageLoader

	// PNGSource identifies PNGImages in render cache keys. Empty disables
	// caching of PNG renders.
	PNGSource string

	// Desk accepts photo submissions. Nil builds a default desk.
	Desk *submit.Desk

	SessionTTL     time.Duration
	AllowedOrigins []string

	// SubmitRate is the sustained submissions per second per client;
	// SubmitBurst is how many may arrive at once.
	SubmitRate  float64
	SubmitBurst int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Title == "" {
		o.Title = render.DefaultTitle
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = session.DefaultTTL
	}
	if o.SubmitRate <= 0 {
		o.SubmitRate = DefaultSubmitRate
	}
	if o.SubmitBurst <= 0 {
		o.SubmitBurst = DefaultSubmitBurst
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Gallery.Logger == nil {
		o.Gallery.Logger = o.Logger
	}
}

// Server is the HTTP front-end.
type Server struct {
	opts     Options
	logger   *log.Logger
	sessions *session.MemoryStore
	runner   *pipeline.Runner
	desk     *submit.Desk
	limiter  *limiterSet
	router   chi.Router
}

// New builds the router.
func New(opts Options) (*Server, error) {
	opts.setDefaults()

	desk := opts.Desk
	if desk == nil {
		var err error
		if desk, err = submit.NewDesk(submit.WithLogger(opts.Logger)); err != nil {
			return nil, err
		}
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(cache.NewNullCache(), nil, opts.Logger)
	}

	s := &Server{
		opts:     opts,
		logger:   opts.Logger,
		sessions: session.NewMemoryStore(opts.SessionTTL),
		runner:   runner,
		desk:     desk,
		limiter:  newLimiterSet(opts.SubmitRate, opts.SubmitBurst),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, requestLogger(s.logger), middleware.Recoverer)

	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/", s.handlePage)
	r.Get("/healthz", s.handleHealth)
	r.Get("/render.{format}", s.handleRender)
	if s.opts.Images != nil {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.FS(s.opts.Images))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/gallery", s.handleGallery)
		r.Post("/gallery/filters", s.handleFilters)
		r.Post("/gallery/filters/clear", s.handleClearFilters)
		r.Post("/gallery/company", s.handleCompany)
		r.Delete("/gallery/company", s.handleClearCompany)
		r.Post("/gallery/more", s.handleLoadMore)
		r.Post("/gallery/resize", s.handleResize)
		r.Get("/filters/options", s.handleChoices)
		r.Get("/vehicles/{id}", s.handleVehicle)
		r.Post("/lightbox/open/{id}", s.handleLightboxOpen)
		r.Post("/lightbox/key", s.handleLightboxKey)
		r.Post("/lightbox/select", s.handleLightboxSelect)
		r.Delete("/lightbox", s.handleLightboxClose)
		r.Post("/submissions", s.handleSubmit)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	return r
}

// Handler returns the traced root handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, ServiceName)
}

// Sessions exposes the session store.
func (s *Server) Sessions() *session.MemoryStore { return s.sessions }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Expired sessions are swept in the background.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx, s.opts.SessionTTL/2)
	go s.limiter.run(sweepCtx, s.opts.SessionTTL)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
