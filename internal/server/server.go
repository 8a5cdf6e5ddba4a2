package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ivugurura/radio-landing/internal/logging"
	"github.com/ivugurura/radio-landing/internal/metrics"
	"github.com/ivugurura/radio-landing/internal/music"
	"github.com/ivugurura/radio-landing/internal/visits"
	"github.com/ivugurura/radio-landing/web"
)

// VisitTracker records a homepage visit. *visits.Tracker satisfies it.
type VisitTracker interface {
	Track(ctx context.Context, v visits.Visit) error
}

type Option func(*Server)

// WithHomepage replaces the embedded page with page.
func WithHomepage(page []byte) Option {
	return func(s *Server) { s.homepage = page }
}

// WithHomepagePath serves the homepage from disk on every request.
func WithHomepagePath(path string) Option {
	return func(s *Server) { s.homepagePath = path }
}

func WithMetrics(enabled bool) Option {
	return func(s *Server) { s.metricsEnabled = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server dispatches the landing page routes.
type Server struct {
	library *music.Library
	tracker VisitTracker

	homepage       []byte
	homepagePath   string
	metricsEnabled bool
	now            func() time.Time
}

func New(library *music.Library, tracker VisitTracker, opts ...Option) *Server {
	s := &Server{
		library:        library,
		tracker:        tracker,
		homepage:       web.Index(),
		metricsEnabled: true,
		now:            time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/random-music", s.handleRandomMusic)
	r.Handle(music.DefaultURLPrefix+"*", http.StripPrefix(music.DefaultURLPrefix, s.library.FileServer()))
	r.Get("/healthz", handleHealth)
	if s.metricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}
	return r
}

// ListenAndServe runs until ctx is cancelled, then drains in-flight requests
// for at most shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logging.Info().Str("addr", addr).Msgf("server: listening on http://%s", addr)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Info().Msg("server: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}
