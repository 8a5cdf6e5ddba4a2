package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/ivugurura/radio-landing/internal/logging"
	"github.com/ivugurura/radio-landing/internal/metrics"
	"github.com/ivugurura/radio-landing/internal/music"
	"github.com/ivugurura/radio-landing/internal/netutil"
	"github.com/ivugurura/radio-landing/internal/visits"
)

// handleHome tracks the visit and then serves the page whatever the outcome.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	v := visits.FromRequest(r, s.now())
	if err := s.tracker.Track(context.WithoutCancel(r.Context()), v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Error tracking homepage visit")
	}

	if s.homepagePath != "" {
		http.ServeFile(w, r, s.homepagePath)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.homepage)
}

func (s *Server) handleRandomMusic(w http.ResponseWriter, r *http.Request) {
	track, err := s.library.Random()
	switch {
	case errors.Is(err, music.ErrNoTracks):
		metrics.TrackPicksTotal.WithLabelValues("empty").Inc()
		netutil.WriteError(w, http.StatusNotFound, "No music files found")
	case err != nil:
		metrics.TrackPicksTotal.WithLabelValues("error").Inc()
		logging.Ctx(r.Context()).Error().Err(err).Msg("Error reading music directory")
		netutil.WriteError(w, http.StatusInternalServerError, "Error reading music files")
	default:
		metrics.TrackPicksTotal.WithLabelValues("ok").Inc()
		netutil.WriteJSON(w, http.StatusOK, track)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	netutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
