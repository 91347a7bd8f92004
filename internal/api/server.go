package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/takei-shg/word-anki/internal/jobs"
	"github.com/takei-shg/word-anki/internal/services"
	"github.com/takei-shg/word-anki/internal/session"
	"github.com/takei-shg/word-anki/internal/syncq"
)

// Server wires the engine's components to the localhost HTTP surface the UI
// layer drives.
type Server struct {
	SourceService   services.SourceService
	ProgressService services.ProgressService
	StatsService    services.StatsService
	Session         *session.Engine
	Queue           *syncq.Queue
	Jobs            jobs.JobQueue
	SessionShuffle  bool
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleSessionState)
		r.Post("/start", s.handleSessionStart)
		r.Post("/reveal", s.handleSessionReveal)
		r.Post("/respond", s.handleSessionRespond)
		r.Post("/skip", s.handleSessionSkip)
		r.Post("/previous", s.handleSessionPrevious)
		r.Post("/retry", s.handleSessionRetry)
		r.Post("/reset", s.handleSessionReset)
	})

	r.Route("/sources", func(r chi.Router) {
		r.Get("/", s.handleListSources)
		r.Post("/", s.handleUploadSource)
		r.Get("/{id}/words", s.handleSourceWords)
		r.Post("/{id}/delete", s.handleDeleteSource)
	})

	r.Route("/progress", func(r chi.Router) {
		r.Get("/", s.handleListProgress)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/overall", s.handleOverallProgress)
		r.Get("/source/{id}", s.handleSourceProgress)
		r.Get("/difficulty/{level}", s.handleDifficultyProgress)
	})

	r.Route("/sync", func(r chi.Router) {
		r.Get("/status", s.handleSyncStatus)
		r.Get("/exhausted", s.handleSyncExhausted)
		r.Post("/drain", s.handleSyncDrain)
		r.Post("/online", s.handleSetOnline)
		r.Post("/cleanup", s.handleSyncCleanup)
	})

	return r
}
