package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/takei-shg/word-anki/internal/models"
)

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	records, err := s.ProgressService.GetAll(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if records == nil {
		records = []models.LearningRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ProgressService.GetStatistics(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleOverallProgress(w http.ResponseWriter, r *http.Request) {
	overall, err := s.StatsService.OverallProgress(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, overall)
}

func (s *Server) handleSourceProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.StatsService.SourceProgress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

func (s *Server) handleDifficultyProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.StatsService.DifficultyProgress(r.Context(), chi.URLParam(r, "level"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}
