package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
)

type uploadSourceRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleUploadSource(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req uploadSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	src, err := s.SourceService.UploadSource(r.Context(), req.Title, req.Content)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("source accepted: id=%s", src.ID)
	respondJSON(w, http.StatusCreated, src)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.SourceService.ListSources(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if sources == nil {
		sources = []models.TextSource{}
	}
	respondJSON(w, http.StatusOK, sources)
}

func (s *Server) handleSourceWords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	difficulty := r.URL.Query().Get("difficulty")

	words, err := s.SourceService.FetchWords(r.Context(), id, difficulty)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if words == nil {
		words = []models.WordTest{}
	}
	respondJSON(w, http.StatusOK, words)
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.SourceService.DeleteSource(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("source deleted: id=%s", id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
