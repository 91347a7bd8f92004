package api

import (
	"net/http"

	"github.com/takei-shg/word-anki/internal/errors"
	"github.com/takei-shg/word-anki/internal/logger"
)

type startSessionRequest struct {
	SourceID   string `json:"sourceId"`
	Difficulty string `json:"difficulty,omitempty"`
	Shuffle    *bool  `json:"shuffle,omitempty"`
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.SourceID == "" {
		handleError(w, r, errors.NewValidationError("sourceId", "must not be empty"))
		return
	}

	words, err := s.SourceService.FetchWords(r.Context(), req.SourceID, req.Difficulty)
	if err != nil {
		handleError(w, r, err)
		return
	}

	shuffle := s.SessionShuffle
	if req.Shuffle != nil {
		shuffle = *req.Shuffle
	}

	log.Debug("starting session: source_id=%s, difficulty=%s, words=%d", req.SourceID, req.Difficulty, len(words))
	snap, err := s.Session.Start(r.Context(), words, shuffle)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("session started with %d words", snap.TotalWords)
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Session.Snapshot())
}

func (s *Server) handleSessionReveal(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Session.Reveal(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

type respondRequest struct {
	Memorized bool `json:"memorized"`
}

func (s *Server) handleSessionRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.Session.Respond(r.Context(), req.Memorized)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSessionSkip(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Session.Skip(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSessionPrevious(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Session.GoToPrevious(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSessionRetry(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Session.Retry(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Session.Reset(r.Context()))
}
