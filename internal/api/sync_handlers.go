package api

import (
	"net/http"
	"strconv"

	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
)

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Queue.Status(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleSyncExhausted(w http.ResponseWriter, r *http.Request) {
	ops, err := s.Queue.ListExhausted(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if ops == nil {
		ops = []models.SyncOperation{}
	}
	respondJSON(w, http.StatusOK, ops)
}

// handleSyncDrain is the manual "sync now" trigger. The drain itself runs
// synchronously; a drain already in progress reports skipped.
func (s *Server) handleSyncDrain(w http.ResponseWriter, r *http.Request) {
	res, err := s.Queue.Drain(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type setOnlineRequest struct {
	Online bool `json:"online"`
}

func (s *Server) handleSetOnline(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req setOnlineRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	s.Queue.SetOnline(r.Context(), req.Online)
	log.Info("connectivity reported: online=%v", req.Online)

	status, err := s.Queue.Status(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleSyncCleanup(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("olderThanDays"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			days = parsed
		}
	}

	n, err := s.Queue.Cleanup(r.Context(), days)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
