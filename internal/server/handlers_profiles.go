package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tinkerloft/errdoctor/internal/model"
)

// ProfileUpdate is the body of PUT /api/v1/profiles/{userID}. Empty fields are left unchanged.
type ProfileUpdate struct {
	OS             string `json:"os,omitempty"`
	PackageManager string `json:"package_manager,omitempty"`
	Editor         string `json:"editor,omitempty"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	writeJSON(w, http.StatusOK, s.svc.Profile(r.Context(), id))
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	var req ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.svc.UpdateProfile(r.Context(), id, req.OS, req.PackageManager, req.Editor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries, err := s.svc.History(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}
