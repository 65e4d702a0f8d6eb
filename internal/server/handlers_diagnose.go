package server

import (
	"errors"
	"net/http"

	"github.com/tinkerloft/errdoctor/internal/diagnose"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/resolver"
)

// DiagnoseRequest is the body of POST /api/v1/diagnose.
type DiagnoseRequest struct {
	UserID string `json:"user_id,omitempty"`
	Text   string `json:"text"`
}

// RejectionResponse is returned with 422 when a description is too vague.
type RejectionResponse struct {
	Error  string  `json:"error"`
	Rule   string  `json:"rule"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req DiagnoseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.svc.Diagnose(r.Context(), req.UserID, req.Text)
	var rej *diagnose.RejectionError
	switch {
	case errors.As(err, &rej):
		writeJSON(w, http.StatusUnprocessableEntity, RejectionResponse{
			Error:  "description rejected",
			Rule:   rej.Rule,
			Reason: rej.Result.Reason,
			Score:  rej.Result.Score,
		})
	case errors.Is(err, resolver.ErrRateLimited):
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, err.Error())
	case err != nil:
		s.logger.ErrorContext(r.Context(), "diagnose failed", "err", err)
		writeError(w, http.StatusInternalServerError, "diagnosis failed")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req DiagnoseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Validate(req.Text))
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates := s.templates.Templates()
	if category := r.URL.Query().Get("category"); category != "" {
		templates = s.templates.ByCategory(category)
	}
	if templates == nil {
		templates = []model.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"templates":  templates,
		"categories": s.templates.Categories(),
	})
}
