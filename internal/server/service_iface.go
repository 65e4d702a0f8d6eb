package server

import (
	"context"

	"github.com/tinkerloft/errdoctor/internal/diagnose"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/validate"
)

// DiagnosisService is the interface the server uses to diagnose descriptions.
// *diagnose.Service satisfies this interface.
type DiagnosisService interface {
	Diagnose(ctx context.Context, userID, text string) (*diagnose.Result, error)
	Validate(text string) validate.Verdict
	Profile(ctx context.Context, userID string) model.UserProfile
	UpdateProfile(ctx context.Context, userID, os, packageManager, editor string) (model.UserProfile, error)
	History(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error)
}

// TemplateSource lists knowledge-base templates. *knowledge.Base satisfies this interface.
type TemplateSource interface {
	Templates() []model.Template
	ByCategory(category string) []model.Template
	Categories() []string
}
