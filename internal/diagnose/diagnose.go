// Package diagnose is the request facade: validate a description, run the resolver
// chain, synthesize a fallback when nothing resolved, and record history.
package diagnose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tinkerloft/errdoctor/internal/fingerprint"
	"github.com/tinkerloft/errdoctor/internal/logging"
	"github.com/tinkerloft/errdoctor/internal/metrics"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/resolver"
	"github.com/tinkerloft/errdoctor/internal/store"
	"github.com/tinkerloft/errdoctor/internal/validate"
)

// ErrRejected is wrapped by every *RejectionError.
var ErrRejected = errors.New("description rejected")

// RejectionError reports a description too vague to resolve.
type RejectionError struct {
	Rule   string
	Result model.ValidationResult
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("description rejected by %s: %s", e.Rule, e.Result.Reason)
}

func (e *RejectionError) Unwrap() error { return ErrRejected }

// Chain is the resolution pipeline the service drives.
type Chain interface {
	Resolve(ctx context.Context, req resolver.Request) (*model.DiagnosticRecord, error)
}

// Result is one completed diagnosis.
type Result struct {
	RequestID   string                 `json:"request_id"`
	Fingerprint string                 `json:"fingerprint"`
	Specificity float64                `json:"specificity"`
	Profile     model.UserProfile      `json:"profile"`
	Diagnostic  model.DiagnosticRecord `json:"diagnostic"`
}

// Config wires a Service. Profiles and History may be nil.
type Config struct {
	Validator *validate.Validator
	Chain     Chain
	Profiles  store.ProfileStore
	History   store.HistoryStore
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service handles diagnosis requests.
type Service struct {
	validator *validate.Validator
	chain     Chain
	profiles  store.ProfileStore
	history   store.HistoryStore
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// New returns a Service from cfg.
func New(cfg Config) *Service {
	s := &Service{
		validator: cfg.Validator,
		chain:     cfg.Chain,
		profiles:  cfg.Profiles,
		history:   cfg.History,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Validate runs the validator without resolving.
func (s *Service) Validate(text string) validate.Verdict {
	return s.validator.Evaluate(text)
}

// Diagnose resolves text for userID. It returns a *RejectionError for vague descriptions
// and resolver.ErrRateLimited when the live tier refused the call. Any other outcome
// yields a diagnostic, at worst the generic failure record.
func (s *Service) Diagnose(ctx context.Context, userID, text string) (*Result, error) {
	verdict := s.validator.Evaluate(text)
	if !verdict.IsValid {
		s.metrics.RecordRejection(verdict.Rule)
		s.logger.InfoContext(ctx, "description rejected",
			"rule", verdict.Rule, "reason", verdict.Reason, "text", logging.Snippet(text))
		return nil, &RejectionError{Rule: verdict.Rule, Result: verdict.ValidationResult}
	}

	profile := s.Profile(ctx, userID)
	req := resolver.NewRequest(text, profile, verdict.Score)
	d, err := s.chain.Resolve(ctx, req)
	if errors.Is(err, resolver.ErrRateLimited) && d == nil {
		return nil, err
	}
	if d == nil {
		s.logger.WarnContext(ctx, "no resolver produced a diagnosis",
			"fingerprint", fingerprint.Short(req.Fingerprint), "err", err)
		fallback := model.UnknownDiagnostic(model.ErrorTypeGeneric)
		d = &fallback
	}

	res := &Result{
		RequestID:   uuid.NewString(),
		Fingerprint: req.Fingerprint,
		Specificity: verdict.Score,
		Profile:     profile,
		Diagnostic:  *d,
	}
	s.record(ctx, userID, res)
	return res, nil
}

func (s *Service) record(ctx context.Context, userID string, res *Result) {
	if s.history == nil || userID == "" {
		return
	}
	entry := model.HistoryEntry{
		ID:             res.RequestID,
		ErrorType:      res.Diagnostic.ErrorType,
		Source:         res.Diagnostic.Source,
		Confidence:     res.Diagnostic.Confidence,
		SolutionsCount: len(res.Diagnostic.Solutions),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.history.AppendHistory(ctx, userID, entry); err != nil {
		s.logger.WarnContext(ctx, "history write failed", "user_id", userID, "err", err)
	}
}

// Profile returns the stored profile for userID, or the default profile when the user
// has none or the store is unavailable.
func (s *Service) Profile(ctx context.Context, userID string) model.UserProfile {
	if s.profiles == nil || userID == "" {
		return model.DefaultProfile
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "profile lookup failed, using default", "user_id", userID, "err", err)
		return model.DefaultProfile
	}
	return p
}

// UpdateProfile applies the non-empty fields to the user's profile and saves it.
func (s *Service) UpdateProfile(ctx context.Context, userID, os, packageManager, editor string) (model.UserProfile, error) {
	if s.profiles == nil {
		return model.UserProfile{}, errors.New("profile store not configured")
	}
	if userID == "" {
		return model.UserProfile{}, errors.New("user id is required")
	}
	current, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("load profile: %w", err)
	}
	p := current.Update(os, packageManager, editor)
	if err := s.profiles.SaveProfile(ctx, userID, p); err != nil {
		return model.UserProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// History returns up to limit entries for userID, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	entries, err := s.history.ListHistory(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
