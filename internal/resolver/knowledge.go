package resolver

import (
	"context"
	"log/slog"

	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/model"
)

// KnowledgeBase resolves descriptions against the static template set.
type KnowledgeBase struct {
	base      *knowledge.Base
	threshold float64
	logger    *slog.Logger
}

// NewKnowledgeBase returns a resolver that hits when the best template scores at least
// threshold. A non-positive threshold selects knowledge.DefaultThreshold.
func NewKnowledgeBase(base *knowledge.Base, threshold float64, logger *slog.Logger) *KnowledgeBase {
	if threshold <= 0 {
		threshold = knowledge.DefaultThreshold
	}
	return &KnowledgeBase{base: base, threshold: threshold, logger: loggerOr(logger)}
}

func (k *KnowledgeBase) Name() string  { return "knowledge_base" }
func (k *KnowledgeBase) Priority() int { return PriorityKnowledgeBase }

func (k *KnowledgeBase) Resolve(ctx context.Context, req Request) (*model.DiagnosticRecord, error) {
	m, ok := k.base.Lookup(req.Text, k.threshold)
	if !ok {
		k.logger.DebugContext(ctx, "knowledge base miss", "best_template", m.Template.ID, "score", m.Score)
		return nil, nil
	}
	d := knowledge.Diagnose(m, req.Profile, req.Text)
	k.logger.DebugContext(ctx, "knowledge base hit", "template", m.Template.ID, "score", m.Score)
	return &d, nil
}
