package ai

import (
	"context"

	"github.com/velmala/funding-advisor/internal/funding"
	"github.com/velmala/funding-advisor/internal/scoring"
)

// Rewriter rewrites the engine's itemized reasons into polished explanations.
// The result is order-aligned with the recommendations: one string per entry,
// empty when the provider had nothing for it. Best-effort only: a failing
// rewriter never changes scores or ranking.
type Rewriter interface {
	Rewrite(ctx context.Context, company *funding.CompanyProfile, recommendations []*scoring.ScoredResult) ([]string, error)
}

// Summarizer produces a short company context summary for display.
type Summarizer interface {
	Summarize(ctx context.Context, company *funding.CompanyProfile) (string, error)
}
