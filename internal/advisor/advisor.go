// Package advisor ties the scoring engine to its collaborators: the catalog,
// the company registry and the optional AI explanation rewriting.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/velmala/funding-advisor/internal/ai"
	"github.com/velmala/funding-advisor/internal/funding"
	"github.com/velmala/funding-advisor/internal/registry"
	"github.com/velmala/funding-advisor/internal/scoring"
)

var (
	// ErrInvalidInput wraps vocabulary validation failures; scoring never ran.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCompanyNotFound means the registry had no match for the business id.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrRewriteNotConfigured means AI explanations were requested but no
	// rewriter is configured.
	ErrRewriteNotConfigured = errors.New("ai rewriter is not configured")
)

// Options toggle the optional enrichments of one recommendation request.
type Options struct {
	// Rewrite requests AI-rewritten explanations for every entry.
	Rewrite bool
	// Summarize requests a short AI company summary.
	Summarize bool
}

// Recommendation is one ranked catalog entry with its score, the engine's
// itemized reasons, a locally templated explanation and, when requested and
// available, an AI-rewritten one.
type Recommendation struct {
	Instrument    *funding.Instrument `json:"instrument"`
	Score         int                 `json:"score"`
	Reasons       []string            `json:"reasons"`
	Explanation   string              `json:"explanation"`
	AIExplanation string              `json:"ai_explanation,omitempty"`
}

// Result is the full outcome of a recommendation request.
type Result struct {
	Company         *funding.CompanyProfile `json:"company"`
	Summary         string                  `json:"summary,omitempty"`
	Recommendations []*Recommendation       `json:"recommendations"`
}

// Deps aggregates the advisor's collaborators. Rewriter and Summarizer are
// optional; Now defaults to time.Now and exists so tests can pin the
// evaluation date.
type Deps struct {
	Catalog    *funding.Catalog
	Registry   *registry.Client
	Rewriter   ai.Rewriter
	Summarizer ai.Summarizer
	Logger     *zap.Logger
	Now        func() time.Time
}

type Advisor struct {
	catalog    *funding.Catalog
	registry   *registry.Client
	rewriter   ai.Rewriter
	summarizer ai.Summarizer
	logger     *zap.Logger
	now        func() time.Time
}

func New(deps Deps) *Advisor {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Advisor{
		catalog:    deps.Catalog,
		registry:   deps.Registry,
		rewriter:   deps.Rewriter,
		summarizer: deps.Summarizer,
		logger:     logger,
		now:        now,
	}
}

// HasRewriter reports whether AI explanations can be requested at all.
func (a *Advisor) HasRewriter() bool {
	return a.rewriter != nil
}

// Catalog exposes the loaded catalog for health reporting.
func (a *Advisor) Catalog() *funding.Catalog {
	return a.catalog
}

// Recommend validates the profile, ranks the whole catalog and attaches
// explanations. AI enrichments are additive: their failures are logged and the
// ranked result is returned without them.
func (a *Advisor) Recommend(ctx context.Context, company *funding.CompanyProfile, opts Options) (*Result, error) {
	if company.Country == "" {
		company.Country = funding.DefaultCountry
	}

	if err := company.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if opts.Rewrite && a.rewriter == nil {
		return nil, ErrRewriteNotConfigured
	}

	ranked := scoring.Rank(company, a.catalog, a.now())

	result := &Result{
		Company:         company,
		Recommendations: make([]*Recommendation, 0, len(ranked)),
	}
	for _, entry := range ranked {
		result.Recommendations = append(result.Recommendations, &Recommendation{
			Instrument:  entry.Instrument,
			Score:       entry.Score,
			Reasons:     entry.Reasons,
			Explanation: Explanation(company, entry.Instrument),
		})
	}

	if opts.Rewrite {
		a.attachRewrites(ctx, company, ranked, result)
	}

	if opts.Summarize && a.summarizer != nil {
		summary, err := a.summarizer.Summarize(ctx, company)
		if err != nil {
			a.logger.Warn("company summary failed", zap.Error(err))
		} else {
			result.Summary = summary
		}
	}

	return result, nil
}

// RecommendByBusinessID resolves the company through the registry first.
// Registry failure modes propagate typed so callers can map them; a missing
// company is ErrCompanyNotFound.
func (a *Advisor) RecommendByBusinessID(ctx context.Context, businessID string, params registry.ProfileParams, opts Options) (*Result, error) {
	if err := funding.ValidateStage(params.Stage); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := funding.ValidateNeedTypes(params.FundingNeedTypes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	company, err := a.registry.BuildProfile(businessID, params)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("%w: business id %s", ErrCompanyNotFound, businessID)
	}

	a.logger.Info("company resolved from registry",
		zap.String("business_id", businessID),
		zap.String("name", company.Name),
	)

	return a.Recommend(ctx, company, opts)
}

func (a *Advisor) attachRewrites(ctx context.Context, company *funding.CompanyProfile, ranked []*scoring.ScoredResult, result *Result) {
	explanations, err := a.rewriter.Rewrite(ctx, company, ranked)
	if err != nil {
		a.logger.Warn("ai explanation rewrite failed; keeping template explanations", zap.Error(err))
		return
	}

	for i, text := range explanations {
		if i >= len(result.Recommendations) {
			break
		}
		result.Recommendations[i].AIExplanation = text
	}
}
