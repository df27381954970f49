package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/velmala/funding-advisor/internal/funding"
	"github.com/velmala/funding-advisor/internal/logger"
	"github.com/velmala/funding-advisor/internal/scoring"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Rewriter turns the engine's itemized reasons into polished, order-aligned
// explanations via Gemini. It also produces short company summaries.
type Rewriter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed rewrite_prompt.md
var rewritePromptTemplate string

//go:embed summary_prompt.md
var summaryPromptTemplate string

const defaultMaxLogLength = 200

func NewRewriter(generator contentGenerator, log *zap.Logger, maxLogLength int) *Rewriter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Rewriter{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

type rewritePayload struct {
	Company         companyPayload          `json:"company"`
	Recommendations []recommendationPayload `json:"recommendations"`
}

type companyPayload struct {
	Name             string        `json:"name"`
	Industry         string        `json:"industry"`
	Stage            funding.Stage `json:"stage"`
	Country          string        `json:"country"`
	FundingNeedTypes []string      `json:"funding_need_types"`
}

type recommendationPayload struct {
	Name              string   `json:"name"`
	Provider          string   `json:"provider"`
	ApplicationType   string   `json:"application_type"`
	ApplicationWindow string   `json:"application_window,omitempty"`
	Score             int      `json:"score"`
	Reasons           []string `json:"reasons"`
}

// Rewrite requests one rewritten explanation per recommendation. The returned
// slice always has the same length and order as the input: missing entries
// are padded with empty strings, surplus entries are dropped.
func (r *Rewriter) Rewrite(ctx context.Context, company *funding.CompanyProfile, recommendations []*scoring.ScoredResult) ([]string, error) {
	if company == nil {
		return nil, fmt.Errorf("company profile is required")
	}
	if len(recommendations) == 0 {
		return nil, nil
	}

	payload := rewritePayload{
		Company: companyFields(company),
	}
	for _, rec := range recommendations {
		payload.Recommendations = append(payload.Recommendations, recommendationPayload{
			Name:              rec.Instrument.Name,
			Provider:          rec.Instrument.Provider,
			ApplicationType:   rec.Instrument.ApplicationType,
			ApplicationWindow: rec.Instrument.ApplicationWindow,
			Score:             rec.Score,
			Reasons:           rec.Reasons,
		})
	}

	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rewrite payload: %w", err)
	}

	prompt := buildPrompt(rewritePromptTemplate, string(payloadJSON))

	r.logger.Debug("gemini rewrite request",
		zap.Int("recommendations", len(recommendations)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini rewrite response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	var parsed struct {
		Explanations []string `json:"explanations"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	explanations := parsed.Explanations
	for len(explanations) < len(recommendations) {
		explanations = append(explanations, "")
	}

	return explanations[:len(recommendations)], nil
}

// Summarize produces a short company context summary.
func (r *Rewriter) Summarize(ctx context.Context, company *funding.CompanyProfile) (string, error) {
	if company == nil {
		return "", fmt.Errorf("company profile is required")
	}

	payloadJSON, err := json.MarshalIndent(companyFields(company), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary payload: %w", err)
	}

	raw, err := r.generator.GenerateContent(ctx, buildPrompt(summaryPromptTemplate, string(payloadJSON)))
	if err != nil {
		return "", err
	}

	var parsed struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		return "", fmt.Errorf("gemini returned no summary")
	}

	return summary, nil
}

func companyFields(company *funding.CompanyProfile) companyPayload {
	return companyPayload{
		Name:             company.Name,
		Industry:         company.Industry,
		Stage:            company.Stage,
		Country:          company.Country,
		FundingNeedTypes: company.FundingNeedTypes,
	}
}

func buildPrompt(template, payloadJSON string) string {
	if strings.TrimSpace(template) == "" {
		template = "Input:\n{{PAYLOAD_JSON}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{PAYLOAD_JSON}}", payloadJSON)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
