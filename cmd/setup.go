package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/velmala/funding-advisor/internal/advisor"
	"github.com/velmala/funding-advisor/internal/ai/gemini"
	"github.com/velmala/funding-advisor/internal/funding"
	"github.com/velmala/funding-advisor/internal/logger"
	"github.com/velmala/funding-advisor/internal/registry"
	"github.com/velmala/funding-advisor/internal/secrets"
)

// buildAdvisor wires the catalog, the registry client and, when enabled in the
// config, the gemini rewriter into an advisor. catalogSource (from a flag)
// wins over the config file.
func buildAdvisor(ctx context.Context, config *Config, log *zap.Logger, catalogSource string) (*advisor.Advisor, error) {
	source := strings.TrimSpace(catalogSource)
	if source == "" && config.Catalog != nil {
		source = strings.TrimSpace(config.Catalog.Source)
	}
	if source == "" {
		source = defaultCatalogSource
	}

	catalog, err := funding.LoadCatalog(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("loading instrument catalog: %w", err)
	}

	log.Info("loaded instrument catalog",
		zap.String("source", catalog.Source),
		zap.Int("count", catalog.Len()),
	)

	reg := registry.New(ctx, log)
	if config.Registry != nil && config.Registry.UserAgent != "" {
		reg.UserAgent = config.Registry.UserAgent
	}

	deps := advisor.Deps{
		Catalog:  catalog,
		Registry: reg,
		Logger:   log,
	}

	if config.AI != nil && config.AI.Enabled {
		rewriter, err := newRewriter(ctx, config.AI, log)
		if err != nil {
			return nil, fmt.Errorf("building ai rewriter: %w", err)
		}
		deps.Rewriter = rewriter
		deps.Summarizer = rewriter
	}

	return advisor.New(deps), nil
}

func newRewriter(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*gemini.Rewriter, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewRewriter(
		generator,
		logger.WithAI(log, "gemini", generator.Model()),
		cfg.Gemini.MaxLogLength,
	), nil
}
