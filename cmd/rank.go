package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/velmala/funding-advisor/internal/advisor"
	"github.com/velmala/funding-advisor/internal/funding"
	"github.com/velmala/funding-advisor/internal/logger"
	"github.com/velmala/funding-advisor/internal/registry"
)

const (
	PromptExit           = "Exit"
	PromptDumpToFile     = "Dump recommendations to file"
	PromptAIExplanations = "Rewrite explanations with AI"
)

var errExit = errors.New("exit requested")

var rankPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptExit, PromptDumpToFile, PromptAIExplanations},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank funding instruments for a company profile",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("business-id", "b", "", "resolve the company from the registry by business id (Y-tunnus)")
	rankCmd.Flags().String("name", "", "company name")
	rankCmd.Flags().String("industry", "", "company industry, free text")
	rankCmd.Flags().StringP("stage", "s", "", "company stage (pre-seed, seed, growth, scale-up)")
	rankCmd.Flags().String("revenue-class", "", "revenue class, free text")
	rankCmd.Flags().Int("employees", 0, "employee count")
	rankCmd.Flags().StringSliceP("needs", "n", nil, "funding need types (RDI, internationalization, investments, working capital)")
	rankCmd.Flags().Int("min-amount", 0, "minimum funding amount in EUR")
	rankCmd.Flags().Int("max-amount", 0, "maximum funding amount in EUR")
	rankCmd.Flags().String("country", "", "company country (default is "+funding.DefaultCountry+")")
	rankCmd.Flags().StringP("catalog", "c", "", "instrument catalog file or URL")
	rankCmd.Flags().Bool("use-llm", false, "rewrite explanations with the configured AI provider")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "print the ranking and exit without the action prompt")
}

// rank is the main cli command.
func rank(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	adv, err := buildAdvisor(ctx, config, logger, cmd.Flag("catalog").Value.String())
	if err != nil {
		logger.Fatal("building the advisor", zap.Error(err))
	}

	useLLM := flagBool(cmd, "use-llm")
	opts := advisor.Options{Rewrite: useLLM, Summarize: useLLM}

	result, err := recommend(ctx, cmd, adv, opts)
	if err != nil {
		logger.Fatal("ranking instruments", zap.Error(err))
	}

	printResult(result)

	if flagBool(cmd, "auto-approve") {
		return
	}

	for {
		_, action, err := rankPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, adv, result, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func recommend(ctx context.Context, cmd *cobra.Command, adv *advisor.Advisor, opts advisor.Options) (*advisor.Result, error) {
	needs, _ := cmd.Flags().GetStringSlice("needs")

	if businessID := cmd.Flag("business-id").Value.String(); businessID != "" {
		params := registry.ProfileParams{
			Stage:            funding.Stage(cmd.Flag("stage").Value.String()),
			RevenueClass:     cmd.Flag("revenue-class").Value.String(),
			Employees:        flagInt(cmd, "employees"),
			FundingNeedTypes: needs,
			FundingAmountMin: flagAmount(cmd, "min-amount"),
			FundingAmountMax: flagAmount(cmd, "max-amount"),
			Country:          cmd.Flag("country").Value.String(),
		}
		return adv.RecommendByBusinessID(ctx, businessID, params, opts)
	}

	company := &funding.CompanyProfile{
		Name:             cmd.Flag("name").Value.String(),
		Industry:         cmd.Flag("industry").Value.String(),
		RevenueClass:     cmd.Flag("revenue-class").Value.String(),
		Employees:        flagInt(cmd, "employees"),
		Stage:            funding.Stage(cmd.Flag("stage").Value.String()),
		FundingNeedTypes: needs,
		FundingAmountMin: flagAmount(cmd, "min-amount"),
		FundingAmountMax: flagAmount(cmd, "max-amount"),
		Country:          cmd.Flag("country").Value.String(),
	}
	if company.Name == "" {
		company.Name = "Unnamed company"
	}

	return adv.Recommend(ctx, company, opts)
}

func handleAction(ctx context.Context, action string, adv *advisor.Advisor, result *advisor.Result, logger *zap.Logger) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptDumpToFile:
		filename, err := dumpToTmpFile(result)
		if err != nil {
			return fmt.Errorf("dump recommendations to file: %w", err)
		}
		logger.Info("dumped recommendations to file", zap.String("filename", filename))
		return nil
	case PromptAIExplanations:
		if !adv.HasRewriter() {
			logger.Warn("ai rewriter is not configured",
				zap.String("hint", "enable ai in the configuration file and provide a gemini api key"),
			)
			return nil
		}
		enriched, err := adv.Recommend(ctx, result.Company, advisor.Options{Rewrite: true, Summarize: true})
		if err != nil {
			return err
		}
		*result = *enriched
		printResult(result)
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printResult(result *advisor.Result) {
	fmt.Printf("\nRecommendations for %s (%s, %s)\n",
		result.Company.Name, result.Company.Stage, result.Company.Country)
	if result.Summary != "" {
		fmt.Printf("\n%s\n", result.Summary)
	}

	for i, rec := range result.Recommendations {
		fmt.Printf("\n%d. %s by %s (score %d)\n",
			i+1, rec.Instrument.Name, rec.Instrument.Provider, rec.Score)

		explanation := rec.Explanation
		if rec.AIExplanation != "" {
			explanation = rec.AIExplanation
		}
		fmt.Printf("   %s\n", explanation)

		for _, reason := range rec.Reasons {
			fmt.Printf("   - %s\n", reason)
		}
	}
	fmt.Println()
}

func dumpToTmpFile(result *advisor.Result) (string, error) {
	file, err := os.CreateTemp("", app+"-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}

	if _, err := file.Write(pretty); err != nil {
		return "", err
	}

	return file.Name(), nil
}

func flagBool(cmd *cobra.Command, name string) bool {
	return strings.EqualFold(cmd.Flag(name).Value.String(), "true")
}

func flagInt(cmd *cobra.Command, name string) int {
	v, _ := strconv.Atoi(cmd.Flag(name).Value.String())
	return v
}

// flagAmount treats an unset or zero amount flag as absent.
func flagAmount(cmd *cobra.Command, name string) *int {
	if !cmd.Flag(name).Changed {
		return nil
	}
	v := flagInt(cmd, name)
	if v == 0 {
		return nil
	}
	return &v
}
