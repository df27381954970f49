package advisor

import (
	"fmt"
	"strings"

	"github.com/velmala/funding-advisor/internal/funding"
)

// Explanation renders a locally templated explanation for one recommendation.
// Unlike the AI rewrite it is always available and costs nothing.
func Explanation(company *funding.CompanyProfile, in *funding.Instrument) string {
	stages := make([]string, 0, len(in.TargetStages))
	for _, s := range in.TargetStages {
		stages = append(stages, string(s))
	}

	parts := []string{
		fmt.Sprintf("%s by %s is designed for %s companies in %s.",
			in.Name, in.Provider, strings.Join(stages, ", "), strings.Join(in.Geography, ", ")),
		fmt.Sprintf("Your company is at %s stage with funding needs around %s, which matches this instrument's focus.",
			company.Stage, strings.Join(company.FundingNeedTypes, ", ")),
	}

	if in.MinAmount != nil || in.MaxAmount != nil {
		lower := "0"
		if in.MinAmount != nil {
			lower = fmt.Sprintf("%d", *in.MinAmount)
		}
		upper := "∞"
		if in.MaxAmount != nil {
			upper = fmt.Sprintf("%d", *in.MaxAmount)
		}
		parts = append(parts, fmt.Sprintf("It typically supports project sizes between %s and %s EUR.", lower, upper))
	}

	return strings.Join(parts, " ")
}
