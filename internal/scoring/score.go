// Package scoring implements the matching engine: a fixed, ordered list of
// criterion evaluators mapping a company profile and a funding instrument to
// an additive integer score with one human-readable reason per criterion.
//
// The constants are hand-tuned and intentionally asymmetric: the geography
// mismatch penalty dominates every positive signal so out-of-region
// instruments sink to the bottom of the ranking instead of being dropped.
package scoring

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/velmala/funding-advisor/internal/funding"
)

// verdict is the outcome of one criterion. A criterion that cannot be
// evaluated (missing data, unparseable window) still produces a reason but
// leaves the score untouched.
type verdict struct {
	applied bool
	delta   int
	reason  string
}

func applied(delta int, reason string) verdict {
	return verdict{applied: true, delta: delta, reason: reason}
}

func skipped(reason string) verdict {
	return verdict{reason: reason}
}

type criterion func(c *funding.CompanyProfile, in *funding.Instrument, now time.Time) verdict

// criteria in canonical evaluation order. The order only affects the sequence
// of reasons, never the total.
var criteria = []criterion{
	geographyFit,
	stageFit,
	needCoverage,
	amountFit,
	industryFit,
	timingFit,
}

// Score evaluates every criterion for the pair and returns the summed score
// with the ordered reasons. Pure and deterministic: identical inputs,
// including the evaluation time, always produce identical output.
func Score(c *funding.CompanyProfile, in *funding.Instrument, now time.Time) (int, []string) {
	score := 0
	reasons := make([]string, 0, len(criteria))

	for _, evaluate := range criteria {
		v := evaluate(c, in, now)
		if v.applied {
			score += v.delta
		}
		reasons = append(reasons, v.reason)
	}

	return score, reasons
}

func geographyFit(c *funding.CompanyProfile, in *funding.Instrument, _ time.Time) verdict {
	country := strings.ToLower(strings.TrimSpace(c.Country))
	geos := make([]string, 0, len(in.Geography))
	for _, g := range in.Geography {
		geos = append(geos, strings.ToLower(g))
	}

	if country == "finland" || country == "fi" {
		if containsString(geos, "fi") {
			return applied(4, "Company is in Finland and the instrument explicitly covers FI.")
		}
		if containsAny(geos, "eu", "europe", "nordic") {
			return applied(1, "Instrument is regional (EU / Nordic) and may cover Finnish companies.")
		}
		return applied(-8, fmt.Sprintf("Instrument geography [%s] does not appear to cover Finland.",
			strings.Join(in.Geography, ", ")))
	}

	if containsString(geos, country) {
		return applied(2, fmt.Sprintf("Instrument explicitly covers company country %s.", c.Country))
	}
	if containsAny(geos, "eu", "europe") {
		return applied(1, "Instrument is EU-wide and may include the company country.")
	}
	return applied(-5, fmt.Sprintf("Geographic fit uncertain for country %s.", c.Country))
}

func stageFit(c *funding.CompanyProfile, in *funding.Instrument, _ time.Time) verdict {
	targets := formatStages(in.TargetStages)

	for _, target := range in.TargetStages {
		if c.Stage == target {
			return applied(5, fmt.Sprintf("Company stage '%s' is in target stages %s.", c.Stage, targets))
		}
	}

	compIdx := c.Stage.Index()
	if compIdx >= 0 {
		for _, target := range in.TargetStages {
			idx := target.Index()
			if idx < 0 {
				continue
			}
			if abs(compIdx-idx) == 1 {
				return applied(2, fmt.Sprintf("Company stage '%s' is adjacent to target stages %s.", c.Stage, targets))
			}
		}
	}

	return applied(-4, fmt.Sprintf("Company stage '%s' is not aligned with target stages %s.", c.Stage, targets))
}

func needCoverage(c *funding.CompanyProfile, in *funding.Instrument, _ time.Time) verdict {
	companyNeeds := lowerSet(c.FundingNeedTypes)
	instrumentNeeds := lowerSet(in.FundingNeedTypes)

	var overlap []string
	for need := range companyNeeds {
		if _, ok := instrumentNeeds[need]; ok {
			overlap = append(overlap, need)
		}
	}

	if len(overlap) == 0 {
		return applied(-4, "No overlap between funding needs and instrument focus.")
	}

	coverage := float64(len(overlap)) / float64(max(len(companyNeeds), 1))
	if coverage == 1 {
		return applied(6, "Funding needs fully covered by instrument focus.")
	}

	sort.Strings(overlap)
	return applied(4, "Funding need partially covered: "+strings.Join(overlap, ", "))
}

func amountFit(c *funding.CompanyProfile, in *funding.Instrument, _ time.Time) verdict {
	if c.FundingAmountMin == nil && c.FundingAmountMax == nil {
		return skipped("Funding amount not provided; fit could be improved with ranges.")
	}

	if in.MinAmount != nil && c.FundingAmountMax != nil && *c.FundingAmountMax < *in.MinAmount {
		return applied(-5, fmt.Sprintf("Requested max (%d €) is below instrument minimum (%d €).",
			*c.FundingAmountMax, *in.MinAmount))
	}

	if in.MaxAmount != nil && c.FundingAmountMin != nil && *c.FundingAmountMin > *in.MaxAmount {
		return applied(-5, fmt.Sprintf("Requested min (%d €) is above instrument maximum (%d €).",
			*c.FundingAmountMin, *in.MaxAmount))
	}

	return applied(2, "Requested amount overlaps the instrument's range.")
}

func industryFit(c *funding.CompanyProfile, in *funding.Instrument, _ time.Time) verdict {
	labels := make([]string, 0, len(in.TargetIndustries))
	for _, label := range in.TargetIndustries {
		labels = append(labels, strings.ToLower(label))
	}

	if containsString(labels, funding.IndustryAll) {
		return applied(1, "Instrument is open to all industries.")
	}

	// Token-level containment in either direction. Deliberately loose: a short
	// token like "ai" also matches "air". Downstream expectations depend on it.
	tokens := industryTokens(c.Industry)
	for _, label := range labels {
		for token := range tokens {
			if strings.Contains(label, token) || strings.Contains(token, label) {
				return applied(3, fmt.Sprintf("Company industry '%s' matches instrument focus '%s'.",
					c.Industry, label))
			}
		}
	}

	return applied(-2, fmt.Sprintf("Industry '%s' not clearly matched to [%s].",
		c.Industry, strings.Join(in.TargetIndustries, ", ")))
}

// applicationWindowSeparator is the en-dash used between the start and end
// dates of a call window, e.g. "2025-01-01 – 2025-03-31".
const applicationWindowSeparator = "–"

func timingFit(_ *funding.CompanyProfile, in *funding.Instrument, now time.Time) verdict {
	if in.ApplicationType == funding.ApplicationContinuous {
		return applied(1, "Continuous application accepted.")
	}

	end, ok := parseWindowEnd(in.ApplicationWindow)
	if !ok {
		return skipped("Could not parse application window for urgency scoring.")
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daysLeft := int(end.Sub(today).Hours() / 24)

	switch {
	case daysLeft >= 0 && daysLeft <= 30:
		return applied(2, fmt.Sprintf("Call deadline approaching in %d days.", daysLeft))
	case daysLeft < 0:
		return applied(-2, "Call deadline appears to have passed.")
	default:
		return skipped(fmt.Sprintf("Call open; %d days until deadline.", daysLeft))
	}
}

func parseWindowEnd(window string) (time.Time, bool) {
	parts := strings.Split(window, applicationWindowSeparator)
	if len(parts) != 2 {
		return time.Time{}, false
	}

	end, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(parts[1]), time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	return end, true
}

func industryTokens(industry string) map[string]struct{} {
	cleaned := strings.ReplaceAll(strings.ToLower(industry), ",", " ")
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(cleaned) {
		tokens[token] = struct{}{}
	}
	return tokens
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

func formatStages(stages []funding.Stage) string {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		names = append(names, string(s))
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func containsAny(list []string, targets ...string) bool {
	for _, target := range targets {
		if containsString(list, target) {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
