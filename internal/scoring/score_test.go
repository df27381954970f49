package scoring

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/velmala/funding-advisor/internal/funding"
)

var evalTime = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func finnishCompany() *funding.CompanyProfile {
	return &funding.CompanyProfile{
		Name:             "Example AI Startup",
		Industry:         "software, AI",
		RevenueClass:     "<250k",
		Employees:        5,
		Stage:            funding.StageSeed,
		FundingNeedTypes: []string{"RDI", "internationalization"},
		FundingAmountMin: intPtr(50000),
		FundingAmountMax: intPtr(200000),
		Country:          "Finland",
	}
}

func TestGeographyFitFinnishCompany(t *testing.T) {
	company := finnishCompany()

	cases := []struct {
		geography []string
		delta     int
	}{
		{[]string{"FI"}, 4},
		{[]string{"EU"}, 1},
		{[]string{"Nordic"}, 1},
		{[]string{"US"}, -8},
	}

	for _, tc := range cases {
		v := geographyFit(company, &funding.Instrument{Geography: tc.geography}, evalTime)
		if !v.applied || v.delta != tc.delta {
			t.Fatalf("geography %v: expected delta %d, got %+v", tc.geography, tc.delta, v)
		}
		if v.reason == "" {
			t.Fatalf("geography %v: expected a reason", tc.geography)
		}
	}

	// The FI/US gap is the dominant term of the whole score.
	fi := geographyFit(company, &funding.Instrument{Geography: []string{"FI"}}, evalTime)
	us := geographyFit(company, &funding.Instrument{Geography: []string{"US"}}, evalTime)
	if fi.delta-us.delta != 12 {
		t.Fatalf("expected a 12-point FI/US gap, got %d", fi.delta-us.delta)
	}
}

func TestGeographyFitForeignCompany(t *testing.T) {
	company := finnishCompany()
	company.Country = "Sweden"

	cases := []struct {
		geography []string
		delta     int
	}{
		{[]string{"SE", "sweden"}, 2},
		{[]string{"EU"}, 1},
		{[]string{"US"}, -5},
	}

	for _, tc := range cases {
		v := geographyFit(company, &funding.Instrument{Geography: tc.geography}, evalTime)
		if v.delta != tc.delta {
			t.Fatalf("geography %v: expected delta %d, got %d (%s)", tc.geography, tc.delta, v.delta, v.reason)
		}
	}
}

func TestStageFit(t *testing.T) {
	company := finnishCompany() // seed

	cases := []struct {
		targets []funding.Stage
		delta   int
	}{
		{[]funding.Stage{funding.StageSeed}, 5},
		{[]funding.Stage{funding.StageGrowth}, 2},
		{[]funding.Stage{funding.StagePreSeed}, 2},
		{[]funding.Stage{funding.StageScaleUp}, -4},
		{nil, -4},
	}

	for _, tc := range cases {
		v := stageFit(company, &funding.Instrument{TargetStages: tc.targets}, evalTime)
		if v.delta != tc.delta {
			t.Fatalf("targets %v: expected delta %d, got %d (%s)", tc.targets, tc.delta, v.delta, v.reason)
		}
	}
}

func TestNeedCoverage(t *testing.T) {
	company := finnishCompany()
	company.FundingNeedTypes = []string{"RDI"}

	full := needCoverage(company, &funding.Instrument{FundingNeedTypes: []string{"RDI", "investments"}}, evalTime)
	if full.delta != 6 {
		t.Fatalf("expected full coverage +6, got %d (%s)", full.delta, full.reason)
	}

	company.FundingNeedTypes = []string{"RDI", "investments"}
	partial := needCoverage(company, &funding.Instrument{FundingNeedTypes: []string{"RDI"}}, evalTime)
	if partial.delta != 4 {
		t.Fatalf("expected partial coverage +4, got %d (%s)", partial.delta, partial.reason)
	}
	if !strings.Contains(partial.reason, "rdi") {
		t.Fatalf("expected partial reason to cite the matched need, got %q", partial.reason)
	}

	none := needCoverage(company, &funding.Instrument{FundingNeedTypes: []string{"working capital"}}, evalTime)
	if none.delta != -4 {
		t.Fatalf("expected no overlap -4, got %d", none.delta)
	}
}

func TestNeedCoverageReasonDeterministic(t *testing.T) {
	company := finnishCompany()
	company.FundingNeedTypes = []string{"investments", "RDI", "internationalization"}
	instrument := &funding.Instrument{FundingNeedTypes: []string{"RDI", "investments"}}

	first := needCoverage(company, instrument, evalTime)
	for i := 0; i < 10; i++ {
		again := needCoverage(company, instrument, evalTime)
		if again.reason != first.reason {
			t.Fatalf("matched needs must be sorted for determinism: %q vs %q", first.reason, again.reason)
		}
	}
	if !strings.Contains(first.reason, "investments, rdi") {
		t.Fatalf("expected alphabetically sorted needs in reason, got %q", first.reason)
	}
}

func TestAmountFit(t *testing.T) {
	company := finnishCompany()
	company.FundingAmountMin = nil
	company.FundingAmountMax = intPtr(100000)

	below := amountFit(company, &funding.Instrument{MinAmount: intPtr(200000)}, evalTime)
	if !below.applied || below.delta != -5 {
		t.Fatalf("expected -5 for requested max below minimum, got %+v", below)
	}
	if !strings.Contains(below.reason, "100000") || !strings.Contains(below.reason, "200000") {
		t.Fatalf("expected reason to cite both figures, got %q", below.reason)
	}

	company.FundingAmountMin = intPtr(900000)
	company.FundingAmountMax = nil
	above := amountFit(company, &funding.Instrument{MaxAmount: intPtr(500000)}, evalTime)
	if above.delta != -5 {
		t.Fatalf("expected -5 for requested min above maximum, got %+v", above)
	}

	company.FundingAmountMin = intPtr(50000)
	company.FundingAmountMax = intPtr(200000)
	overlap := amountFit(company, &funding.Instrument{MinAmount: intPtr(100000), MaxAmount: intPtr(500000)}, evalTime)
	if overlap.delta != 2 {
		t.Fatalf("expected +2 for overlapping ranges, got %+v", overlap)
	}

	// An instrument without bounds cannot exclude anything.
	unbounded := amountFit(company, &funding.Instrument{}, evalTime)
	if unbounded.delta != 2 {
		t.Fatalf("expected +2 for unbounded instrument, got %+v", unbounded)
	}
}

func TestAmountFitNotEvaluatedWithoutCompanyData(t *testing.T) {
	company := finnishCompany()
	company.FundingAmountMin = nil
	company.FundingAmountMax = nil

	v := amountFit(company, &funding.Instrument{MinAmount: intPtr(100000)}, evalTime)
	if v.applied {
		t.Fatalf("expected no score change without company amounts, got %+v", v)
	}
	if !strings.Contains(v.reason, "not provided") {
		t.Fatalf("expected informative reason, got %q", v.reason)
	}
}

func TestIndustryFit(t *testing.T) {
	company := finnishCompany() // "software, AI"

	open := industryFit(company, &funding.Instrument{TargetIndustries: []string{"All"}}, evalTime)
	if open.delta != 1 {
		t.Fatalf("expected +1 for open instrument, got %+v", open)
	}

	match := industryFit(company, &funding.Instrument{TargetIndustries: []string{"software"}}, evalTime)
	if match.delta != 3 {
		t.Fatalf("expected +3 for industry match, got %+v", match)
	}
	if !strings.Contains(match.reason, "software") {
		t.Fatalf("expected reason to name the matched label, got %q", match.reason)
	}

	miss := industryFit(company, &funding.Instrument{TargetIndustries: []string{"forestry"}}, evalTime)
	if miss.delta != -2 {
		t.Fatalf("expected -2 for no match, got %+v", miss)
	}
}

func TestIndustryFitIsDeliberatelyLoose(t *testing.T) {
	company := finnishCompany()
	company.Industry = "ai"

	// Substring containment in either direction: "ai" is inside "air".
	v := industryFit(company, &funding.Instrument{TargetIndustries: []string{"air transport"}}, evalTime)
	if v.delta != 3 {
		t.Fatalf("expected loose token containment to match, got %+v", v)
	}
}

func TestTimingFit(t *testing.T) {
	instrument := func(window string) *funding.Instrument {
		return &funding.Instrument{
			ApplicationType:   funding.ApplicationCallBased,
			ApplicationWindow: window,
		}
	}

	continuous := timingFit(nil, &funding.Instrument{ApplicationType: funding.ApplicationContinuous}, evalTime)
	if continuous.delta != 1 {
		t.Fatalf("expected +1 for continuous application, got %+v", continuous)
	}

	soon := timingFit(nil, instrument("2025-01-01 – 2025-02-11"), evalTime)
	if soon.delta != 2 {
		t.Fatalf("expected +2 for approaching deadline, got %+v", soon)
	}
	if !strings.Contains(soon.reason, "10 days") {
		t.Fatalf("expected days-left in reason, got %q", soon.reason)
	}

	passed := timingFit(nil, instrument("2024-10-01 – 2024-12-31"), evalTime)
	if passed.delta != -2 {
		t.Fatalf("expected -2 for passed deadline, got %+v", passed)
	}

	distant := timingFit(nil, instrument("2025-01-01 – 2025-12-31"), evalTime)
	if distant.applied {
		t.Fatalf("expected no score change for distant deadline, got %+v", distant)
	}
	if !strings.Contains(distant.reason, "days until deadline") {
		t.Fatalf("expected days remaining in reason, got %q", distant.reason)
	}

	garbage := timingFit(nil, instrument("whenever"), evalTime)
	if garbage.applied {
		t.Fatalf("expected unparseable window to be absorbed, got %+v", garbage)
	}
	if !strings.Contains(garbage.reason, "Could not parse") {
		t.Fatalf("expected explanatory reason, got %q", garbage.reason)
	}

	missing := timingFit(nil, instrument(""), evalTime)
	if missing.applied {
		t.Fatalf("expected missing window to be absorbed, got %+v", missing)
	}
}

func TestTimingFitDeadlineBoundary(t *testing.T) {
	today := timingFit(nil, &funding.Instrument{
		ApplicationType:   funding.ApplicationCallBased,
		ApplicationWindow: "2025-01-01 – 2025-02-01",
	}, evalTime)
	if today.delta != 2 {
		t.Fatalf("expected a deadline today to count as approaching, got %+v", today)
	}
	if !strings.Contains(today.reason, "0 days") {
		t.Fatalf("expected 0 days left, got %q", today.reason)
	}
}

func TestTimingFitUsesUTCDate(t *testing.T) {
	// 2025-03-03 10:00 in UTC+14 is still 2025-03-02 in UTC, so the
	// deadline is 31 days out and must not count as approaching.
	local := time.Date(2025, 3, 3, 10, 0, 0, 0, time.FixedZone("UTC+14", 14*3600))

	v := timingFit(nil, &funding.Instrument{
		ApplicationType:   funding.ApplicationCallBased,
		ApplicationWindow: "2025-01-01 – 2025-04-02",
	}, local)
	if v.applied {
		t.Fatalf("expected a 31-day deadline to stay unscored, got %+v", v)
	}
	if !strings.Contains(v.reason, "31 days") {
		t.Fatalf("expected 31 days until deadline, got %q", v.reason)
	}
}

func TestScoreDeterministic(t *testing.T) {
	company := finnishCompany()
	instrument := &funding.Instrument{
		ID:               "call",
		TargetStages:     []funding.Stage{funding.StageSeed},
		TargetIndustries: []string{"software"},
		FundingNeedTypes: []string{"RDI"},
		Geography:        []string{"FI"},
		ApplicationType:  funding.ApplicationCallBased,
		ApplicationWindow: fmt.Sprintf("2025-01-01 %s 2025-02-15",
			applicationWindowSeparator),
	}

	firstScore, firstReasons := Score(company, instrument, evalTime)
	for i := 0; i < 20; i++ {
		score, reasons := Score(company, instrument, evalTime)
		if score != firstScore {
			t.Fatalf("score changed between runs: %d vs %d", firstScore, score)
		}
		if !reflect.DeepEqual(reasons, firstReasons) {
			t.Fatalf("reasons changed between runs: %v vs %v", firstReasons, reasons)
		}
	}
}

func TestScoreFullMatch(t *testing.T) {
	company := finnishCompany()
	instrument := &funding.Instrument{
		ID:               "perfect",
		Name:             "Perfect Fit Grant",
		TargetStages:     []funding.Stage{funding.StageSeed},
		TargetIndustries: []string{"all"},
		FundingNeedTypes: []string{"RDI", "internationalization"},
		MinAmount:        intPtr(10000),
		MaxAmount:        intPtr(500000),
		Geography:        []string{"FI"},
		ApplicationType:  funding.ApplicationContinuous,
	}

	score, reasons := Score(company, instrument, evalTime)

	// 4 (geography) + 5 (stage) + 6 (needs) + 2 (amount) + 1 (industry) + 1 (timing)
	if score != 19 {
		t.Fatalf("expected total score 19, got %d", score)
	}
	if len(reasons) != 6 {
		t.Fatalf("expected six reasons, got %d: %v", len(reasons), reasons)
	}

	ordered := []string{"Finland", "stage", "Funding needs", "amount", "industries", "Continuous"}
	for i, fragment := range ordered {
		if !strings.Contains(reasons[i], fragment) {
			t.Fatalf("reason %d: expected %q criterion, got %q", i, fragment, reasons[i])
		}
	}
}
