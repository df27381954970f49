package funding

import (
	"fmt"
	"sort"
	"strings"
)

// Stage is a company lifecycle phase. The order of the vocabulary matters:
// adjacent stages still score partial fit.
type Stage string

const (
	StagePreSeed Stage = "pre-seed"
	StageSeed    Stage = "seed"
	StageGrowth  Stage = "growth"
	StageScaleUp Stage = "scale-up"
)

// Stages lists the vocabulary in its canonical order.
var Stages = []Stage{StagePreSeed, StageSeed, StageGrowth, StageScaleUp}

var stageOrder = map[Stage]int{
	StagePreSeed: 0,
	StageSeed:    1,
	StageGrowth:  2,
	StageScaleUp: 3,
}

// Index returns the position of the stage in the canonical ordering,
// or -1 for a value outside the vocabulary.
func (s Stage) Index() int {
	idx, ok := stageOrder[s]
	if !ok {
		return -1
	}
	return idx
}

// NeedTypes is the closed vocabulary for funding need labels.
// Matching against it is case-insensitive.
var NeedTypes = []string{"RDI", "internationalization", "investments", "working capital"}

type CompanyProfile struct {
	Name             string   `json:"name"`
	BusinessID       string   `json:"business_id,omitempty"`
	Industry         string   `json:"industry"`
	RevenueClass     string   `json:"revenue_class"`
	Employees        int      `json:"employees"`
	Stage            Stage    `json:"stage"`
	FundingNeedTypes []string `json:"funding_need_types"`
	FundingAmountMin *int     `json:"funding_amount_min,omitempty"`
	FundingAmountMax *int     `json:"funding_amount_max,omitempty"`
	Country          string   `json:"country"`
}

// DefaultCountry is assumed when a profile leaves the country empty.
const DefaultCountry = "Finland"

// ValidateStage rejects a stage outside the fixed vocabulary.
func ValidateStage(stage Stage) error {
	if stage.Index() < 0 {
		return fmt.Errorf("stage %q is not one of %s", stage, joinStages())
	}
	return nil
}

// ValidateNeedTypes rejects labels outside the need vocabulary. Comparison is
// case-insensitive; the error enumerates every invalid label and the allowed set.
func ValidateNeedTypes(needs []string) error {
	allowed := make(map[string]struct{}, len(NeedTypes))
	for _, t := range NeedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}

	var invalid []string
	for _, n := range needs {
		if _, ok := allowed[strings.ToLower(n)]; !ok {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		sorted := append([]string(nil), NeedTypes...)
		sort.Strings(sorted)
		return fmt.Errorf("unknown funding need types [%s], allowed: [%s]",
			strings.Join(invalid, ", "), strings.Join(sorted, ", "))
	}

	return nil
}

// Validate checks the profile fields scoring depends on.
func (c *CompanyProfile) Validate() error {
	if err := ValidateStage(c.Stage); err != nil {
		return err
	}
	return ValidateNeedTypes(c.FundingNeedTypes)
}

func joinStages() string {
	names := make([]string, 0, len(Stages))
	for _, s := range Stages {
		names = append(names, string(s))
	}
	return "[" + strings.Join(names, ", ") + "]"
}
