package scoring

import (
	"sort"
	"time"

	"github.com/velmala/funding-advisor/internal/funding"
)

// ScoredResult pairs a catalog instrument with its score and the reasons the
// criteria produced, in evaluation order.
type ScoredResult struct {
	Instrument *funding.Instrument `json:"instrument"`
	Score      int                 `json:"score"`
	Reasons    []string            `json:"reasons"`
}

// Rank scores every catalog entry independently and returns the results
// ordered by score descending. The sort is stable, so ties keep the catalog
// order. Nothing is filtered: poor fits stay visible with their
// negative-evidence reasons.
func Rank(c *funding.CompanyProfile, catalog *funding.Catalog, now time.Time) []*ScoredResult {
	results := make([]*ScoredResult, 0, catalog.Len())

	for _, instrument := range catalog.Items {
		score, reasons := Score(c, instrument, now)
		results = append(results, &ScoredResult{
			Instrument: instrument,
			Score:      score,
			Reasons:    reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}
