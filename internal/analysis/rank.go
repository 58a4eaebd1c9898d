package analysis

import (
	"sort"

	"tariff-compare/internal/comparison"
)

type RankedScenario struct {
	comparison.NamedResult
	Rank int
}

// RankBySavings orders accepted scenarios by SavingsWithSolar, largest first.
// Ties keep input order. Rejected scenarios are left out.
func RankBySavings(results []comparison.NamedResult) []RankedScenario {
	out := make([]RankedScenario, 0, len(results))
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		out = append(out, RankedScenario{NamedResult: r})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Result.SavingsWithSolar > out[j].Result.SavingsWithSolar
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
