// Package stats provides statistical summaries over a clonewatch run's
// per-format duplication percentages, used by internal/reportfmt.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/clonewatch/clonewatch/pkg/clone"
)

// Percentile calculates the p-th percentile of a sorted slice.
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Distribution summarizes the spread of duplication percentages across
// every format a run touched.
type Distribution struct {
	Mean       float64
	StdDev     float64
	Min        float64
	Max        float64
	Median     float64
	FormatsSeen int
}

// Summarize computes a Distribution over a Statistic's per-format
// duplication percentages. An empty or single-format Statistic still
// produces a usable (if degenerate) Distribution.
func Summarize(s *clone.Statistic) Distribution {
	percentages := make([]float64, 0, len(s.ByFormat))
	for _, fs := range s.ByFormat {
		percentages = append(percentages, fs.Percentage)
	}
	sort.Float64s(percentages)

	d := Distribution{FormatsSeen: len(percentages)}
	if len(percentages) == 0 {
		return d
	}

	d.Mean, d.StdDev = stat.MeanStdDev(percentages, nil)
	d.Min = percentages[0]
	d.Max = percentages[len(percentages)-1]
	d.Median = stat.Quantile(0.5, stat.Empirical, percentages, nil)
	return d
}
