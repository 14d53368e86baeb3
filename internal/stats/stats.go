// Package stats computes run summaries and writes the per-run artifact
// directory: cycle results, the final best record, the snapshot FASTA, and
// the similarity trend chart.
package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a run's best-similarity history.
type Summary struct {
	Cycles    int     `json:"cycles"`
	FinalBest float64 `json:"final_best"`
	BestMean  float64 `json:"best_mean"`
	BestStd   float64 `json:"best_std"`
	BestMax   float64 `json:"best_max"`
	BestMin   float64 `json:"best_min"`
}

// SummarizeBestHistory reduces the per-cycle best-similarity series.
func SummarizeBestHistory(history []float64) Summary {
	if len(history) == 0 {
		return Summary{}
	}
	summary := Summary{
		Cycles:    len(history),
		FinalBest: history[len(history)-1],
		BestMean:  stat.Mean(history, nil),
		BestMax:   floats.Max(history),
		BestMin:   floats.Min(history),
	}
	if len(history) > 1 {
		summary.BestStd = stat.StdDev(history, nil)
	}
	return summary
}
