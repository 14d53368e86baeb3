package align

import "rmss/internal/model"

// Scoring scheme for global pairwise alignment: match +1, mismatch 0, gap 0.
// With free gaps the optimal global score equals the length of the longest
// common subsequence, which is deterministic regardless of which optimal
// alignment realizes it.
const (
	matchScore    = 1.0
	mismatchScore = 0.0
	gapScore      = 0.0
)

// GlobalScore computes the optimal global alignment score of two proteins by
// dynamic programming over two rolling rows.
func GlobalScore(a, b model.Protein) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]float64, len(b)+1)
	curr := make([]float64, len(b)+1)
	for j := 1; j <= len(b); j++ {
		prev[j] = prev[j-1] + gapScore
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = prev[0] + gapScore
		for j := 1; j <= len(b); j++ {
			diag := prev[j-1] + mismatchScore
			if a[i-1] == b[j-1] {
				diag = prev[j-1] + matchScore
			}
			best := diag
			if up := prev[j] + gapScore; up > best {
				best = up
			}
			if left := curr[j-1] + gapScore; left > best {
				best = left
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Similarity normalizes the alignment score into [0,100]:
// score / max(len(a), len(b)) * 100. Empty input scores 0; identical inputs
// short-circuit to 100 without running the alignment.
func Similarity(a, b model.Protein) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if a == b {
		return 100
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return GlobalScore(a, b) / float64(longest) * 100
}
