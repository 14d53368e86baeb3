package model

import (
	"errors"
	"fmt"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Sequence is an immutable nucleotide sequence over the alphabet {A,T,C,G}.
// Mutation always produces a new Sequence.
type Sequence string

// Protein is an amino-acid sequence in one-letter code; '*' marks a stop.
type Protein string

// Lineage is the ordered ancestry chain of a candidate, oldest first. The
// last entry is the candidate's current sequence.
type Lineage []Sequence

func (l Lineage) Last() Sequence {
	if len(l) == 0 {
		return ""
	}
	return l[len(l)-1]
}

// Parent returns the second-newest entry, i.e. the immediate ancestor of the
// current sequence.
func (l Lineage) Parent() Sequence {
	if len(l) < 2 {
		return ""
	}
	return l[len(l)-2]
}

func (l Lineage) Clone() Lineage {
	return append(Lineage(nil), l...)
}

// Candidate pairs a sequence with its ancestry record.
type Candidate struct {
	Sequence Sequence `json:"sequence"`
	Lineage  Lineage  `json:"lineage"`
}

// NewCandidate seeds a candidate whose lineage contains only itself.
func NewCandidate(seq Sequence) Candidate {
	return Candidate{Sequence: seq, Lineage: Lineage{seq}}
}

// Unchanged reports whether the candidate is literally identical to its
// immediate ancestor.
func (c Candidate) Unchanged() bool {
	return len(c.Lineage) >= 2 && c.Lineage.Last() == c.Lineage.Parent()
}

// ScoredCandidate is a candidate plus its similarity scores, both in [0,100].
// TargetSimilarity compares against the fixed target protein;
// StepwiseSimilarity is the maximum similarity against the translations of
// the parent generation that produced it.
type ScoredCandidate struct {
	Candidate          Candidate
	TargetSimilarity   float64
	StepwiseSimilarity float64
}

// MutationConfig holds the per-base mutation model. MutationRate is a
// probability in [0,1]. The ratio pairs are relative categorical weights:
// they do not need to sum to 1, only their proportion matters.
type MutationConfig struct {
	MutationRate float64 `json:"mutation_rate"`
	SubRatio     float64 `json:"sub_ratio"`
	IndelRatio   float64 `json:"indel_ratio"`
	TranRatio    float64 `json:"tran_ratio"`
	TransvRatio  float64 `json:"transv_ratio"`
}

var ErrNoSequence = errors.New("sequence is required")

func (c MutationConfig) Validate() error {
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0,1]: %g", c.MutationRate)
	}
	if c.SubRatio < 0 || c.IndelRatio < 0 {
		return errors.New("substitution/indel ratios must be >= 0")
	}
	if c.SubRatio+c.IndelRatio <= 0 {
		return errors.New("substitution and indel ratios must not both be zero")
	}
	if c.TranRatio < 0 || c.TransvRatio < 0 {
		return errors.New("transition/transversion ratios must be >= 0")
	}
	if c.TranRatio+c.TransvRatio <= 0 {
		return errors.New("transition and transversion ratios must not both be zero")
	}
	return nil
}

// ValidateSequence checks that a sequence is non-empty and drawn from the
// nucleotide alphabet.
func ValidateSequence(seq Sequence) error {
	if len(seq) == 0 {
		return ErrNoSequence
	}
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'T', 'C', 'G':
		default:
			return fmt.Errorf("invalid nucleotide %q at position %d", seq[i], i)
		}
	}
	return nil
}

// CycleRecord is one persisted row per selected candidate per cycle,
// mirroring the cycle results CSV columns.
type CycleRecord struct {
	VersionedRecord
	Cycle              int      `json:"cycle"`
	ParentSequence     Sequence `json:"parent_sequence"`
	SelectedSequence   Sequence `json:"selected_sequence"`
	InputSimilarity    float64  `json:"input_similarity"`
	StepwiseSimilarity float64  `json:"stepwise_similarity"`
	TargetSimilarity   float64  `json:"target_similarity"`
	ParentProtein      Protein  `json:"parent_protein"`
	SelectedProtein    Protein  `json:"selected_protein"`
}

// RunRecord is the final persisted summary of a run.
type RunRecord struct {
	VersionedRecord
	RunID          string   `json:"run_id"`
	State          string   `json:"state"`
	Cycles         int      `json:"cycles"`
	InputSequence  Sequence `json:"input_sequence"`
	BestSequence   Sequence `json:"best_sequence"`
	InputProtein   Protein  `json:"input_protein"`
	BestProtein    Protein  `json:"best_protein"`
	BestSimilarity float64  `json:"best_similarity"`
	UnchangedCount int      `json:"unchanged_count"`
	CreatedAtUTC   string   `json:"created_at_utc"`
}
