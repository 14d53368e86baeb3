package mutate

import (
	"errors"
	"math/rand"

	"rmss/internal/model"
)

var bases = []byte{'A', 'T', 'C', 'G'}

// maxDeletionRun bounds how many consecutive bases a single deletion event
// can remove.
const maxDeletionRun = 3

// Replicator applies the per-base stochastic mutation model. It is the sole
// consumer of randomness in a run: for a fixed seed the produced offspring
// are fully deterministic.
type Replicator struct {
	Rand *rand.Rand
}

func NewReplicator(seed int64) *Replicator {
	return &Replicator{Rand: rand.New(rand.NewSource(seed))}
}

// Mutate walks the sequence left to right and applies at most one mutation
// event per visited position. A substitution replaces the base in place and
// advances. An insertion places a uniformly random base at the current
// position and advances past it. A deletion removes a run of
// 1..min(3, remaining) bases and does not advance, since following bases
// shift into the current position.
func (r *Replicator) Mutate(seq model.Sequence, cfg model.MutationConfig) (model.Sequence, error) {
	if r == nil || r.Rand == nil {
		return "", errors.New("random source is required")
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	buf := []byte(seq)
	i := 0
	for i < len(buf) {
		if r.Rand.Float64() >= cfg.MutationRate {
			i++
			continue
		}
		if r.pickWeighted(cfg.SubRatio, cfg.IndelRatio) {
			if r.pickWeighted(cfg.TranRatio, cfg.TransvRatio) {
				buf[i] = Transition(buf[i])
			} else {
				buf[i] = r.transversion(buf[i])
			}
			i++
			continue
		}
		if r.Rand.Float64() < 0.5 {
			buf = append(buf, 0)
			copy(buf[i+1:], buf[i:])
			buf[i] = bases[r.Rand.Intn(len(bases))]
			i++
		} else {
			runLen := 1 + r.Rand.Intn(min(maxDeletionRun, len(buf)-i))
			buf = append(buf[:i], buf[i+runLen:]...)
		}
	}
	return model.Sequence(buf), nil
}

// Replicate produces n independent offspring of one parent. Each offspring's
// lineage extends the parent's lineage with the offspring sequence.
func (r *Replicator) Replicate(parent model.Candidate, cfg model.MutationConfig, n int) ([]model.Candidate, error) {
	if n <= 0 {
		return nil, errors.New("replication count must be > 0")
	}
	out := make([]model.Candidate, 0, n)
	for i := 0; i < n; i++ {
		child, err := r.Mutate(parent.Sequence, cfg)
		if err != nil {
			return nil, err
		}
		lineage := parent.Lineage.Clone()
		lineage = append(lineage, child)
		out = append(out, model.Candidate{Sequence: child, Lineage: lineage})
	}
	return out, nil
}

// pickWeighted draws between two outcomes with relative weights a and b and
// reports whether the first won. Weights were validated to be non-negative
// with a positive sum.
func (r *Replicator) pickWeighted(a, b float64) bool {
	return r.Rand.Float64()*(a+b) < a
}

// Transition maps each base to its chemical-class partner: A<->G, C<->T.
// The mapping is an involution.
func Transition(base byte) byte {
	switch base {
	case 'A':
		return 'G'
	case 'G':
		return 'A'
	case 'C':
		return 'T'
	case 'T':
		return 'C'
	}
	return base
}

// transversion maps a base to one of its two cross-class alternatives,
// chosen uniformly: A,G -> {C,T}; C,T -> {A,G}.
func (r *Replicator) transversion(base byte) byte {
	switch base {
	case 'A', 'G':
		if r.Rand.Intn(2) == 0 {
			return 'C'
		}
		return 'T'
	case 'C', 'T':
		if r.Rand.Intn(2) == 0 {
			return 'A'
		}
		return 'G'
	}
	return base
}
