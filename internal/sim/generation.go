package sim

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"rmss/internal/align"
	"rmss/internal/model"
	"rmss/internal/mutate"
	"rmss/internal/translate"
)

// ErrEmptyCycle reports a cycle that produced zero scored offspring. The run
// cannot continue with an empty parent set and aborts cleanly.
var ErrEmptyCycle = errors.New("cycle produced no scored offspring")

const maxWorkers = 61

// DefaultWorkers sizes the scoring pool at min(61, available parallelism).
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n > maxWorkers {
		return maxWorkers
	}
	if n < 1 {
		return 1
	}
	return n
}

// CycleConfig holds the per-cycle population parameters.
type CycleConfig struct {
	Replications int `json:"replications"`
	TopK         int `json:"top_k"`
	Workers      int `json:"workers"`
}

func (c CycleConfig) Validate() error {
	if c.Replications <= 0 {
		return fmt.Errorf("replications must be > 0: %d", c.Replications)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be > 0: %d", c.TopK)
	}
	return nil
}

// Generation is the mutable state threaded through the cycle loop: the
// current parent set, the best candidate ever seen across all cycles, and
// the cumulative count of selected candidates identical to their immediate
// ancestor.
type Generation struct {
	Parents        []model.Candidate
	BestSimilarity float64
	BestSequence   model.Sequence
	BestProtein    model.Protein
	UnchangedCount int

	// LastSelected is the most recent cycle's selected set, sorted by
	// descending target similarity. Consumed by the orchestrator for
	// per-cycle records.
	LastSelected []model.ScoredCandidate
}

// NewGeneration seeds the loop with a single parent.
func NewGeneration(seed model.Sequence) *Generation {
	return &Generation{Parents: []model.Candidate{model.NewCandidate(seed)}}
}

// Manager runs one replication-scoring-selection cycle at a time. The
// translation codec and similarity scorer are shared, synchronized caches;
// scoring workers only read the parent translations and the target.
type Manager struct {
	replicator *mutate.Replicator
	codec      *translate.Codec
	scorer     *align.Scorer
	mcfg       model.MutationConfig
	ccfg       CycleConfig
	target     model.Protein
	logf       func(format string, args ...any)

	// score is swappable in tests to exercise the per-task failure path.
	score func(cand model.Candidate, parentProteins []model.Protein) (model.ScoredCandidate, error)
}

func NewManager(rep *mutate.Replicator, mcfg model.MutationConfig, target model.Protein, ccfg CycleConfig, logf func(format string, args ...any)) (*Manager, error) {
	if rep == nil {
		return nil, errors.New("replicator is required")
	}
	if len(target) == 0 {
		return nil, errors.New("target protein is required")
	}
	if err := mcfg.Validate(); err != nil {
		return nil, err
	}
	if err := ccfg.Validate(); err != nil {
		return nil, err
	}
	if ccfg.Workers <= 0 {
		ccfg.Workers = DefaultWorkers()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	m := &Manager{
		replicator: rep,
		codec:      translate.NewCodec(),
		scorer:     align.NewScorer(),
		mcfg:       mcfg,
		ccfg:       ccfg,
		target:     target,
		logf:       logf,
	}
	m.score = m.scoreCandidate
	return m, nil
}

// ResetCaches clears the translation and similarity caches. Only called
// between cycles, when no scoring tasks are in flight.
func (m *Manager) ResetCaches() {
	m.codec.Reset()
	m.scorer.Reset()
}

// Cycle runs one full cycle in place: replicate every parent, score the
// pooled offspring across the worker pool, select the top-K by target
// similarity, and fold the winners back into gen. The returned stopped flag
// reports whether the stop signal was observed while collecting results;
// any results collected before that point still feed the best-ever update.
func (m *Manager) Cycle(gen *Generation, stop *StopFlag) (stopped bool, err error) {
	pool := make([]model.Candidate, 0, len(gen.Parents)*m.ccfg.Replications)
	for _, parent := range gen.Parents {
		children, err := m.replicator.Replicate(parent, m.mcfg, m.ccfg.Replications)
		if err != nil {
			return false, fmt.Errorf("replicate: %w", err)
		}
		pool = append(pool, children...)
	}

	parentProteins := make([]model.Protein, 0, len(gen.Parents))
	for _, parent := range gen.Parents {
		protein, diag := m.codec.Translate(parent.Sequence)
		if diag != translate.DiagNone {
			m.logf("translate parent: %s", diag)
		}
		parentProteins = append(parentProteins, protein)
	}

	scored, stopped := m.scorePool(pool, parentProteins, stop)
	if len(scored) == 0 {
		return stopped, ErrEmptyCycle
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TargetSimilarity > scored[j].TargetSimilarity
	})

	topK := m.ccfg.TopK
	if topK > len(scored) {
		topK = len(scored)
	}
	selected := scored[:topK]

	if selected[0].TargetSimilarity > gen.BestSimilarity || gen.BestSequence == "" {
		best := selected[0]
		gen.BestSimilarity = best.TargetSimilarity
		gen.BestSequence = best.Candidate.Sequence
		protein, _ := m.codec.Translate(best.Candidate.Sequence)
		gen.BestProtein = protein
	}

	nextParents := make([]model.Candidate, 0, topK)
	for _, sc := range selected {
		if sc.Candidate.Unchanged() {
			gen.UnchangedCount++
		}
		nextParents = append(nextParents, sc.Candidate)
	}
	gen.Parents = nextParents
	gen.LastSelected = append([]model.ScoredCandidate(nil), selected...)
	return stopped, nil
}

// scorePool fans the offspring out over the worker pool and collects results
// as they complete. The stop flag is polled by each worker before it starts
// a task and by the collector after every received result; tasks already
// running complete and their results are kept. Per-task failures are logged
// and dropped.
func (m *Manager) scorePool(pool []model.Candidate, parentProteins []model.Protein, stop *StopFlag) ([]model.ScoredCandidate, bool) {
	type job struct {
		idx  int
		cand model.Candidate
	}
	type result struct {
		idx    int
		scored model.ScoredCandidate
		err    error
	}

	jobs := make(chan job)
	results := make(chan result, len(pool))

	workerCount := m.ccfg.Workers
	if workerCount > len(pool) {
		workerCount = len(pool)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if stop != nil && stop.Stopped() {
					results <- result{idx: j.idx, err: errStopRequested}
					continue
				}
				scored, err := m.score(j.cand, parentProteins)
				if err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				results <- result{idx: j.idx, scored: scored}
			}
		}()
	}

	go func() {
		for i := range pool {
			jobs <- job{idx: i, cand: pool[i]}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	type indexed struct {
		idx    int
		scored model.ScoredCandidate
	}
	collected := make([]indexed, 0, len(pool))
	stopped := false
	for res := range results {
		if res.err != nil {
			if !errors.Is(res.err, errStopRequested) {
				m.logf("scoring task %d failed: %v", res.idx, res.err)
			}
			continue
		}
		collected = append(collected, indexed{idx: res.idx, scored: res.scored})
		if stop != nil && stop.Stopped() {
			stopped = true
			break
		}
	}
	if stop != nil && stop.Stopped() {
		stopped = true
	}

	// Re-impose generation order so selection ties break deterministically
	// regardless of completion order.
	sort.Slice(collected, func(i, j int) bool { return collected[i].idx < collected[j].idx })
	out := make([]model.ScoredCandidate, 0, len(collected))
	for _, item := range collected {
		out = append(out, item.scored)
	}
	return out, stopped
}

var errStopRequested = errors.New("stop requested")

func (m *Manager) scoreCandidate(cand model.Candidate, parentProteins []model.Protein) (model.ScoredCandidate, error) {
	protein, _ := m.codec.Translate(cand.Sequence)
	targetSim := m.scorer.Similarity(protein, m.target)
	stepwise := 0.0
	for _, pp := range parentProteins {
		if s := m.scorer.Similarity(protein, pp); s > stepwise {
			stepwise = s
		}
	}
	return model.ScoredCandidate{
		Candidate:          cand,
		TargetSimilarity:   targetSim,
		StepwiseSimilarity: stepwise,
	}, nil
}
