package sim

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"rmss/internal/model"
)

// StopFlag is the settable cancellation signal. External collaborators set
// it; the simulation only reads it, polled between cycles and after each
// collected scoring result.
type StopFlag struct {
	v atomic.Bool
}

func (f *StopFlag) Set() { f.v.Store(true) }

func (f *StopFlag) Stopped() bool { return f.v.Load() }

// State is the orchestrator's run state.
type State int

const (
	StateRunning State = iota
	StateCancelling
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelling:
		return "cancelling"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sinks are the outward-facing notification hooks. Any of them may be nil.
// Done fires exactly once per run, on every terminal path.
type Sinks struct {
	Progress func(cycle, total int)
	Log      func(line string)
	Records  func(records []model.CycleRecord)
	Snapshot func(cycle int, similarity float64, seq model.Sequence)
	Done     func()
}

// Intervals from the reference behavior: snapshot the cycle best every 10
// cycles, clear the memoization caches every 100.
const (
	snapshotInterval   = 10
	cacheClearInterval = 100
)

// RunConfig drives one orchestrated run.
type RunConfig struct {
	Cycles int `json:"cycles"`
}

func (c RunConfig) Validate() error {
	if c.Cycles <= 0 {
		return fmt.Errorf("cycles must be > 0: %d", c.Cycles)
	}
	return nil
}

// Summary is the terminal report of a run.
type Summary struct {
	State          State
	CyclesRun      int
	BestSimilarity float64
	BestSequence   model.Sequence
	BestProtein    model.Protein
	UnchangedCount int
}

// Orchestrator drives the cycle loop over a Manager, owning the state
// machine Running -> Cancelling -> {Completed, Aborted} and the periodic
// snapshot and cache-eviction duties.
type Orchestrator struct {
	mgr   *Manager
	cfg   RunConfig
	stop  *StopFlag
	sinks Sinks

	input        model.Sequence
	inputProtein model.Protein
}

func NewOrchestrator(mgr *Manager, cfg RunConfig, input model.Sequence, stop *StopFlag, sinks Sinks) (*Orchestrator, error) {
	if mgr == nil {
		return nil, errors.New("manager is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := model.ValidateSequence(input); err != nil {
		return nil, fmt.Errorf("input sequence: %w", err)
	}
	if stop == nil {
		stop = &StopFlag{}
	}
	inputProtein, _ := mgr.codec.Translate(input)
	return &Orchestrator{
		mgr:          mgr,
		cfg:          cfg,
		stop:         stop,
		sinks:        sinks,
		input:        input,
		inputProtein: inputProtein,
	}, nil
}

// Run executes the cycle loop until completion, cancellation, or an empty
// cycle. Cancellation is a normal terminal path, not an error; only
// configuration problems surface as errors, and those are caught in the
// constructor. The returned summary is valid on every terminal state.
func (o *Orchestrator) Run(ctx context.Context) Summary {
	defer func() {
		if o.sinks.Done != nil {
			o.sinks.Done()
		}
	}()

	gen := NewGeneration(o.input)
	state := StateRunning
	cyclesRun := 0

	for cycle := 1; cycle <= o.cfg.Cycles; cycle++ {
		if ctx.Err() != nil || o.stop.Stopped() {
			state = StateCancelling
			o.log("stop requested, finishing run")
			break
		}

		stopped, err := o.mgr.Cycle(gen, o.stop)
		if err != nil {
			if errors.Is(err, ErrEmptyCycle) {
				o.log(fmt.Sprintf("cycle %d: no scored offspring, aborting run", cycle))
			} else {
				o.log(fmt.Sprintf("cycle %d: %v", cycle, err))
			}
			state = StateAborted
			break
		}

		cyclesRun = cycle
		o.emitRecords(cycle, gen)
		if o.sinks.Progress != nil {
			o.sinks.Progress(cycle, o.cfg.Cycles)
		}
		if cycle%snapshotInterval == 0 && o.sinks.Snapshot != nil {
			best := gen.LastSelected[0]
			o.sinks.Snapshot(cycle, best.TargetSimilarity, best.Candidate.Sequence)
		}
		if cycle%cacheClearInterval == 0 {
			o.mgr.ResetCaches()
			o.log(fmt.Sprintf("cycle %d: memoization caches cleared", cycle))
		}

		if stopped {
			state = StateCancelling
			o.log(fmt.Sprintf("stop requested during cycle %d, finishing run", cycle))
			break
		}
	}

	switch state {
	case StateRunning:
		state = StateCompleted
	case StateCancelling:
		state = StateAborted
	}

	o.log(fmt.Sprintf("run %s after %d cycle(s): best similarity %.2f, unchanged selections %d",
		state, cyclesRun, gen.BestSimilarity, gen.UnchangedCount))

	return Summary{
		State:          state,
		CyclesRun:      cyclesRun,
		BestSimilarity: gen.BestSimilarity,
		BestSequence:   gen.BestSequence,
		BestProtein:    gen.BestProtein,
		UnchangedCount: gen.UnchangedCount,
	}
}

func (o *Orchestrator) log(line string) {
	if o.sinks.Log != nil {
		o.sinks.Log(line)
	}
}

// emitRecords builds one row per selected candidate. The stepwise column
// compares the candidate against its own immediate ancestor, matching the
// exported per-cycle results; the selection-time stepwise score (max over
// the whole parent set) lives on ScoredCandidate and is not re-reported
// here.
func (o *Orchestrator) emitRecords(cycle int, gen *Generation) {
	if o.sinks.Records == nil {
		return
	}
	records := make([]model.CycleRecord, 0, len(gen.LastSelected))
	for _, sc := range gen.LastSelected {
		parentSeq := sc.Candidate.Lineage.Parent()
		parentProtein, _ := o.mgr.codec.Translate(parentSeq)
		selectedProtein, _ := o.mgr.codec.Translate(sc.Candidate.Sequence)
		records = append(records, model.CycleRecord{
			Cycle:              cycle,
			ParentSequence:     parentSeq,
			SelectedSequence:   sc.Candidate.Sequence,
			InputSimilarity:    o.mgr.scorer.Similarity(selectedProtein, o.inputProtein),
			StepwiseSimilarity: o.mgr.scorer.Similarity(selectedProtein, parentProtein),
			TargetSimilarity:   sc.TargetSimilarity,
			ParentProtein:      parentProtein,
			SelectedProtein:    selectedProtein,
		})
	}
	o.sinks.Records(records)
}
