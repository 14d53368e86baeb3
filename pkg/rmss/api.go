// Package rmss is the public client API for the replication-mutation-selection
// simulator. A Client owns a store backend and a results directory; Run wires
// sequence loading, the cycle loop, persistence, and artifact writing.
package rmss

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"rmss/internal/fasta"
	"rmss/internal/model"
	"rmss/internal/mutate"
	"rmss/internal/sim"
	"rmss/internal/stats"
	"rmss/internal/storage"
	"rmss/internal/translate"
)

const (
	defaultResultsDir = "results"
	defaultDBPath     = "rmss.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ResultsDir string
}

type Client struct {
	store       storage.Store
	resultsDir  string
	initialized bool
}

// RunRequest configures one simulation run. Literal sequences take
// precedence over FASTA paths; for a multi-record target file only the
// first record is used.
type RunRequest struct {
	InputPath      string
	TargetPath     string
	InputSequence  string
	TargetSequence string

	MutationRate float64
	SubRatio     float64
	IndelRatio   float64
	TranRatio    float64
	TransvRatio  float64

	Cycles       int
	Replications int
	TopK         int
	Workers      int
	Seed         int64

	// Optional callbacks, invoked from the run goroutine.
	Progress func(cycle, total int)
	Log      func(line string)
}

type RunSummary struct {
	RunID          string
	State          string
	Cycles         int
	BestSimilarity float64
	BestSequence   string
	BestProtein    string
	UnchangedCount int
	ArtifactsDir   string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	resultsDir := opts.ResultsDir
	if resultsDir == "" {
		resultsDir = defaultResultsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, resultsDir: resultsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store backend. Idempotent.
func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Reset clears all persisted runs.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	return c.store.Reset(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Cycles <= 0 {
		req.Cycles = 100
	}
	if req.Replications <= 0 {
		req.Replications = 50
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	if req.MutationRate == 0 && req.SubRatio == 0 && req.IndelRatio == 0 && req.TranRatio == 0 && req.TransvRatio == 0 {
		req.MutationRate = 0.01
		req.SubRatio = 0.9
		req.IndelRatio = 0.1
		req.TranRatio = 2
		req.TransvRatio = 1
	}

	input, err := resolveSequence(req.InputSequence, req.InputPath, "input")
	if err != nil {
		return RunSummary{}, err
	}
	target, err := resolveSequence(req.TargetSequence, req.TargetPath, "target")
	if err != nil {
		return RunSummary{}, err
	}

	targetProtein, diag := translate.FromStart(target)
	if len(targetProtein) == 0 {
		return RunSummary{}, fmt.Errorf("target sequence does not translate: %s", diag)
	}
	inputProtein, _ := translate.FromStart(input)

	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	runDir := filepath.Join(c.resultsDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return RunSummary{}, err
	}
	snapshotPath := filepath.Join(runDir, stats.SnapshotFASTAFile)

	mcfg := model.MutationConfig{
		MutationRate: req.MutationRate,
		SubRatio:     req.SubRatio,
		IndelRatio:   req.IndelRatio,
		TranRatio:    req.TranRatio,
		TransvRatio:  req.TransvRatio,
	}
	logf := func(format string, args ...any) {
		if req.Log != nil {
			req.Log(fmt.Sprintf(format, args...))
		}
	}
	mgr, err := sim.NewManager(mutate.NewReplicator(req.Seed), mcfg, targetProtein,
		sim.CycleConfig{Replications: req.Replications, TopK: req.TopK, Workers: req.Workers}, logf)
	if err != nil {
		return RunSummary{}, err
	}

	var allRecords []model.CycleRecord
	var bestHistory []float64
	sinks := sim.Sinks{
		Progress: req.Progress,
		Log:      req.Log,
		Records: func(records []model.CycleRecord) {
			allRecords = append(allRecords, records...)
			if len(records) > 0 {
				bestHistory = append(bestHistory, records[0].TargetSimilarity)
			}
		},
		Snapshot: func(cycle int, similarity float64, seq model.Sequence) {
			if err := fasta.AppendRecord(snapshotPath, fasta.SnapshotHeader(cycle, similarity), seq); err != nil {
				logf("append snapshot: %v", err)
			}
		},
	}

	stop := &sim.StopFlag{}
	cancelWatch := context.AfterFunc(ctx, stop.Set)
	defer cancelWatch()

	orch, err := sim.NewOrchestrator(mgr, sim.RunConfig{Cycles: req.Cycles}, input, stop, sinks)
	if err != nil {
		return RunSummary{}, err
	}
	summary := orch.Run(ctx)

	versioned := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
	run := model.RunRecord{
		VersionedRecord: versioned,
		RunID:           runID,
		State:           summary.State.String(),
		Cycles:          summary.CyclesRun,
		InputSequence:   input,
		BestSequence:    summary.BestSequence,
		InputProtein:    inputProtein,
		BestProtein:     summary.BestProtein,
		BestSimilarity:  summary.BestSimilarity,
		UnchangedCount:  summary.UnchangedCount,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	for i := range allRecords {
		allRecords[i].VersionedRecord = versioned
	}

	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveCycleRecords(ctx, runID, allRecords); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveBestHistory(ctx, runID, bestHistory); err != nil {
		return RunSummary{}, err
	}

	artifactsDir := ""
	if len(allRecords) > 0 {
		artifactsDir, err = stats.WriteRunArtifacts(c.resultsDir, stats.RunArtifacts{
			Run:         run,
			Records:     allRecords,
			BestHistory: bestHistory,
		})
		if err != nil {
			return RunSummary{}, err
		}
		artifactsDir = filepath.Clean(artifactsDir)
	}

	return RunSummary{
		RunID:          runID,
		State:          summary.State.String(),
		Cycles:         summary.CyclesRun,
		BestSimilarity: summary.BestSimilarity,
		BestSequence:   string(summary.BestSequence),
		BestProtein:    string(summary.BestProtein),
		UnchangedCount: summary.UnchangedCount,
		ArtifactsDir:   artifactsDir,
	}, nil
}

// Runs lists persisted runs, newest first.
func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListRuns(ctx)
}

// Cycles returns the per-cycle records of one run.
func (c *Client) Cycles(ctx context.Context, runID string) ([]model.CycleRecord, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	records, ok, err := c.store.GetCycleRecords(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("cycle records not found for run id: %s", runID)
	}
	return records, nil
}

func resolveSequence(literal, path, kind string) (model.Sequence, error) {
	if literal != "" {
		seq := model.Sequence(literal)
		if err := model.ValidateSequence(seq); err != nil {
			return "", fmt.Errorf("%s sequence: %w", kind, err)
		}
		return seq, nil
	}
	if path == "" {
		return "", fmt.Errorf("%s sequence or fasta path is required", kind)
	}
	record, err := fasta.ReadFirst(path)
	if err != nil {
		return "", fmt.Errorf("read %s fasta: %w", kind, err)
	}
	if err := model.ValidateSequence(record.Sequence); err != nil {
		return "", fmt.Errorf("%s sequence: %w", kind, err)
	}
	return record.Sequence, nil
}
