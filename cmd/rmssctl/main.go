package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rmss/internal/storage"
	rmssapi "rmss/pkg/rmss"
)

const resultsDir = "results"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "cycles":
		return runCycles(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "rmss.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := rmssapi.New(rmssapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "rmss.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := rmssapi.New(rmssapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	inputPath := fs.String("input", "", "input nucleotide FASTA path")
	targetPath := fs.String("target", "", "target nucleotide FASTA path")
	inputSeq := fs.String("input-seq", "", "literal input nucleotide sequence (overrides -input)")
	targetSeq := fs.String("target-seq", "", "literal target nucleotide sequence (overrides -target)")
	cycles := fs.Int("cycles", 100, "simulation cycle count")
	replications := fs.Int("replications", 50, "offspring replicated per parent each cycle")
	topK := fs.Int("top-k", 5, "survivors retained per cycle")
	workers := fs.Int("workers", 0, "scoring worker count (0 uses the CPU-derived default)")
	seed := fs.Int64("seed", 0, "rng seed (0 derives one from the clock)")
	mutationRate := fs.Float64("mutation-rate", 0.01, "per-base mutation probability")
	subRatio := fs.Float64("sub-ratio", 0.9, "relative weight of substitutions")
	indelRatio := fs.Float64("indel-ratio", 0.1, "relative weight of indels")
	tranRatio := fs.Float64("tran-ratio", 2, "relative weight of transitions among substitutions")
	transvRatio := fs.Float64("transv-ratio", 1, "relative weight of transversions among substitutions")
	verbose := fs.Bool("verbose", false, "print per-cycle progress and diagnostics")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "rmss.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = rmssapi.RunRequest{
			InputPath:      *inputPath,
			TargetPath:     *targetPath,
			InputSequence:  *inputSeq,
			TargetSequence: *targetSeq,
			MutationRate:   *mutationRate,
			SubRatio:       *subRatio,
			IndelRatio:     *indelRatio,
			TranRatio:      *tranRatio,
			TransvRatio:    *transvRatio,
			Cycles:         *cycles,
			Replications:   *replications,
			TopK:           *topK,
			Workers:        *workers,
			Seed:           *seed,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"input":         *inputPath,
			"target":        *targetPath,
			"input-seq":     *inputSeq,
			"target-seq":    *targetSeq,
			"mutation-rate": *mutationRate,
			"sub-ratio":     *subRatio,
			"indel-ratio":   *indelRatio,
			"tran-ratio":    *tranRatio,
			"transv-ratio":  *transvRatio,
			"cycles":        *cycles,
			"replications":  *replications,
			"top-k":         *topK,
			"workers":       *workers,
			"seed":          *seed,
		})
	}
	if *verbose {
		req.Progress = func(cycle, total int) {
			fmt.Printf("cycle=%d/%d\n", cycle, total)
		}
		req.Log = func(line string) {
			fmt.Println(line)
		}
	}

	client, err := rmssapi.New(rmssapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run %s run_id=%s cycles=%d best_similarity=%.2f unchanged=%d\n",
		summary.State,
		summary.RunID,
		summary.Cycles,
		summary.BestSimilarity,
		summary.UnchangedCount,
	)
	fmt.Printf("best_sequence=%s\n", summary.BestSequence)
	fmt.Printf("best_protein=%s\n", summary.BestProtein)
	if summary.ArtifactsDir != "" {
		fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "rmss.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := rmssapi.New(rmssapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if len(runs) > *limit {
		runs = runs[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		fmt.Printf("run_id=%s created_at=%s state=%s cycles=%d best_similarity=%.2f unchanged=%d\n",
			r.RunID,
			r.CreatedAtUTC,
			r.State,
			r.Cycles,
			r.BestSimilarity,
			r.UnchangedCount,
		)
	}
	return nil
}

func runCycles(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cycles", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 50, "max cycle rows to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit cycle records as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "rmss.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("cycles requires --run-id")
	}

	client, err := rmssapi.New(rmssapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Cycles(ctx, *runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no cycle records")
		return nil
	}
	if *limit > 0 && len(records) > *limit {
		records = records[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, rec := range records {
		fmt.Printf("cycle=%d target_similarity=%.2f stepwise_similarity=%.2f input_similarity=%.2f selected=%s protein=%s\n",
			rec.Cycle,
			rec.TargetSimilarity,
			rec.StepwiseSimilarity,
			rec.InputSimilarity,
			rec.SelectedSequence,
			rec.SelectedProtein,
		)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: rmssctl <init|reset|run|runs|cycles> [flags]", msg)
}
