package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"rmss/internal/model"
)

const (
	cycleResultsFile    = "cycle_results.csv"
	finalBestFile       = "final_best.csv"
	summaryFile         = "summary.json"
	similarityTrendFile = "similarity_trend.png"

	// SnapshotFASTAFile collects the periodic best-replicate snapshots; the
	// run appends to it while cycling, so the artifact writer leaves it alone.
	SnapshotFASTAFile = "best_replicates.fasta"
)

// RunArtifacts is everything persisted into one run's results directory.
type RunArtifacts struct {
	Run         model.RunRecord
	Records     []model.CycleRecord
	BestHistory []float64
}

// WriteRunArtifacts writes the run's result files under baseDir/<run id> and
// returns the directory. The files are independent and written concurrently.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	var g errgroup.Group
	g.Go(func() error {
		return writeCycleResults(filepath.Join(runDir, cycleResultsFile), artifacts.Records)
	})
	g.Go(func() error {
		return writeFinalBest(filepath.Join(runDir, finalBestFile), artifacts.Run)
	})
	g.Go(func() error {
		return writeJSON(filepath.Join(runDir, summaryFile), map[string]any{
			"run":     artifacts.Run,
			"summary": SummarizeBestHistory(artifacts.BestHistory),
		})
	})
	g.Go(func() error {
		return WriteSimilarityTrend(filepath.Join(runDir, similarityTrendFile), artifacts.Records)
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	return runDir, nil
}

func writeCycleResults(path string, records []model.CycleRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"Cycle",
		"InputSequence",
		"SelectedSequence",
		"InputProteinSimilarity",
		"StepwiseProteinSimilarity",
		"TargetProteinSimilarity",
		"InputProteinSequence",
		"OutputProteinSequence",
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Cycle),
			string(rec.ParentSequence),
			string(rec.SelectedSequence),
			formatSimilarity(rec.InputSimilarity),
			formatSimilarity(rec.StepwiseSimilarity),
			formatSimilarity(rec.TargetSimilarity),
			string(rec.ParentProtein),
			string(rec.SelectedProtein),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeFinalBest(path string, run model.RunRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Input_DNA", "Best_DNA", "Input_Protein", "Best_Protein"}); err != nil {
		return err
	}
	row := []string{
		string(run.InputSequence),
		string(run.BestSequence),
		string(run.InputProtein),
		string(run.BestProtein),
	}
	if err := writer.Write(row); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatSimilarity(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
