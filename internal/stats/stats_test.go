package stats

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"rmss/internal/model"
)

func TestSummarizeBestHistory(t *testing.T) {
	summary := SummarizeBestHistory([]float64{50, 75, 100})
	if summary.Cycles != 3 {
		t.Fatalf("cycles %d, want 3", summary.Cycles)
	}
	if summary.FinalBest != 100 {
		t.Fatalf("final best %g, want 100", summary.FinalBest)
	}
	if summary.BestMean != 75 {
		t.Fatalf("mean %g, want 75", summary.BestMean)
	}
	if summary.BestMax != 100 || summary.BestMin != 50 {
		t.Fatalf("max/min = %g/%g, want 100/50", summary.BestMax, summary.BestMin)
	}
	if summary.BestStd != 25 {
		t.Fatalf("std %g, want 25", summary.BestStd)
	}
}

func TestSummarizeBestHistoryDegenerate(t *testing.T) {
	if summary := SummarizeBestHistory(nil); summary.Cycles != 0 {
		t.Fatalf("empty history summary: %+v", summary)
	}
	summary := SummarizeBestHistory([]float64{42})
	if summary.BestStd != 0 || math.IsNaN(summary.BestStd) {
		t.Fatalf("single-point std %g, want 0", summary.BestStd)
	}
	if summary.FinalBest != 42 || summary.BestMean != 42 {
		t.Fatalf("single-point summary: %+v", summary)
	}
}

func testRecords() []model.CycleRecord {
	return []model.CycleRecord{
		{
			Cycle:              1,
			ParentSequence:     "ATGAAATAA",
			SelectedSequence:   "ATGAAATAC",
			InputSimilarity:    66.67,
			StepwiseSimilarity: 66.67,
			TargetSimilarity:   66.67,
			ParentProtein:      "MK*",
			SelectedProtein:    "MKY",
		},
		{
			Cycle:              2,
			ParentSequence:     "ATGAAATAC",
			SelectedSequence:   "ATGAAATAA",
			InputSimilarity:    100,
			StepwiseSimilarity: 66.67,
			TargetSimilarity:   100,
			ParentProtein:      "MKY",
			SelectedProtein:    "MK*",
		},
	}
}

func TestWriteRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	artifacts := RunArtifacts{
		Run: model.RunRecord{
			RunID:          "run-1",
			State:          "completed",
			Cycles:         2,
			InputSequence:  "ATGAAATAA",
			BestSequence:   "ATGAAATAA",
			InputProtein:   "MK*",
			BestProtein:    "MK*",
			BestSimilarity: 100,
		},
		Records:     testRecords(),
		BestHistory: []float64{66.67, 100},
	}

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("WriteRunArtifacts: %v", err)
	}
	if runDir != filepath.Join(baseDir, "run-1") {
		t.Fatalf("run dir %s", runDir)
	}

	file, err := os.Open(filepath.Join(runDir, cycleResultsFile))
	if err != nil {
		t.Fatalf("open cycle results: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read cycle results: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Cycle" || rows[0][5] != "TargetProteinSimilarity" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "ATGAAATAA" || rows[2][5] != "100.00" {
		t.Fatalf("unexpected rows: %v", rows[1:])
	}

	finalFile, err := os.Open(filepath.Join(runDir, finalBestFile))
	if err != nil {
		t.Fatalf("open final best: %v", err)
	}
	defer finalFile.Close()
	finalRows, err := csv.NewReader(finalFile).ReadAll()
	if err != nil {
		t.Fatalf("read final best: %v", err)
	}
	if len(finalRows) != 2 || finalRows[1][3] != "MK*" {
		t.Fatalf("unexpected final best rows: %v", finalRows)
	}

	for _, name := range []string{summaryFile, similarityTrendFile} {
		info, err := os.Stat(filepath.Join(runDir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestWriteSimilarityTrendEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trend.png")
	if err := WriteSimilarityTrend(path, nil); err == nil {
		t.Fatal("expected error for empty records")
	}
}
