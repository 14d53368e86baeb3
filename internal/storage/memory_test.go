package storage

import (
	"context"
	"testing"

	"rmss/internal/model"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		RunID:           "run-1",
		State:           "completed",
		Cycles:          3,
		InputSequence:   "ATGAAATAA",
		BestSequence:    "ATGAAATAA",
		BestSimilarity:  100,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if loaded.RunID != run.RunID || loaded.BestSimilarity != run.BestSimilarity {
		t.Fatalf("unexpected run: %+v", loaded)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing run: ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreCycleRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.CycleRecord{{
		VersionedRecord:  model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		Cycle:            1,
		ParentSequence:   "ATGAAATAA",
		SelectedSequence: "ATGAAATAC",
		TargetSimilarity: 66.7,
	}}
	if err := store.SaveCycleRecords(ctx, "run-1", input); err != nil {
		t.Fatalf("save cycle records: %v", err)
	}

	output, ok, err := store.GetCycleRecords(ctx, "run-1")
	if err != nil {
		t.Fatalf("get cycle records: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted cycle records")
	}
	if len(output) != 1 || output[0].SelectedSequence != "ATGAAATAC" {
		t.Fatalf("unexpected records: %+v", output)
	}
}

func TestMemoryStoreListAndReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, run := range []model.RunRecord{
		{RunID: "run-old", CreatedAtUTC: "2026-08-24T10:00:00Z"},
		{RunID: "run-new", CreatedAtUTC: "2026-08-25T10:00:00Z"},
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-new" {
		t.Fatalf("expected newest run first, got %+v", runs)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runs, err = store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list after reset: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs after reset, got %d", len(runs))
	}
}

func TestMemoryStoreBestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []float64{33.3, 66.7, 100}
	if err := store.SaveBestHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}
	output, ok, err := store.GetBestHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted best history")
	}
	if len(output) != len(input) || output[2] != input[2] {
		t.Fatalf("unexpected history: %+v", output)
	}
}
