package fasta

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadAll(t *testing.T) {
	path := writeFile(t, "input.fasta", ">seq1 input\nATGAAA\ntaa\n\n>seq2\nATGCCC\n")
	records, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Header != "seq1 input" {
		t.Fatalf("header %q, want %q", records[0].Header, "seq1 input")
	}
	if records[0].Sequence != "ATGAAATAA" {
		t.Fatalf("sequence %s, want joined uppercased ATGAAATAA", records[0].Sequence)
	}
	if records[1].Sequence != "ATGCCC" {
		t.Fatalf("second sequence %s, want ATGCCC", records[1].Sequence)
	}
}

func TestReadFirstTakesLeadingRecord(t *testing.T) {
	path := writeFile(t, "targets.fasta", ">first\nATGAAATAA\n>second\nATGCCC\n")
	rec, err := ReadFirst(path)
	if err != nil {
		t.Fatalf("ReadFirst: %v", err)
	}
	if rec.Sequence != "ATGAAATAA" {
		t.Fatalf("sequence %s, want the first record", rec.Sequence)
	}
}

func TestReadAllEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.fasta", "")
	if _, err := ReadAll(path); !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestReadAllDataBeforeHeader(t *testing.T) {
	path := writeFile(t, "bad.fasta", "ATGAAA\n>seq1\nATG\n")
	if _, err := ReadAll(path); err == nil {
		t.Fatal("expected error for sequence data before the first header")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	if _, err := ReadAll(filepath.Join(t.TempDir(), "nope.fasta")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAppendRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.fasta")
	if err := AppendRecord(path, SnapshotHeader(10, 87.5), "ATGAAA"); err != nil {
		t.Fatalf("AppendRecord: %v", err)
	}
	if err := AppendRecord(path, SnapshotHeader(20, 90), "ATGCCC"); err != nil {
		t.Fatalf("AppendRecord: %v", err)
	}

	records, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 appended records, got %d", len(records))
	}
	if records[0].Header != "Cycle10_best_replicate_sim87.50" {
		t.Fatalf("header %q, want Cycle10_best_replicate_sim87.50", records[0].Header)
	}
	if records[1].Sequence != "ATGCCC" {
		t.Fatalf("second sequence %s, want ATGCCC", records[1].Sequence)
	}
}
