// Package fasta reads and writes FASTA-format sequence records. Input and
// target sequences are loaded from FASTA files, and the run's periodic
// best-replicate snapshots are appended to one.
package fasta

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"rmss/internal/model"
)

// Record is one FASTA entry: the header line without its leading '>' and
// the concatenated sequence lines.
type Record struct {
	Header   string
	Sequence model.Sequence
}

var ErrNoRecords = errors.New("no records in file")

// ReadAll parses every record in a FASTA file. Sequence lines are
// concatenated and uppercased; blank lines are skipped.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	var current *Record
	var seq strings.Builder

	flush := func() {
		if current != nil {
			current.Sequence = model.Sequence(seq.String())
			records = append(records, *current)
			seq.Reset()
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			current = &Record{Header: strings.TrimSpace(line[1:])}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("%s: sequence data before the first header", path)
		}
		seq.WriteString(strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRecords)
	}
	return records, nil
}

// ReadFirst returns the first record of a FASTA file. Inputs and targets
// take only the leading record; any further entries are ignored.
func ReadFirst(path string) (Record, error) {
	records, err := ReadAll(path)
	if err != nil {
		return Record{}, err
	}
	return records[0], nil
}

// AppendRecord appends one record to a FASTA file, creating it if absent.
func AppendRecord(path, header string, seq model.Sequence) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, ">%s\n%s\n", header, seq); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SnapshotHeader formats the header used for periodic best-replicate
// snapshots.
func SnapshotHeader(cycle int, similarity float64) string {
	return fmt.Sprintf("Cycle%d_best_replicate_sim%.2f", cycle, similarity)
}
