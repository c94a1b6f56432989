// Package jsonl provides a file-based cost ledger. Records are stored as
// one JSON object per line in append-only files partitioned by UTC day
// (<dir>/2026-01-15.jsonl), so billing data stays machine-parseable and
// greppable without a database.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
	"github.com/custodia-labs/pagesync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pagesync-cli/internal/logger"
)

// Ensure Ledger implements the interface.
var _ driven.CostLedger = (*Ledger)(nil)

const dayFileFormat = "2006-01-02"

// Ledger is a day-partitioned JSONL implementation of driven.CostLedger.
// The mutex serialises appends within this process; each entry is written
// as a single line so a crash can corrupt at most the final line, which
// Scan tolerates.
type Ledger struct {
	mu  sync.Mutex
	dir string
}

// NewLedger creates a ledger rooted at dir. If dir is empty, defaults to
// ~/.pagesync/ledger.
func NewLedger(dir string) (*Ledger, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".pagesync", "ledger")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	return &Ledger{dir: dir}, nil
}

// Dir returns the ledger directory.
func (l *Ledger) Dir() string {
	return l.dir
}

// Record appends one entry to the day file keyed by the record timestamp.
func (l *Ledger) Record(_ context.Context, rec domain.CostRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, rec.Timestamp.UTC().Format(dayFileFormat)+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("opening ledger file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return f.Sync()
}

// Scan reads every record from every day file, oldest file first.
// Blank and malformed lines are skipped rather than failing the scan.
func (l *Ledger) Scan(_ context.Context) ([]domain.CostRecord, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ledger directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jsonl") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var records []domain.CostRecord
	for _, name := range files {
		fileRecords, err := l.scanFile(filepath.Join(l.dir, name))
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
	}
	return records, nil
}

func (l *Ledger) scanFile(path string) ([]domain.CostRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []domain.CostRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec domain.CostRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("Skipping malformed ledger line in %s: %v", filepath.Base(path), err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}
