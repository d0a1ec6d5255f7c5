package store

import (
	"path/filepath"
	"sync"

	"examplecpi/internal/domain"
)

const (
	historyFilename = "history.json"
	// maxHistory bounds the file; older records are dropped first.
	maxHistory = 500
)

// HistoryFileStore persists the signatures of sent transactions.
type HistoryFileStore struct {
	dir string
	max int
	mu  sync.Mutex
}

// NewHistoryFileStore returns a HistoryFileStore rooted at dir.
func NewHistoryFileStore(dir string) *HistoryFileStore {
	return &HistoryFileStore{dir: dir, max: maxHistory}
}

// AppendRecord adds a record, trimming the oldest entries past the bound.
func (s *HistoryFileStore) AppendRecord(record domain.TxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, historyFilename)
	var records []domain.TxRecord
	if err := readJSON(path, &records); err != nil {
		return err
	}
	records = append(records, record)
	if len(records) > s.max {
		records = records[len(records)-s.max:]
	}
	return writeJSON(path, records, 0o600)
}

// ListRecords returns up to limit of the newest records, oldest first.
func (s *HistoryFileStore) ListRecords(limit int) ([]domain.TxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, historyFilename)
	var records []domain.TxRecord
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// Compile-time assertion that HistoryFileStore implements domain.HistoryStore.
var _ domain.HistoryStore = (*HistoryFileStore)(nil)
