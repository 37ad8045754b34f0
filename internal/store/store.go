package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/buckleypaul/catbot/internal/atomicfile"
)

// MaxRecords caps each history file; older entries are dropped first.
const MaxRecords = 500

const (
	runsFile        = "runs.json"
	discoveriesFile = "discoveries.json"
	serialLogsFile  = "serial_logs.json"
)

// Store keeps run, discovery and serial monitor history as JSON arrays
// under <root>/history.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at the given directory (typically .catbot/).
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, "history", name)
}

// AddRun appends a run record.
func (s *Store) AddRun(r RunRecord) error {
	return appendRecord(s, runsFile, r)
}

// AddDiscovery appends a discovery record.
func (s *Store) AddDiscovery(r DiscoveryRecord) error {
	return appendRecord(s, discoveriesFile, r)
}

// AddSerialLog appends a serial monitor session.
func (s *Store) AddSerialLog(r SerialLog) error {
	return appendRecord(s, serialLogsFile, r)
}

// Runs returns run records, oldest first.
func (s *Store) Runs() ([]RunRecord, error) {
	return loadRecords[RunRecord](s, runsFile)
}

// Discoveries returns discovery records, oldest first.
func (s *Store) Discoveries() ([]DiscoveryRecord, error) {
	return loadRecords[DiscoveryRecord](s, discoveriesFile)
}

// SerialLogs returns serial monitor sessions, oldest first.
func (s *Store) SerialLogs() ([]SerialLog, error) {
	return loadRecords[SerialLog](s, serialLogsFile)
}

func appendRecord[T any](s *Store, name string, record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readFile[T](s.path(name))
	if err != nil {
		return err
	}
	records = append(records, record)
	if len(records) > MaxRecords {
		records = records[len(records)-MaxRecords:]
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(s.path(name), append(data, '\n'), 0o644)
}

func loadRecords[T any](s *Store, name string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readFile[T](s.path(name))
}

// readFile returns the records in path. A missing file is an empty history;
// a file that does not parse is an error so it is never silently replaced.
func readFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}
