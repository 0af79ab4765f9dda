// Package rejects keeps an append-only journal of records dropped for being malformed,
// so operators can inspect them after a run with `txengine rejects`.
package rejects

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultRejectDir   = "./wal/rejects"
	rejectSegmentLimit = 1000
	rejectMaxSegments  = 100
	rejectKeyPrefix    = "reject_"
)

// Reject is a malformed input record.
type Reject struct {
	RunID  string    `json:"run_id"`
	Line   int       `json:"line"`
	Raw    string    `json:"raw"`
	Reason string    `json:"reason"`
	Time   time.Time `json:"ts"`
}

// Record bundles a reject with its WAL index.
type Record struct {
	Index  uint64
	Reject Reject
}

// WALStore persists rejected records in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens (or creates) the journal under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultRejectDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create reject journal dir")
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "rejects_",
		SegmentThreshold: rejectSegmentLimit,
		MaxSegments:      rejectMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init reject journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends reject to the journal. reject.RunID is required.
func (s *WALStore) Save(reject Reject) error {
	if s == nil || s.wal == nil {
		return errors.New("reject journal is not initialized")
	}
	if reject.RunID == "" {
		return errors.New("reject run id is required")
	}

	payload, err := json.Marshal(reject)
	if err != nil {
		return errors.Wrap(err, "marshal reject")
	}

	key := fmt.Sprintf("%s%s_%d", rejectKeyPrefix, reject.RunID, reject.Line)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// RejectsAfter returns all rejects written after the provided WAL index.
func (s *WALStore) RejectsAfter(index uint64) ([]Record, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("reject journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]Record, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "read reject %d", idx)
		}
		// empty key: the segment holding idx was rotated out
		if key == "" || !strings.HasPrefix(key, rejectKeyPrefix) {
			continue
		}
		var reject Reject
		if err := json.Unmarshal(payload, &reject); err != nil {
			return nil, errors.Wrap(err, "decode reject")
		}
		records = append(records, Record{Index: idx, Reject: reject})
	}

	return records, nil
}

// RunRejects returns the rejects of a single run in input order.
func (s *WALStore) RunRejects(runID string) ([]Record, error) {
	records, err := s.RejectsAfter(0)
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, r := range records {
		if r.Reject.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("reject journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
