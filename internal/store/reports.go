package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/veristream/internal/model"
)

// ReportStore saves and retrieves report records by id on top of a Backend
type ReportStore struct {
	backend Backend
	mu      sync.Mutex // Guards read-modify-write of the id index
}

// NewReportStore creates a report store over the given backend
func NewReportStore(backend Backend) *ReportStore {
	return &ReportStore{backend: backend}
}

// Save persists a record. The record's UpdatedAt is stamped; CreatedAt is
// set on first save only.
func (s *ReportStore) Save(record *model.ReportRecord) error {
	if record.ID == "" {
		return fmt.Errorf("save report: empty id")
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", record.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Set(recordKey(record.ID), data, 0); err != nil {
		return fmt.Errorf("store report %s: %w", record.ID, err)
	}
	return s.addToIndex(record.ID)
}

// Load retrieves a record by id
func (s *ReportStore) Load(id string) (*model.ReportRecord, error) {
	data, found := s.backend.Get(recordKey(id))
	if !found {
		return nil, fmt.Errorf("report %s not found", id)
	}
	var record model.ReportRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &record, nil
}

// Delete removes a record by id
func (s *ReportStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(recordKey(id)); err != nil {
		return err
	}
	return s.removeFromIndex(id)
}

// List returns all known report ids, sorted
func (s *ReportStore) List() ([]string, error) {
	ids := s.readIndex()
	sort.Strings(ids)
	return ids, nil
}

func (s *ReportStore) readIndex() []string {
	data, found := s.backend.Get(indexKey)
	if !found {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil
	}
	return ids
}

func (s *ReportStore) writeIndex(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	return s.backend.Set(indexKey, data, 0)
}

func (s *ReportStore) addToIndex(id string) error {
	ids := s.readIndex()
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return s.writeIndex(append(ids, id))
}

func (s *ReportStore) removeFromIndex(id string) error {
	ids := s.readIndex()
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return s.writeIndex(out)
}
