// Package store keeps parsed workbooks in memory, keyed by generated ID.
// Workbooks are analysis sessions, not durable records, so process memory is
// the backing store.
package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/avdeenko/cryptoflow/backend/internal/service"
)

// ErrWorkbookNotFound reports a lookup for an ID the store does not hold.
var ErrWorkbookNotFound = errors.New("workbook not found")

// WorkbookStore is a concurrency-safe in-memory workbook registry.
type WorkbookStore struct {
	mu        sync.RWMutex
	workbooks map[string]*service.Workbook
}

// NewWorkbookStore returns an empty store.
func NewWorkbookStore() *WorkbookStore {
	return &WorkbookStore{workbooks: make(map[string]*service.Workbook)}
}

// Put stores the workbook under a fresh ID and returns it.
func (s *WorkbookStore) Put(workbook *service.Workbook) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.workbooks[id] = workbook
	s.mu.Unlock()
	return id
}

// Get returns the workbook for id.
func (s *WorkbookStore) Get(id string) (*service.Workbook, error) {
	s.mu.RLock()
	workbook, ok := s.workbooks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrWorkbookNotFound
	}
	return workbook, nil
}

// Delete removes the workbook for id. Deleting an unknown ID is an error so
// callers can distinguish a double delete from a successful one.
func (s *WorkbookStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workbooks[id]; !ok {
		return ErrWorkbookNotFound
	}
	delete(s.workbooks, id)
	return nil
}

// Len reports how many workbooks the store holds.
func (s *WorkbookStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workbooks)
}
