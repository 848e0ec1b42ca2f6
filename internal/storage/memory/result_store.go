// Package memory provides an in-memory ResultStore for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anshultibby/moleAI-sub001/internal/product"
	"github.com/anshultibby/moleAI-sub001/internal/storage"
)

// ResultStore keeps crawl runs in a map guarded by a mutex.
type ResultStore struct {
	mu   sync.RWMutex
	runs map[string]storage.CrawlRun
}

// NewResultStore constructs a ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{runs: make(map[string]storage.CrawlRun)}
}

// CreateRun stores a new run.
func (s *ResultStore) CreateRun(_ context.Context, run storage.CrawlRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// UpdateRun transitions a run's status and attaches its result.
func (s *ResultStore) UpdateRun(
	_ context.Context,
	id string,
	status storage.RunStatus,
	errText string,
	result *product.CrawlResult,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return storage.ErrRunNotFound
	}
	run.Status = status
	run.ErrorText = errText
	run.Result = result
	if status == storage.RunStatusSucceeded || status == storage.RunStatusFailed {
		now := time.Now().UTC()
		run.Finished = &now
	}
	s.runs[id] = run
	return nil
}

// GetRun fetches a run by ID.
func (s *ResultStore) GetRun(_ context.Context, id string) (storage.CrawlRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return storage.CrawlRun{}, storage.ErrRunNotFound
	}
	return run, nil
}
