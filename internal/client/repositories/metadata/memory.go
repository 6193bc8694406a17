package metadata

import (
	"context"
	"maps"
	"sync"
)

// MemoryRepository keeps pairs in process memory. It backs the client when
// no state file is configured and stands in for SQLite in tests.
type MemoryRepository struct {
	mu    sync.Mutex
	pairs map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{pairs: make(map[string]string)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.pairs[key]
	return v, ok, nil
}

func (r *MemoryRepository) Set(_ context.Context, pairs map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.pairs, pairs)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.pairs, k)
	}
	return nil
}

func (r *MemoryRepository) List(_ context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pairs), nil
}
