package jobboard

import (
	"context"
	"sort"
	"sync"
)

// InMemoryBackend implements the Backend interface using in-memory storage.
// It uses a single mutex for thread-safety and is suitable for testing.
type InMemoryBackend struct {
	mu      sync.RWMutex
	records map[uint]*JobRecord
	closed  bool
}

// NewInMemoryBackend creates a new in-memory backend.
func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		records: make(map[uint]*JobRecord),
	}
}

// Close closes the backend and prevents further operations.
func (b *InMemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

// SaveJobs inserts or replaces records by id.
func (b *InMemoryBackend) SaveJobs(ctx context.Context, records []*JobRecord) error {
	if _, err := normalizeContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureOpenLocked(); err != nil {
		return err
	}
	for _, rec := range records {
		b.records[rec.ID] = cloneRecord(rec)
	}
	return nil
}

// DeleteJobs deletes records by id.
func (b *InMemoryBackend) DeleteJobs(ctx context.Context, jobIDs []uint) error {
	if _, err := normalizeContext(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureOpenLocked(); err != nil {
		return err
	}
	for _, id := range jobIDs {
		delete(b.records, id)
	}
	return nil
}

// LoadJobs returns copies of every stored record, sorted by id.
func (b *InMemoryBackend) LoadJobs(ctx context.Context) ([]*JobRecord, error) {
	if _, err := normalizeContext(ctx); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.ensureOpenLocked(); err != nil {
		return nil, err
	}

	out := make([]*JobRecord, 0, len(b.records))
	for _, rec := range b.records {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count returns the number of stored records.
func (b *InMemoryBackend) Count(ctx context.Context) (int, error) {
	if _, err := normalizeContext(ctx); err != nil {
		return 0, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.ensureOpenLocked(); err != nil {
		return 0, err
	}
	return len(b.records), nil
}

func (b *InMemoryBackend) ensureOpenLocked() error {
	if b.closed {
		return ErrBackendClosed
	}
	return nil
}
