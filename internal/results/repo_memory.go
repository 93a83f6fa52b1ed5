package results

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// MemoryRepo is an in-memory Repo used when no database is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]Record)}
}

func memoryKey(r Record) string {
	return r.InvocationArn + "|" + r.Field + "|" + strconv.Itoa(r.SegmentIndex)
}

// Save upserts records.
func (m *MemoryRepo) Save(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		key := memoryKey(r)
		if existing, ok := m.records[key]; ok {
			r.ID = existing.ID
		}
		m.records[key] = r
	}
	return nil
}

// ListByInput returns records for inputURI.
func (m *MemoryRepo) ListByInput(ctx context.Context, inputURI string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, r := range m.records {
		if r.InputURI == inputURI {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.SegmentIndex != b.SegmentIndex {
			return a.SegmentIndex < b.SegmentIndex
		}
		return a.Field < b.Field
	})
	return out, nil
}
