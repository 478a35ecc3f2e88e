package approval

import (
	"sort"
	"sync"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// MemoryRegistry keeps approvals in process memory
type MemoryRegistry struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		records: make(map[string]*Record),
	}
}

// IsApproved reports whether hash has been approved
func (r *MemoryRegistry) IsApproved(hash string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[hash]
	return ok && rec.State == StateApproved, nil
}

// RegisterPending records hash as pending unless it is already known
func (r *MemoryRegistry) RegisterPending(entry domain.ClasspathEntry, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[hash]; exists {
		return false, nil
	}
	r.records[hash] = &Record{
		Hash:      hash,
		URL:       entry.URL,
		State:     StatePending,
		CreatedAt: time.Now(),
	}
	return true, nil
}

func (r *MemoryRegistry) ListPending() ([]Record, error) {
	return r.list(StatePending), nil
}

func (r *MemoryRegistry) ListApproved() ([]Record, error) {
	return r.list(StateApproved), nil
}

// Approve marks a pending record approved. Approving an approved hash is a no-op.
func (r *MemoryRegistry) Approve(hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[hash]
	if !ok {
		return ErrNotPending
	}
	if rec.State == StateApproved {
		return nil
	}
	now := time.Now()
	rec.State = StateApproved
	rec.ApprovedAt = &now
	return nil
}

// Deny drops a pending record
func (r *MemoryRegistry) Deny(hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[hash]
	if !ok || rec.State != StatePending {
		return ErrNotPending
	}
	delete(r.records, hash)
	return nil
}

func (r *MemoryRegistry) list(state State) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Record
	for _, rec := range r.records {
		if rec.State == state {
			result = append(result, *rec)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Hash < result[j].Hash
	})
	return result
}
