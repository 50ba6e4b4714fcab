package content

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used by tests and by
// DSN-less development servers.
type MemoryRepository struct {
	mu      sync.RWMutex
	domains map[string]map[string]*Entity
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{domains: make(map[string]map[string]*Entity)}
}

func (r *MemoryRepository) Find(_ context.Context, domain, handle string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ent, ok := r.domains[domain][handle]
	if !ok {
		return nil, nil
	}
	return cloneEntity(ent), nil
}

func (r *MemoryRepository) List(_ context.Context, domain string, filter Filter) ([]*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]string, 0, len(r.domains[domain]))
	for handle := range r.domains[domain] {
		if filter.HandlePrefix != "" && !strings.HasPrefix(handle, filter.HandlePrefix) {
			continue
		}
		handles = append(handles, handle)
	}
	sort.Strings(handles)

	if filter.Limit > 0 && len(handles) > filter.Limit {
		handles = handles[:filter.Limit]
	}

	out := make([]*Entity, 0, len(handles))
	for _, handle := range handles {
		out = append(out, cloneEntity(r.domains[domain][handle]))
	}
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, domain, handle string, data map[string]any) (*Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.domains[domain][handle]; exists {
		return nil, fmt.Errorf("%s %q: %w", singular(domain), handle, ErrConflict)
	}
	if r.domains[domain] == nil {
		r.domains[domain] = make(map[string]*Entity)
	}
	now := time.Now()
	ent := &Entity{
		Domain:    domain,
		Handle:    handle,
		Data:      cloneData(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.domains[domain][handle] = ent
	return cloneEntity(ent), nil
}

func (r *MemoryRepository) Update(_ context.Context, domain, handle string, patch map[string]any) (*Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, ok := r.domains[domain][handle]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", singular(domain), handle, ErrNotFound)
	}
	for k, v := range patch {
		ent.Data[k] = v
	}
	ent.UpdatedAt = time.Now()
	return cloneEntity(ent), nil
}

func (r *MemoryRepository) Delete(_ context.Context, domain, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.domains[domain][handle]; !ok {
		return fmt.Errorf("%s %q: %w", singular(domain), handle, ErrNotFound)
	}
	delete(r.domains[domain], handle)
	return nil
}

func cloneEntity(ent *Entity) *Entity {
	out := *ent
	out.Data = cloneData(ent.Data)
	return &out
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// singular trims a plural domain name for error messages.
func singular(domain string) string {
	return strings.TrimSuffix(domain, "s")
}
