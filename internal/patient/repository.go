package patient

import (
	"context"
	"strings"
	"sync"
)

// Repository is the read/update boundary to the patient data store.
// The backing store is owned by the surrounding application; the agent
// core only reads, and only mutates through UpdateByID after an explicit
// user confirmation outside this core.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context) ([]Patient, error)
	UpdateByID(ctx context.Context, id string, update func(*Patient)) error
}

// Lookup resolves a free-text patient identifier against a patient list.
// Matches case-insensitively on exact id or substring of name. Ambiguous
// matches resolve to the first match; callers treat that as a documented
// limitation, not an error. Returns nil when nothing matches.
func Lookup(patients []Patient, identifier string) *Patient {
	needle := strings.ToLower(strings.TrimSpace(identifier))
	if needle == "" {
		return nil
	}
	for i := range patients {
		if strings.ToLower(patients[i].ID) == needle {
			return &patients[i]
		}
	}
	for i := range patients {
		if strings.Contains(strings.ToLower(patients[i].Name), needle) {
			return &patients[i]
		}
	}
	return nil
}

// MemoryRepository is an in-process Repository for tests and the CLI demo.
type MemoryRepository struct {
	mu       sync.RWMutex
	patients map[string]*Patient
	order    []string
}

// NewMemoryRepository creates a repository seeded with the given patients.
func NewMemoryRepository(patients ...Patient) *MemoryRepository {
	r := &MemoryRepository{patients: make(map[string]*Patient)}
	for _, p := range patients {
		cp := p
		r.patients[p.ID] = &cp
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.patients[id])
	}
	return out, nil
}

func (r *MemoryRepository) UpdateByID(ctx context.Context, id string, update func(*Patient)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return nil
	}
	update(p)
	return nil
}
