package memory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Backend is the durable episode store: append-mostly, one narrow
// update path (outcome), one delete path (age-based batches).
// internal/db provides the SurrealDB implementation; MemoryBackend
// serves tests and single-process deployments.
type Backend interface {
	CreateEpisode(ctx context.Context, ep Episode) error
	// RecentEpisodes returns up to limit episodes for a doctor, most
	// recent first.
	RecentEpisodes(ctx context.Context, doctorID string, limit int) ([]Episode, error)
	UpdateOutcome(ctx context.Context, doctorID, episodeID string, outcome Outcome) error
	// DeleteOlderThan removes at most limit episodes older than cutoff
	// and returns the deleted ids.
	DeleteOlderThan(ctx context.Context, doctorID string, cutoff time.Time, limit int) ([]string, error)
	CountEpisodes(ctx context.Context, doctorID string) (int, error)
	// DoctorIDs lists doctors with stored episodes, for the janitor.
	DoctorIDs(ctx context.Context) ([]string, error)
}

// MemoryBackend is an in-process Backend.
type MemoryBackend struct {
	mu       sync.RWMutex
	episodes map[string][]Episode // doctorID -> episodes
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{episodes: make(map[string][]Episode)}
}

func (b *MemoryBackend) CreateEpisode(ctx context.Context, ep Episode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.episodes[ep.DoctorID] = append(b.episodes[ep.DoctorID], ep)
	return nil
}

func (b *MemoryBackend) RecentEpisodes(ctx context.Context, doctorID string, limit int) ([]Episode, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	eps := b.episodes[doctorID]
	out := make([]Episode, len(eps))
	copy(out, eps)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b *MemoryBackend) UpdateOutcome(ctx context.Context, doctorID, episodeID string, outcome Outcome) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	eps := b.episodes[doctorID]
	for i := range eps {
		if eps[i].ID == episodeID {
			eps[i].Outcome = outcome
			return nil
		}
	}
	return nil
}

func (b *MemoryBackend) DeleteOlderThan(ctx context.Context, doctorID string, cutoff time.Time, limit int) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var deleted []string
	var kept []Episode
	for _, ep := range b.episodes[doctorID] {
		if ep.Timestamp.Before(cutoff) && (limit <= 0 || len(deleted) < limit) {
			deleted = append(deleted, ep.ID)
			continue
		}
		kept = append(kept, ep)
	}
	b.episodes[doctorID] = kept
	return deleted, nil
}

func (b *MemoryBackend) CountEpisodes(ctx context.Context, doctorID string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.episodes[doctorID]), nil
}

func (b *MemoryBackend) DoctorIDs(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.episodes))
	for id := range b.episodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
