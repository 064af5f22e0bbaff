// Package vectorstore abstracts the embedding index behind a small
// upsert/query/delete/count interface so the backing implementation can
// be swapped once episode volume crosses the scale threshold.
package vectorstore

import (
	"sort"
	"sync"

	"github.com/careops/wardagent/internal/embed"
)

// Match is one ranked query hit.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Filter narrows query candidates by metadata. A nil Filter matches all.
type Filter func(metadata map[string]any) bool

// Store is the storage-agnostic vector index. Query returns matches in
// descending score order.
type Store interface {
	Upsert(id string, embedding []float32, metadata map[string]any) error
	Query(embedding []float32, topK int, filter Filter) ([]Match, error)
	Delete(id string) error
	Count() (int, error)
}

type entry struct {
	embedding []float32
	metadata  map[string]any
}

// Memory is the default in-process implementation: a map with
// client-side cosine ranking. Correct but O(n) per query; intended for
// low episode counts.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-process index.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (m *Memory) Upsert(id string, embedding []float32, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = entry{embedding: embedding, metadata: metadata}
	return nil
}

func (m *Memory) Query(embedding []float32, topK int, filter Filter) ([]Match, error) {
	if topK <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.entries))
	for id, e := range m.entries {
		if filter != nil && !filter(e.metadata) {
			continue
		}
		matches = append(matches, Match{
			ID:       id,
			Score:    embed.Cosine(embedding, e.embedding),
			Metadata: e.metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *Memory) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}
