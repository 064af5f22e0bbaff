// Package embed provides text embedding with a bounded TTL cache and
// the cosine similarity math used by memory retrieval.
package embed

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/careops/wardagent/internal/metrics"
)

// Backend converts text into a fixed-length vector. Implementations live
// in internal/llm; failures are reported as errors and absorbed here.
type Backend interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service wraps a Backend with normalization and caching. A nil backend
// is treated as "embedding unavailable": every call returns an empty
// vector.
type Service struct {
	backend  Backend
	cache    *expirable.LRU[string, []float32]
	maxChars int
	logger   *slog.Logger
	stats    *metrics.Collector
}

// NewService creates an embedding service. size bounds the cache entry
// count, ttl the entry lifetime. maxChars caps normalized input length.
func NewService(backend Backend, size int, ttl time.Duration, maxChars int, logger *slog.Logger, stats *metrics.Collector) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = 256
	}
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &Service{
		backend:  backend,
		cache:    expirable.NewLRU[string, []float32](size, nil, ttl),
		maxChars: maxChars,
		logger:   logger,
		stats:    stats,
	}
}

// Normalize trims, case-folds and length-caps text. The same form is used
// for the cache key and the backend call so equivalent queries share one
// cache entry.
func (s *Service) Normalize(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.Join(strings.Fields(t), " ")
	if len(t) > s.maxChars {
		t = t[:s.maxChars]
	}
	return t
}

// Embed returns the embedding for text, or an empty vector when the
// backend is missing, the text is empty, or the backend call fails.
// It never returns an error: embedding is best-effort by contract.
func (s *Service) Embed(ctx context.Context, text string) []float32 {
	key := s.Normalize(text)
	if key == "" || s.backend == nil {
		return nil
	}

	if v, ok := s.cache.Get(key); ok {
		return v
	}

	start := time.Now()
	vector, err := s.backend.Embed(ctx, key)
	if s.stats != nil {
		s.stats.RecordTiming(metrics.OpEmbedding, time.Since(start))
	}
	if err != nil {
		s.logger.Warn("embedding failed", "text_len", len(key), "error", err)
		return nil
	}
	if len(vector) == 0 {
		return nil
	}

	s.cache.Add(key, vector)
	return vector
}

// CacheLen reports the number of live cache entries.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}

// Cosine computes cosine similarity between two vectors, in [-1, 1].
// Length-mismatched, empty or zero-norm inputs yield 0 rather than an
// error so retrieval can treat them as "no match".
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
