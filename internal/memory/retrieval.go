package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/careops/wardagent/internal/deid"
	"github.com/careops/wardagent/internal/embed"
	"github.com/careops/wardagent/internal/metrics"
)

// SearchParams scopes a semantic search.
type SearchParams struct {
	DoctorID    string
	Query       string
	PatientID   string // optional: narrows to one patient's episodes
	PatientName string // optional: scrubbed from the query before embedding
}

// Search performs semantic retrieval: embed the de-identified query,
// rank a bounded recent window of episodes by cosine similarity,
// discard below-threshold hits and return the top K. Ranking goes
// through the vector index when one is wired, with a linear scan over
// the window as the fallback. Returns an empty slice when memory is
// unavailable or embedding fails.
func (s *Store) Search(ctx context.Context, p SearchParams) []SearchResult {
	if !s.available() {
		return nil
	}

	start := time.Now()
	defer func() {
		if s.stats != nil {
			s.stats.RecordTiming(metrics.OpMemorySearch, time.Since(start))
		}
	}()

	query := deid.Scrub(p.Query, p.PatientName)
	queryEmbedding := s.embedder.Embed(ctx, query)
	if len(queryEmbedding) == 0 {
		return nil
	}

	candidates, err := s.backend.RecentEpisodes(ctx, p.DoctorID, s.cfg.RetrievalWindow)
	if err != nil {
		s.logger.Warn("memory search failed", "doctor", p.DoctorID, "error", err)
		return nil
	}

	var patientRef string
	if p.PatientID != "" {
		patientRef = PatientRef(s.cfg.MemoryHashKey, p.PatientID)
	}

	if s.vectors != nil {
		results, err := s.queryIndex(queryEmbedding, p.DoctorID, patientRef, candidates)
		if err == nil {
			return results
		}
		s.logger.Warn("vector index query failed, scanning window", "doctor", p.DoctorID, "error", err)
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, ep := range candidates {
		if patientRef != "" && ep.PatientRef != patientRef {
			continue
		}
		if len(ep.Embedding) == 0 {
			continue
		}
		sim := embed.Cosine(queryEmbedding, ep.Embedding)
		if sim < s.cfg.SimilarityThreshold {
			continue
		}
		results = append(results, SearchResult{Episode: ep, Similarity: sim})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if max := s.cfg.MaxRetrieve; max > 0 && len(results) > max {
		results = results[:max]
	}
	return results
}

// queryIndex ranks through the vector index, scoping by doctor and
// optional patient metadata. Index hits are joined back against the
// recency window so episodes outside it never surface, keeping the
// result set identical to the scan path.
func (s *Store) queryIndex(queryEmbedding []float32, doctorID, patientRef string, window []Episode) ([]SearchResult, error) {
	byID := make(map[string]Episode, len(window))
	for _, ep := range window {
		byID[ep.ID] = ep
	}

	filter := func(meta map[string]any) bool {
		if meta["doctor_id"] != doctorID {
			return false
		}
		return patientRef == "" || meta["patient_ref"] == patientRef
	}

	matches, err := s.vectors.Query(queryEmbedding, s.cfg.RetrievalWindow, filter)
	if err != nil {
		return nil, err
	}

	// Matches arrive sorted by score, so the top-K cut is a break.
	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		if m.Score < s.cfg.SimilarityThreshold {
			break
		}
		ep, ok := byID[m.ID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{Episode: ep, Similarity: m.Score})
		if max := s.cfg.MaxRetrieve; max > 0 && len(results) >= max {
			break
		}
	}
	return results, nil
}

// PatientHistory returns a patient's episodes most-recent-first,
// independent of semantic similarity.
func (s *Store) PatientHistory(ctx context.Context, doctorID, patientID string, maxResults int) []Episode {
	if !s.cfg.MemoryEnabled || s.backend == nil {
		return nil
	}

	candidates, err := s.backend.RecentEpisodes(ctx, doctorID, s.cfg.RetrievalWindow)
	if err != nil {
		s.logger.Warn("history lookup failed", "doctor", doctorID, "error", err)
		return nil
	}

	patientRef := PatientRef(s.cfg.MemoryHashKey, patientID)
	var history []Episode
	for _, ep := range candidates {
		if ep.PatientRef != patientRef {
			continue
		}
		history = append(history, ep)
		if maxResults > 0 && len(history) >= maxResults {
			break
		}
	}
	return history
}

// Recent returns a doctor's episodes most-recent-first, all patients.
func (s *Store) Recent(ctx context.Context, doctorID string, maxResults int) []Episode {
	if !s.cfg.MemoryEnabled || s.backend == nil {
		return nil
	}
	if maxResults <= 0 || maxResults > s.cfg.RetrievalWindow {
		maxResults = s.cfg.RetrievalWindow
	}

	episodes, err := s.backend.RecentEpisodes(ctx, doctorID, maxResults)
	if err != nil {
		s.logger.Warn("history lookup failed", "doctor", doctorID, "error", err)
		return nil
	}
	return episodes
}

// FormatEpisodesForContext renders search results as dated, truncated,
// percentage-scored lines for injection into a prompt. An empty string
// means "omit this block", not an error.
func FormatEpisodesForContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	for _, r := range results {
		summary := r.Episode.Summary
		if len(summary) > 120 {
			summary = truncate(summary, 120) + "..."
		}
		fmt.Fprintf(&b, "- [%s] (%.0f%% match) %s\n",
			r.Episode.Timestamp.Format("2006-01-02"),
			r.Similarity*100,
			summary,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}
