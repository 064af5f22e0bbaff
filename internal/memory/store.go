package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/careops/wardagent/internal/config"
	"github.com/careops/wardagent/internal/deid"
	"github.com/careops/wardagent/internal/embed"
	"github.com/careops/wardagent/internal/metrics"
	"github.com/careops/wardagent/internal/vectorstore"
)

const summaryCap = 300

// Store owns episodes. Every operation is best-effort: a disabled
// feature flag or missing backend short-circuits to an empty result and
// never fails the surrounding interaction.
type Store struct {
	backend  Backend
	embedder *embed.Service
	vectors  vectorstore.Store
	cfg      config.Config
	logger   *slog.Logger
	stats    *metrics.Collector
}

// NewStore creates an episode store. backend and vectors may be nil; a
// nil backend marks the store unavailable, a nil vectors skips index
// maintenance.
func NewStore(backend Backend, embedder *embed.Service, vectors vectorstore.Store, cfg config.Config, logger *slog.Logger, stats *metrics.Collector) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend:  backend,
		embedder: embedder,
		vectors:  vectors,
		cfg:      cfg,
		logger:   logger,
		stats:    stats,
	}
}

func (s *Store) available() bool {
	return s.cfg.MemoryEnabled && s.backend != nil && s.embedder != nil
}

// SaveParams carries one completed interaction into the store.
type SaveParams struct {
	DoctorID    string
	PatientID   string
	PatientName string
	Query       string
	Response    string
	ToolsUsed   []string
	Confidence  float64
	SessionID   string
}

// SaveEpisode de-identifies, embeds and persists one interaction.
// Returns the episode id and true on success; "" and false when memory
// is disabled, the store is unavailable, or the text cannot be embedded
// (an unsearchable episode is never persisted).
func (s *Store) SaveEpisode(ctx context.Context, p SaveParams) (string, bool) {
	if !s.available() {
		return "", false
	}

	start := time.Now()

	query := deid.Scrub(p.Query, p.PatientName)
	response := deid.Scrub(p.Response, p.PatientName)
	summary := buildSummary(query, p.ToolsUsed)

	embedding := s.embedder.Embed(ctx, query+" "+summary)
	if len(embedding) == 0 {
		s.logger.Warn("episode not saved: embedding unavailable", "doctor", p.DoctorID)
		return "", false
	}

	if limit := s.cfg.ResponseCap; limit > 0 {
		response = truncate(response, limit)
	}

	ep := Episode{
		ID:          uuid.NewString(),
		DoctorID:    p.DoctorID,
		PatientRef:  PatientRef(s.cfg.MemoryHashKey, p.PatientID),
		PatientName: p.PatientName,
		SessionID:   p.SessionID,
		Timestamp:   time.Now().UTC(),
		Summary:     summary,
		Query:       query,
		Response:    response,
		ToolsUsed:   p.ToolsUsed,
		Outcome:     OutcomeNone,
		Embedding:   embedding,
		Tags:        deid.ExtractTags(query + " " + response),
		Confidence:  p.Confidence,
	}

	if err := s.backend.CreateEpisode(ctx, ep); err != nil {
		s.logger.Warn("episode not saved", "doctor", p.DoctorID, "error", err)
		return "", false
	}

	if s.vectors != nil {
		meta := map[string]any{"doctor_id": ep.DoctorID, "patient_ref": ep.PatientRef}
		if err := s.vectors.Upsert(ep.ID, embedding, meta); err != nil {
			s.logger.Warn("vector index upsert failed", "episode", ep.ID, "error", err)
		}
	}

	if s.stats != nil {
		s.stats.RecordTiming(metrics.OpEpisodeSave, time.Since(start))
	}

	if count, err := s.backend.CountEpisodes(ctx, p.DoctorID); err == nil {
		s.CheckScaleWarning(count)
	}

	s.logger.Info("episode saved", "id", ep.ID, "doctor", p.DoctorID, "tags", len(ep.Tags))
	return ep.ID, true
}

// UpdateOutcome sets the episode's outcome tag, the only mutation
// allowed after persistence. A no-op when the store is unavailable.
func (s *Store) UpdateOutcome(ctx context.Context, doctorID, episodeID string, outcome Outcome) {
	if !s.cfg.MemoryEnabled || s.backend == nil {
		return
	}
	if err := s.backend.UpdateOutcome(ctx, doctorID, episodeID, outcome); err != nil {
		s.logger.Warn("outcome update failed", "episode", episodeID, "error", err)
	}
}

// CleanupOld deletes episodes past the retention window, bounded per
// call by the configured batch cap. Returns the number deleted. Safe to
// call opportunistically; a no-op when the store is unavailable.
func (s *Store) CleanupOld(ctx context.Context, doctorID string) int {
	if !s.cfg.MemoryEnabled || s.backend == nil {
		return 0
	}

	cutoff := time.Now().UTC().Add(-s.cfg.Retention())
	ids, err := s.backend.DeleteOlderThan(ctx, doctorID, cutoff, s.cfg.CleanupBatch)
	if err != nil {
		s.logger.Warn("cleanup failed", "doctor", doctorID, "error", err)
		return 0
	}

	if s.vectors != nil {
		for _, id := range ids {
			if err := s.vectors.Delete(id); err != nil {
				s.logger.Warn("vector index delete failed", "episode", id, "error", err)
			}
		}
	}

	if len(ids) > 0 {
		s.logger.Info("retention cleanup", "doctor", doctorID, "deleted", len(ids))
	}
	return len(ids)
}

// CheckScaleWarning logs when the per-doctor episode count crosses the
// configured thresholds. Pure advisory.
func (s *Store) CheckScaleWarning(count int) vectorstore.ScaleRecommendation {
	rec := vectorstore.Recommend(count)
	switch {
	case count >= s.cfg.ScaleCritical:
		s.logger.Error("episode volume critical", "count", count, "recommendation", rec.Recommendation)
	case count >= s.cfg.ScaleWarn:
		s.logger.Warn("episode volume high", "count", count, "recommendation", rec.Recommendation)
	}
	return rec
}

// buildSummary renders a short human summary from de-identified query
// text and the tools used.
func buildSummary(query string, toolsUsed []string) string {
	summary := query
	if len(toolsUsed) > 0 {
		summary = fmt.Sprintf("%s (via %s)", summary, strings.Join(toolsUsed, ", "))
	}
	if len(summary) > summaryCap {
		summary = truncate(summary, summaryCap) + "..."
	}
	return summary
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
