package agent

import (
	"context"
	"log/slog"

	"github.com/careops/wardagent/internal/config"
	"github.com/careops/wardagent/internal/llm"
	"github.com/careops/wardagent/internal/memory"
	"github.com/careops/wardagent/internal/metrics"
	"github.com/careops/wardagent/internal/tools"
)

// Service is the library entry point the surrounding application
// invokes: memory-primed reasoning plus best-effort episode capture.
type Service struct {
	loop   *Loop
	memory *memory.Store
	cfg    config.Config
	logger *slog.Logger
}

// NewService wires the loop and memory store. memoryStore may be nil
// when the memory feature is not deployed.
func NewService(model llm.ChatModel, executor *tools.Executor, memoryStore *memory.Store, cfg config.Config, logger *slog.Logger, stats *metrics.Collector) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		loop:   NewLoop(model, executor, cfg, logger, stats),
		memory: memoryStore,
		cfg:    cfg,
		logger: logger,
	}
}

// AskParams identifies the asking clinician and session for episode
// attribution.
type AskParams struct {
	DoctorID  string
	SessionID string
}

// Ask answers one query. Past episodes relevant to the query are
// injected into the prompt when available, and the completed
// interaction is persisted afterwards. Memory is strictly best-effort
// on both sides; only the loop's answer is authoritative.
func (s *Service) Ask(ctx context.Context, query string, actx *tools.Context, p AskParams) Response {
	memoryContext := ""
	if s.memory != nil {
		search := memory.SearchParams{
			DoctorID: p.DoctorID,
			Query:    query,
		}
		if actx.Patient != nil {
			search.PatientID = actx.Patient.ID
			search.PatientName = actx.Patient.Name
		}
		memoryContext = memory.FormatEpisodesForContext(s.memory.Search(ctx, search))
	}

	resp := s.loop.Run(ctx, query, actx, memoryContext)

	// Zero confidence means a canned disabled/fallback answer; storing
	// those would pollute retrieval with text the model never produced.
	if s.memory != nil && resp.Answer != "" && resp.Confidence > 0 {
		save := memory.SaveParams{
			DoctorID:   p.DoctorID,
			SessionID:  p.SessionID,
			Query:      query,
			Response:   resp.Answer,
			ToolsUsed:  resp.ToolsUsed,
			Confidence: resp.Confidence,
		}
		if actx.Patient != nil {
			save.PatientID = actx.Patient.ID
			save.PatientName = actx.Patient.Name
		}
		if _, ok := s.memory.SaveEpisode(ctx, save); !ok {
			s.logger.Debug("episode capture skipped", "doctor", p.DoctorID)
		}
	}

	return resp
}

// RecordOutcome tags a stored episode with the clinician's disposition
// of the advice. Forwarded to the store's narrow outcome update.
func (s *Service) RecordOutcome(ctx context.Context, doctorID, episodeID string, outcome memory.Outcome) {
	if s.memory == nil {
		return
	}
	s.memory.UpdateOutcome(ctx, doctorID, episodeID, outcome)
}
