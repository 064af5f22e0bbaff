package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/careops/wardagent/internal/embed"
	"github.com/careops/wardagent/internal/memory"
	"github.com/careops/wardagent/internal/tools"
	"github.com/careops/wardagent/internal/vectorstore"
)

// fixedEmbedder serves one constant vector for every text.
type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func serviceFixture(t *testing.T) (*Service, *memory.MemoryBackend) {
	t.Helper()

	cfg := loopConfig()
	cfg.MemoryEnabled = true
	cfg.MaxRetrieve = 5
	cfg.SimilarityThreshold = 0.65
	cfg.RetrievalWindow = 100
	cfg.RetentionDays = 90
	cfg.CleanupBatch = 50
	cfg.ScaleWarn = 800
	cfg.ScaleCritical = 1500
	cfg.ResponseCap = 2000
	cfg.MemoryHashKey = "test-key"

	model := &scriptedModel{script: []*llms.ContentChoice{textChoice("All quiet on the board.")}}
	executor := tools.NewExecutor(tools.NewRegistry(), map[string]bool{"add_order": true}, nil, nil)

	backend := memory.NewMemoryBackend()
	embedSvc := embed.NewService(fixedEmbedder{}, 16, time.Minute, 8000, nil, nil)
	store := memory.NewStore(backend, embedSvc, vectorstore.NewMemory(), cfg, nil, nil)

	return NewService(model, executor, store, cfg, nil, nil), backend
}

func TestAsk_SavesEpisode(t *testing.T) {
	svc, backend := serviceFixture(t)
	ctx := context.Background()

	actx := loopContext()
	actx.Patient = &actx.Patients[0]

	resp := svc.Ask(ctx, "how is Ravi Sharma doing?", actx, AskParams{
		DoctorID:  "dr-1",
		SessionID: "sess-1",
	})
	require.Equal(t, "All quiet on the board.", resp.Answer)

	episodes, err := backend.RecentEpisodes(ctx, "dr-1", 10)
	require.NoError(t, err)
	require.Len(t, episodes, 1)

	ep := episodes[0]
	assert.NotContains(t, strings.ToLower(ep.Query), "ravi", "captured query is de-identified")
	assert.Equal(t, "sess-1", ep.SessionID)
	assert.Equal(t, resp.Confidence, ep.Confidence)
	assert.Equal(t, memory.PatientRef("test-key", "P-001"), ep.PatientRef)
}

func TestAsk_PrimesPromptWithMemory(t *testing.T) {
	svc, _ := serviceFixture(t)
	ctx := context.Background()

	// A prior episode saved through the store, so both the backend and
	// the vector index hold it; the fixed embedder makes retrieval a
	// guaranteed hit.
	_, ok := svc.memory.SaveEpisode(ctx, memory.SaveParams{
		DoctorID:    "dr-1",
		PatientID:   "P-001",
		PatientName: "Ravi Sharma",
		Query:       "reviewed vitals for Ravi Sharma",
		Response:    "stable overnight",
		ToolsUsed:   []string{"get_vitals"},
	})
	require.True(t, ok)

	var systemPrompt string
	wrapped := &callbackModel{fn: func(ctx context.Context, msgs []llms.MessageContent, decls []llms.Tool) (*llms.ContentChoice, error) {
		for _, m := range msgs {
			if m.Role == llms.ChatMessageTypeSystem {
				for _, part := range m.Parts {
					if text, ok := part.(llms.TextContent); ok {
						systemPrompt = text.Text
					}
				}
			}
		}
		return textChoice("done"), nil
	}}
	svc.loop.model = wrapped

	svc.Ask(ctx, "check the vitals again", loopContext(), AskParams{DoctorID: "dr-1"})

	assert.Contains(t, systemPrompt, "Relevant past interactions (de-identified):")
	assert.Contains(t, systemPrompt, "reviewed vitals for [PATIENT]")
}

func TestAsk_NilMemoryStore(t *testing.T) {
	executor := tools.NewExecutor(tools.NewRegistry(), nil, nil, nil)
	model := &scriptedModel{script: []*llms.ContentChoice{textChoice("fine")}}
	svc := NewService(model, executor, nil, loopConfig(), nil, nil)

	resp := svc.Ask(context.Background(), "anything", loopContext(), AskParams{DoctorID: "dr-1"})
	assert.Equal(t, "fine", resp.Answer)
}

func TestAsk_SkipsFallbackCapture(t *testing.T) {
	cfg := loopConfig()
	cfg.AgentEnabled = false
	cfg.MemoryEnabled = true
	cfg.MemoryHashKey = "test-key"

	executor := tools.NewExecutor(tools.NewRegistry(), nil, nil, nil)
	backend := memory.NewMemoryBackend()
	embedSvc := embed.NewService(fixedEmbedder{}, 16, time.Minute, 8000, nil, nil)
	store := memory.NewStore(backend, embedSvc, vectorstore.NewMemory(), cfg, nil, nil)
	svc := NewService(&scriptedModel{}, executor, store, cfg, nil, nil)

	resp := svc.Ask(context.Background(), "anything", loopContext(), AskParams{DoctorID: "dr-1"})
	require.Equal(t, 0.0, resp.Confidence)

	episodes, err := backend.RecentEpisodes(context.Background(), "dr-1", 10)
	require.NoError(t, err)
	assert.Empty(t, episodes, "canned answers must not enter retrieval")
}

func TestRecordOutcome(t *testing.T) {
	svc, backend := serviceFixture(t)
	ctx := context.Background()

	svc.Ask(ctx, "check the board", loopContext(), AskParams{DoctorID: "dr-1"})

	episodes, _ := backend.RecentEpisodes(ctx, "dr-1", 1)
	require.Len(t, episodes, 1)

	svc.RecordOutcome(ctx, "dr-1", episodes[0].ID, memory.OutcomeRejected)

	episodes, _ = backend.RecentEpisodes(ctx, "dr-1", 1)
	assert.Equal(t, memory.OutcomeRejected, episodes[0].Outcome)
}
