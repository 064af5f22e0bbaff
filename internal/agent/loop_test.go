package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/careops/wardagent/internal/config"
	"github.com/careops/wardagent/internal/patient"
	"github.com/careops/wardagent/internal/tools"
)

// scriptedModel replays a fixed sequence of choices; the last entry
// repeats once the script runs out.
type scriptedModel struct {
	script []*llms.ContentChoice
	errs   []error
	calls  int
	delay  time.Duration
}

func (m *scriptedModel) Generate(ctx context.Context, messages []llms.MessageContent, decls []llms.Tool) (*llms.ContentChoice, error) {
	if m.delay > 0 {
		// Deliberately ignores ctx: models that stall must not stall
		// the loop.
		time.Sleep(m.delay)
	}

	i := m.calls
	m.calls++
	if i >= len(m.script) {
		i = len(m.script) - 1
	}
	if len(m.errs) > 0 {
		j := i
		if j >= len(m.errs) {
			j = len(m.errs) - 1
		}
		if m.errs[j] != nil {
			return nil, m.errs[j]
		}
	}
	return m.script[i], nil
}

func textChoice(text string) *llms.ContentChoice {
	return &llms.ContentChoice{Content: text}
}

func toolChoice(name, args string) *llms.ContentChoice {
	return &llms.ContentChoice{
		ToolCalls: []llms.ToolCall{{
			ID:   "call-1",
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		}},
	}
}

func loopConfig() config.Config {
	return config.Config{
		AgentEnabled: true,
		MaxSteps:     3,
		Timeout:      2 * time.Second,
	}
}

func loopContext() *tools.Context {
	return &tools.Context{
		Patients: []patient.Patient{
			{
				ID:     "P-001",
				Name:   "Ravi Sharma",
				Triage: patient.TriageRed,
				Vitals: &patient.VitalSigns{HeartRate: 118, SystolicBP: 92, DiastolicBP: 58},
			},
			{ID: "P-002", Name: "Meera Iyer", Triage: patient.TriageYellow},
		},
		User: tools.User{ID: "dr-1", Name: "Dr. Rao", Role: "doctor"},
	}
}

func newTestLoop(model *scriptedModel, cfg config.Config) *Loop {
	executor := tools.NewExecutor(tools.NewRegistry(), map[string]bool{
		"add_order":      true,
		"add_note":       true,
		"update_patient": true,
	}, nil, nil)
	return NewLoop(model, executor, cfg, nil, nil)
}

func TestRun_Disabled(t *testing.T) {
	cfg := loopConfig()
	cfg.AgentEnabled = false
	loop := newTestLoop(&scriptedModel{script: []*llms.ContentChoice{textChoice("hi")}}, cfg)

	resp := loop.Run(context.Background(), "anything", loopContext(), "")

	assert.Equal(t, disabledAnswer, resp.Answer)
	assert.Equal(t, 0.0, resp.Confidence)
	assert.Empty(t, resp.Steps)
}

func TestRun_NilModel(t *testing.T) {
	executor := tools.NewExecutor(tools.NewRegistry(), nil, nil, nil)
	loop := NewLoop(nil, executor, loopConfig(), nil, nil)

	resp := loop.Run(context.Background(), "anything", loopContext(), "")

	assert.Equal(t, fallbackAnswer, resp.Answer)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestRun_DirectAnswer(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{textChoice("Nothing urgent on the board.")}}
	loop := newTestLoop(model, loopConfig())

	resp := loop.Run(context.Background(), "anything to worry about?", loopContext(), "")

	assert.Equal(t, "Nothing urgent on the board.", resp.Answer)
	assert.Equal(t, confidenceFinalNoTools, resp.Confidence)
	require.Len(t, resp.Steps, 1)
	assert.True(t, resp.Steps[0].Terminal)
	assert.Empty(t, resp.ToolsUsed)
}

func TestRun_ToolThenAnswer(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("get_vitals", `{"patient":"Ravi Sharma"}`),
		textChoice("HR 118, BP 92/58. He is borderline hypotensive."),
	}}
	loop := newTestLoop(model, loopConfig())

	resp := loop.Run(context.Background(), "vitals for Ravi Sharma?", loopContext(), "")

	assert.Equal(t, confidenceFinalWithTools, resp.Confidence)
	assert.Equal(t, []string{"get_vitals"}, resp.ToolsUsed)
	require.Len(t, resp.Steps, 2)
	assert.Equal(t, tools.NameGetVitals, resp.Steps[0].Tool)
	require.NotNil(t, resp.Steps[0].Result)
	assert.True(t, resp.Steps[0].Result.Success)
	assert.True(t, resp.Steps[1].Terminal)
	assert.Equal(t, 2, model.calls)
}

func TestRun_MaxSteps(t *testing.T) {
	// Never produces a final answer
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("search_patients", `{"criteria":"critical"}`),
	}}
	cfg := loopConfig()
	cfg.MaxSteps = 3
	loop := newTestLoop(model, cfg)

	resp := loop.Run(context.Background(), "keep digging", loopContext(), "")

	assert.Equal(t, confidenceMaxSteps, resp.Confidence)
	assert.Len(t, resp.Steps, 3)
	assert.Equal(t, 3, model.calls)
	assert.Contains(t, resp.Answer, "here is what I found")
}

func TestRun_StallingModel(t *testing.T) {
	model := &scriptedModel{
		script: []*llms.ContentChoice{textChoice("too late")},
		delay:  5 * time.Second,
	}
	cfg := loopConfig()
	cfg.Timeout = 100 * time.Millisecond
	loop := newTestLoop(model, cfg)

	start := time.Now()
	resp := loop.Run(context.Background(), "anything", loopContext(), "")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second, "loop must return within the budget even when the model stalls")
	assert.Equal(t, fallbackAnswer, resp.Answer)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestRun_TimeoutAfterProgress(t *testing.T) {
	// First call answers fast with a tool, the second stalls past the
	// budget; the partial step log becomes the answer.
	calls := 0
	model := &callbackModel{fn: func(ctx context.Context, msgs []llms.MessageContent, decls []llms.Tool) (*llms.ContentChoice, error) {
		calls++
		if calls == 1 {
			return toolChoice("search_patients", `{"criteria":"critical"}`), nil
		}
		time.Sleep(2 * time.Second)
		return textChoice("never delivered"), nil
	}}

	cfg := loopConfig()
	cfg.Timeout = 150 * time.Millisecond
	executor := tools.NewExecutor(tools.NewRegistry(), nil, nil, nil)
	loop := NewLoop(model, executor, cfg, nil, nil)

	resp := loop.Run(context.Background(), "anything", loopContext(), "")

	assert.Equal(t, confidencePartial, resp.Confidence)
	require.Len(t, resp.Steps, 1)
	assert.Contains(t, resp.Answer, "here is what I found")
}

// callbackModel delegates to an inline function.
type callbackModel struct {
	fn func(context.Context, []llms.MessageContent, []llms.Tool) (*llms.ContentChoice, error)
}

func (m *callbackModel) Generate(ctx context.Context, msgs []llms.MessageContent, decls []llms.Tool) (*llms.ContentChoice, error) {
	return m.fn(ctx, msgs, decls)
}

func TestRun_ModelError(t *testing.T) {
	model := &scriptedModel{
		script: []*llms.ContentChoice{nil},
		errs:   []error{errors.New("connection refused")},
	}
	loop := newTestLoop(model, loopConfig())

	resp := loop.Run(context.Background(), "anything", loopContext(), "")

	assert.Equal(t, fallbackAnswer, resp.Answer)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestRun_UnknownToolRecovery(t *testing.T) {
	// The model asks for a tool that does not exist, observes the
	// failure and answers anyway.
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("teleport_patient", `{}`),
		textChoice("I can't do that, but the board looks stable."),
	}}
	loop := newTestLoop(model, loopConfig())

	resp := loop.Run(context.Background(), "move Ravi to ICU", loopContext(), "")

	require.Len(t, resp.Steps, 2)
	require.NotNil(t, resp.Steps[0].Result)
	assert.False(t, resp.Steps[0].Result.Success)
	assert.Contains(t, resp.Steps[0].Result.Error, "unknown tool")
	assert.Equal(t, "I can't do that, but the board looks stable.", resp.Answer)
}

func TestRun_PendingActions(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("add_order", `{"patient":"P-001","label":"Complete Blood Count","category":"investigation"}`),
		textChoice("I've staged a CBC for Ravi Sharma; please confirm it."),
	}}
	loop := newTestLoop(model, loopConfig())

	resp := loop.Run(context.Background(), "order a CBC for Ravi", loopContext(), "")

	require.Len(t, resp.PendingActions, 1)
	pa := resp.PendingActions[0]
	assert.NotEmpty(t, pa.ID)
	assert.Equal(t, tools.StagedOrderKind, pa.Kind)
	assert.Equal(t, "P-001", pa.PatientID)
	assert.Equal(t, "Ravi Sharma", pa.PatientName)
	require.NotNil(t, pa.Order)
	assert.Equal(t, "Complete Blood Count", pa.Order.Label)
}

func TestRun_MalformedArguments(t *testing.T) {
	// Broken JSON degrades to empty params, which fails validation and
	// is observed by the model rather than crashing the loop.
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("get_vitals", `{"patient": `),
		textChoice("I couldn't read the vitals request."),
	}}
	loop := newTestLoop(model, loopConfig())

	resp := loop.Run(context.Background(), "vitals", loopContext(), "")

	require.Len(t, resp.Steps, 2)
	require.NotNil(t, resp.Steps[0].Result)
	assert.False(t, resp.Steps[0].Result.Success)
	assert.Contains(t, resp.Steps[0].Result.Error, "missing required parameter(s)")
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int // expected key count
	}{
		{"valid", `{"a":1,"b":"x"}`, 2},
		{"empty string", "", 0},
		{"malformed", `{"a":`, 0},
		{"not an object", `[1,2]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseArguments(tt.raw)
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	actx := loopContext()

	t.Run("board view", func(t *testing.T) {
		prompt := buildSystemPrompt(actx, "")
		assert.Contains(t, prompt, "2 patients are on the board")
		assert.NotContains(t, prompt, "Relevant past interactions")
	})

	t.Run("current patient", func(t *testing.T) {
		withPatient := *actx
		withPatient.Patient = &actx.Patients[0]
		prompt := buildSystemPrompt(&withPatient, "")
		assert.Contains(t, prompt, "Current patient: Ravi Sharma")
	})

	t.Run("memory block", func(t *testing.T) {
		prompt := buildSystemPrompt(actx, "- [2026-08-01] (80% match) reviewed vitals")
		assert.Contains(t, prompt, "Relevant past interactions (de-identified):")
		assert.Contains(t, prompt, "reviewed vitals")
	})
}

func TestSummarizeSteps(t *testing.T) {
	t.Run("no successful steps falls back", func(t *testing.T) {
		steps := []Step{{Number: 1, Tool: tools.NameGetVitals, Result: &tools.Result{Success: false, Error: "nope"}}}
		assert.Equal(t, fallbackAnswer, summarizeSteps(steps))
	})

	t.Run("successful steps become bullets", func(t *testing.T) {
		steps := []Step{
			{Number: 1, Tool: tools.NameSearchPatients, Result: &tools.Result{Success: true, Rationale: "matched 1 patient(s)"}},
		}
		got := summarizeSteps(steps)
		assert.Contains(t, got, "search_patients: matched 1 patient(s)")
	})
}

func TestObservationJSON(t *testing.T) {
	ok := observationJSON(tools.Result{Success: true, Data: map[string]any{"count": 2}, RequiresConfirmation: true})
	assert.Contains(t, ok, `"success":true`)
	assert.Contains(t, ok, `"requires_confirmation":true`)

	fail := observationJSON(tools.Result{Success: false, Error: "patient not found"})
	assert.Contains(t, fail, `"success":false`)
	assert.Contains(t, fail, "patient not found")
}

func TestRun_StepNumbering(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("search_patients", `{"criteria":"critical"}`),
		toolChoice("get_vitals", `{"patient":"P-001"}`),
		textChoice("done"),
	}}
	loop := newTestLoop(model, loopConfig())

	resp := loop.Run(context.Background(), "sweep the board", loopContext(), "")

	require.Len(t, resp.Steps, 3)
	for i, step := range resp.Steps {
		assert.Equal(t, i+1, step.Number, fmt.Sprintf("step %d misnumbered", i))
	}
}
