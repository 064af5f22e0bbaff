package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/careops/wardagent/internal/config"
	"github.com/careops/wardagent/internal/llm"
	"github.com/careops/wardagent/internal/metrics"
	"github.com/careops/wardagent/internal/tools"
)

// Loop is the bounded reasoning cycle: prompt the model, dispatch tool
// calls, re-prompt with observations, terminate on final text, the step
// ceiling or the wall-clock timeout.
type Loop struct {
	model    llm.ChatModel
	executor *tools.Executor
	cfg      config.Config
	logger   *slog.Logger
	stats    *metrics.Collector
}

// NewLoop creates a reasoning loop.
func NewLoop(model llm.ChatModel, executor *tools.Executor, cfg config.Config, logger *slog.Logger, stats *metrics.Collector) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		model:    model,
		executor: executor,
		cfg:      cfg,
		logger:   logger,
		stats:    stats,
	}
}

// Run executes one query. It always returns a well-formed Response:
// configuration problems, timeouts, tool failures and panics all degrade
// to fallback or partial answers, never to an error for the caller.
func (l *Loop) Run(ctx context.Context, query string, actx *tools.Context, memoryContext string) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("agent loop panicked", "panic", r)
			resp = Response{Answer: fallbackAnswer, Confidence: confidenceFallback}
		}
	}()

	if !l.cfg.AgentEnabled {
		return Response{Answer: disabledAnswer, Confidence: confidenceFallback}
	}
	if l.model == nil {
		l.logger.Error("agent invoked without a model backend")
		return Response{Answer: fallbackAnswer, Confidence: confidenceFallback}
	}

	deadline := time.Now().Add(l.cfg.Timeout)
	declarations := buildDeclarations(l.executor.Registry())

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildSystemPrompt(actx, memoryContext)),
		llms.TextParts(llms.ChatMessageTypeHuman, query),
	}

	var (
		steps   []Step
		pending []PendingAction
		used    []string
	)

	maxSteps := l.cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 5
	}

	for step := 0; step < maxSteps; step++ {
		choice, err := l.callModel(ctx, messages, declarations, deadline)
		if err != nil {
			l.logger.Warn("model call failed", "step", step, "error", err)
			return l.degraded(steps, pending, used)
		}

		call, ok := firstToolCall(choice)
		if !ok {
			// reasoning -> final: no tool invocation, the text is the answer.
			confidence := confidenceFinalNoTools
			if len(used) > 0 {
				confidence = confidenceFinalWithTools
			}
			steps = append(steps, Step{
				Number:   len(steps) + 1,
				Thought:  choice.Content,
				Terminal: true,
			})
			return Response{
				Answer:         choice.Content,
				Confidence:     confidence,
				Steps:          steps,
				PendingActions: pending,
				ToolsUsed:      used,
			}
		}

		name := tools.Name(call.FunctionCall.Name)
		params := parseArguments(call.FunctionCall.Arguments)

		result := l.executor.Execute(ctx, name, params, actx)
		used = append(used, string(name))
		steps = append(steps, Step{
			Number:  len(steps) + 1,
			Thought: choice.Content,
			Tool:    name,
			Params:  params,
			Result:  &result,
		})

		if result.RequiresConfirmation {
			if action, ok := pendingFromResult(result); ok {
				pending = append(pending, action)
			}
		}

		// tool_result -> reasoning: the observation re-enters the
		// conversation and the model is asked again.
		messages = append(messages,
			llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: []llms.ContentPart{call},
			},
			llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: call.ID,
					Name:       call.FunctionCall.Name,
					Content:    observationJSON(result),
				}},
			},
		)
	}

	// Forced exit: step ceiling hit without a final answer.
	l.logger.Info("step ceiling reached", "steps", len(steps))
	return Response{
		Answer:         summarizeSteps(steps),
		Confidence:     confidenceMaxSteps,
		Steps:          steps,
		PendingActions: pending,
		ToolsUsed:      used,
	}
}

// callModel races one model call against the remaining wall-clock
// budget. The generate goroutine is not cancelled mid-flight (the model
// client may not honor cancellation); the race just stops waiting.
func (l *Loop) callModel(ctx context.Context, messages []llms.MessageContent, declarations []llms.Tool, deadline time.Time) (*llms.ContentChoice, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return nil, context.DeadlineExceeded
	}

	callCtx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()

	type outcome struct {
		choice *llms.ContentChoice
		err    error
	}
	ch := make(chan outcome, 1)

	start := time.Now()
	go func() {
		choice, err := l.model.Generate(callCtx, messages, declarations)
		ch <- outcome{choice: choice, err: err}
	}()

	select {
	case out := <-ch:
		if l.stats != nil {
			l.stats.RecordTiming(metrics.OpModelCall, time.Since(start))
		}
		return out.choice, out.err
	case <-callCtx.Done():
		return nil, callCtx.Err()
	}
}

// degraded is the shared timeout/transport-failure exit: a partial
// answer from the step log when steps exist, the generic fallback
// otherwise.
func (l *Loop) degraded(steps []Step, pending []PendingAction, used []string) Response {
	if len(steps) == 0 {
		return Response{Answer: fallbackAnswer, Confidence: confidenceFallback}
	}
	return Response{
		Answer:         summarizeSteps(steps),
		Confidence:     confidencePartial,
		Steps:          steps,
		PendingActions: pending,
		ToolsUsed:      used,
	}
}

// buildDeclarations converts the registry catalog into model tool
// declarations.
func buildDeclarations(registry *tools.Registry) []llms.Tool {
	defs := registry.List()
	out := make([]llms.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        string(d.Name),
				Description: d.Description,
				Parameters:  d.Parameters.AsMap(),
			},
		})
	}
	return out
}

// firstToolCall extracts the tool invocation from a model choice. The
// model selects one tool per step in this design; extra calls in the
// same choice are ignored.
func firstToolCall(choice *llms.ContentChoice) (llms.ToolCall, bool) {
	for _, call := range choice.ToolCalls {
		if call.FunctionCall != nil {
			return call, true
		}
	}
	return llms.ToolCall{}, false
}

// parseArguments decodes the model's JSON argument blob. Malformed
// arguments become an empty map and fail parameter validation instead
// of crashing the loop.
func parseArguments(raw string) map[string]any {
	params := make(map[string]any)
	if raw == "" {
		return params
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return map[string]any{}
	}
	return params
}

// pendingFromResult builds a typed pending action from a
// confirmation-flagged result. Results without a staged payload are
// skipped; a confirmation flag alone stages nothing.
func pendingFromResult(result tools.Result) (PendingAction, bool) {
	staged := result.Staged
	if staged == nil {
		return PendingAction{}, false
	}

	action := PendingAction{
		ID:          uuid.NewString(),
		Kind:        staged.Kind,
		Description: staged.Description,
		Order:       staged.Order,
		Note:        staged.Note,
		Update:      staged.Update,
	}
	switch {
	case staged.Order != nil:
		action.PatientID = staged.Order.PatientID
		action.PatientName = staged.Order.PatientName
	case staged.Note != nil:
		action.PatientID = staged.Note.PatientID
		action.PatientName = staged.Note.PatientName
	case staged.Update != nil:
		action.PatientID = staged.Update.PatientID
		action.PatientName = staged.Update.PatientName
	}
	return action, true
}
