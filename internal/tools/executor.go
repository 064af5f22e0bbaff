package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/careops/wardagent/internal/metrics"
)

// Validation is the outcome of a parameter check.
type Validation struct {
	Valid   bool
	Missing []string
}

// ValidateParams checks that every schema-required parameter is present
// and non-nil. Returns a structured failure, never an error.
func ValidateParams(schema Schema, params map[string]any) Validation {
	var missing []string
	for _, name := range schema.Required {
		v, ok := params[name]
		if !ok || v == nil {
			missing = append(missing, name)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return Validation{Valid: len(missing) == 0, Missing: missing}
}

// Executor validates and dispatches tool calls. Confirmation policy is
// centralized here: a tool listed in the confirm set has its successful
// results escalated regardless of what the handler returned.
type Executor struct {
	registry *Registry
	confirm  map[string]bool
	logger   *slog.Logger
	stats    *metrics.Collector
}

// NewExecutor creates an executor over a registry. confirm maps tool
// names to whether their results require user confirmation.
func NewExecutor(registry *Registry, confirm map[string]bool, logger *slog.Logger, stats *metrics.Collector) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry: registry,
		confirm:  confirm,
		logger:   logger,
		stats:    stats,
	}
}

// Registry exposes the catalog for declaration building.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// RequiresConfirmation reports the static policy for a tool.
func (e *Executor) RequiresConfirmation(name Name) bool {
	return e.confirm[string(name)]
}

// Execute runs one tool call. It never returns an error and never lets
// a handler panic escape: every failure mode is folded into a Result so
// the model can observe it and recover.
func (e *Executor) Execute(ctx context.Context, name Name, params map[string]any, actx *Context) (res Result) {
	def, ok := e.registry.Get(name)
	if !ok {
		e.logger.Warn("unknown tool requested", "tool", string(name))
		return failure(fmt.Sprintf("unknown tool: %s", name))
	}

	if v := ValidateParams(def.Parameters, params); !v.Valid {
		return failure(fmt.Sprintf("missing required parameter(s): %s", strings.Join(v.Missing, ", ")))
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool handler panicked", "tool", string(name), "panic", r)
			res = failure(fmt.Sprintf("tool %s failed: internal error", name))
		}
	}()

	start := time.Now()
	result, err := def.Handler(ctx, params, actx)
	if e.stats != nil {
		e.stats.RecordTiming(metrics.OpToolCall, time.Since(start))
	}
	if err != nil {
		e.logger.Warn("tool handler failed", "tool", string(name), "error", err)
		return failure(err.Error())
	}

	// Keep the Result invariants honest even for misbehaving handlers.
	if !result.Success {
		result.Data = nil
		result.RequiresConfirmation = false
		result.Staged = nil
		return result
	}

	if e.confirm[string(name)] {
		result.RequiresConfirmation = true
	}

	e.logger.Debug("tool executed",
		"tool", string(name),
		"success", result.Success,
		"requires_confirmation", result.RequiresConfirmation,
	)
	return result
}
