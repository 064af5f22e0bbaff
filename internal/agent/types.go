// Package agent implements the bounded tool-calling reasoning loop and
// the facade the surrounding application invokes.
package agent

import (
	"github.com/careops/wardagent/internal/tools"
)

// Step is one iteration of the loop: the model's thought, the action it
// took (if any) and the observed result. Steps are append-only and form
// the audit trail for one query.
type Step struct {
	Number   int            `json:"number"`
	Thought  string         `json:"thought,omitempty"`
	Tool     tools.Name     `json:"tool,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
	Result   *tools.Result  `json:"result,omitempty"`
	Terminal bool           `json:"terminal"`
}

// PendingAction is a staged, not-yet-applied mutation. Created only
// from confirmation-flagged tool results; consumed only by an external
// confirmation step. The loop never applies one.
type PendingAction struct {
	ID          string              `json:"id"`
	Kind        tools.StagedKind    `json:"kind"`
	Description string              `json:"description"`
	PatientID   string              `json:"patient_id,omitempty"`
	PatientName string              `json:"patient_name,omitempty"`
	Order       *tools.StagedOrder  `json:"order,omitempty"`
	Note        *tools.StagedNote   `json:"note,omitempty"`
	Update      *tools.StagedUpdate `json:"update,omitempty"`
}

// Response is the well-formed result of one agent invocation. The loop
// always produces one, even in total failure.
type Response struct {
	Answer         string          `json:"answer"`
	Confidence     float64         `json:"confidence"`
	Steps          []Step          `json:"steps,omitempty"`
	PendingActions []PendingAction `json:"pending_actions,omitempty"`
	ToolsUsed      []string        `json:"tools_used,omitempty"`
}

// Confidence levels by termination path.
const (
	confidenceFinalWithTools = 0.85
	confidenceFinalNoTools   = 0.7
	confidenceMaxSteps       = 0.5
	confidencePartial        = 0.3
	confidenceFallback       = 0.0
)

// Fixed fallback answers.
const (
	disabledAnswer = "The assistant is currently disabled. Please use the dashboard directly."
	fallbackAnswer = "I wasn't able to complete that request. Please try again or rephrase your question."
)
