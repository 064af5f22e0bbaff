package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/careops/wardagent/internal/tools"
)

// buildSystemPrompt assembles the system message from the acting user,
// the current patient context and any retrieved memory block.
func buildSystemPrompt(actx *tools.Context, memoryContext string) string {
	var b strings.Builder

	b.WriteString("You are a clinical workflow assistant for emergency department staff. ")
	b.WriteString("Answer questions about patients using the provided tools. ")
	b.WriteString("Never invent clinical data: if a tool fails or returns nothing, say so. ")
	b.WriteString("Orders, notes and patient updates are only STAGED by tools; they require explicit clinician confirmation and you must say so when you stage one.\n")

	if actx.User.Name != "" {
		fmt.Fprintf(&b, "\nYou are assisting %s (%s).\n", actx.User.Name, actx.User.Role)
	}

	if actx.Patient != nil {
		p := actx.Patient
		fmt.Fprintf(&b, "\nCurrent patient: %s (id %s), triage %s", p.Name, p.ID, p.Triage)
		if len(p.ChiefComplaints) > 0 {
			fmt.Fprintf(&b, ", presenting with %s", strings.Join(p.ChiefComplaints, ", "))
		}
		b.WriteString(".\n")
	} else {
		fmt.Fprintf(&b, "\nNo patient is currently selected; %d patients are on the board.\n", len(actx.Patients))
	}

	if memoryContext != "" {
		b.WriteString("\nRelevant past interactions (de-identified):\n")
		b.WriteString(memoryContext)
		b.WriteString("\n")
	}

	return b.String()
}

// observationJSON serializes a tool result into the observation text fed
// back to the model. Failures are serialized too, so the model can
// recover by trying something else.
func observationJSON(result tools.Result) string {
	payload := map[string]any{"success": result.Success}
	if result.Success {
		payload["data"] = result.Data
		if result.Rationale != "" {
			payload["rationale"] = result.Rationale
		}
		if result.RequiresConfirmation {
			payload["requires_confirmation"] = true
		}
	} else {
		payload["error"] = result.Error
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"unserializable result: %s"}`, err)
	}
	return string(data)
}

// summarizeSteps builds a best-effort answer from the successful tool
// results gathered so far. Used on max-steps and timeout exits.
func summarizeSteps(steps []Step) string {
	var facts []string
	for _, s := range steps {
		if s.Result == nil || !s.Result.Success {
			continue
		}
		fact := fmt.Sprintf("%s: %s", s.Tool, compactData(s.Result))
		facts = append(facts, fact)
	}

	if len(facts) == 0 {
		return fallbackAnswer
	}

	var b strings.Builder
	b.WriteString("I couldn't finish reasoning about that, but here is what I found:\n")
	for _, f := range facts {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// compactData renders a result payload as short text, preferring the
// handler's own rationale when present.
func compactData(result *tools.Result) string {
	if result.Rationale != "" {
		return result.Rationale
	}
	data, err := json.Marshal(result.Data)
	if err != nil {
		return "(result available)"
	}
	const maxLen = 200
	s := string(data)
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
