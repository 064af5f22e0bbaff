// Package tools provides the typed catalog of operations the reasoning
// loop may invoke against patient data, and the executor that dispatches
// them.
package tools

import (
	"context"

	"github.com/careops/wardagent/internal/patient"
)

// Name identifies a tool. The set is closed at compile time; lookup of
// anything else resolves to "absent" because the model may emit
// arbitrary names.
type Name string

const (
	NameSearchPatients   Name = "search_patients"
	NameGetPatient       Name = "get_patient_details"
	NameGetVitals        Name = "get_vitals"
	NameGetLabResults    Name = "get_lab_results"
	NameDrugInteractions Name = "check_drug_interactions"
	NameAddOrder         Name = "add_order"
	NameAddNote          Name = "add_note"
	NameUpdatePatient    Name = "update_patient"
)

// Property describes one parameter in a tool schema.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Schema is a JSON-Schema-like parameter contract.
type Schema struct {
	Properties map[string]Property
	Required   []string
}

// AsMap renders the schema in the JSON-Schema object form expected by
// model tool declarations.
func (s Schema) AsMap() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = propertyMap(p)
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   s.Required,
	}
}

func propertyMap(p Property) map[string]any {
	m := map[string]any{"type": p.Type}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		m["enum"] = p.Enum
	}
	if p.Items != nil {
		m["items"] = propertyMap(*p.Items)
	}
	return m
}

// User is the acting clinician.
type User struct {
	ID   string
	Name string
	Role string
}

// Context carries the per-invocation view handlers read from.
// Constructed fresh per agent call, never persisted.
type Context struct {
	Patient  *patient.Patient
	Patients []patient.Patient
	User     User

	// UpdatePatient applies a confirmed mutation. Handlers never call
	// it; it exists for the external confirmation step that consumes
	// staged actions.
	UpdatePatient func(ctx context.Context, id string, update func(*patient.Patient)) error
}

// StagedKind tags the typed payload of a staged mutation.
type StagedKind string

const (
	StagedOrderKind  StagedKind = "order"
	StagedNoteKind   StagedKind = "note"
	StagedUpdateKind StagedKind = "update"
)

// StagedOrder is a proposed clinical order.
type StagedOrder struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Category    string `json:"category"`
	Label       string `json:"label"`
	Priority    string `json:"priority,omitempty"`
}

// StagedNote is a proposed clinical note.
type StagedNote struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Note        string `json:"note"`
}

// StagedUpdate is a proposed single-field patient update.
type StagedUpdate struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Field       string `json:"field"`
	Value       string `json:"value"`
}

// Staged is the typed union describing a mutation a write tool proposes
// but never applies. Exactly one payload field is set, per Kind.
type Staged struct {
	Kind        StagedKind    `json:"kind"`
	Description string        `json:"description"`
	Order       *StagedOrder  `json:"order,omitempty"`
	Note        *StagedNote   `json:"note,omitempty"`
	Update      *StagedUpdate `json:"update,omitempty"`
}

// Result is the outcome of one tool execution.
// Invariants: Success=false implies Data is nil; RequiresConfirmation
// and Staged are only set when Success=true.
type Result struct {
	Success              bool           `json:"success"`
	Data                 map[string]any `json:"data,omitempty"`
	Rationale            string         `json:"rationale,omitempty"`
	Error                string         `json:"error,omitempty"`
	RequiresConfirmation bool           `json:"requires_confirmation,omitempty"`
	Staged               *Staged        `json:"staged,omitempty"`
}

// Handler executes a tool. Read tools are side-effect-free; write tools
// return a staged payload and must not mutate anything.
type Handler func(ctx context.Context, params map[string]any, actx *Context) (Result, error)

// Definition is one immutable catalog entry.
type Definition struct {
	Name        Name
	Description string
	Parameters  Schema
	Handler     Handler
}

// failure builds an error result.
func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// success builds a data result.
func success(data map[string]any, rationale string) Result {
	return Result{Success: true, Data: data, Rationale: rationale}
}
