package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/careops/wardagent/internal/patient"
)

// getString extracts a string parameter, empty if absent or wrong type.
func getString(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// getStringSlice extracts a string-slice parameter, tolerating the
// []any form JSON decoding produces.
func getStringSlice(params map[string]any, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// resolvePatient finds a patient by free-text identifier, preferring the
// context's current patient when the identifier is empty.
func resolvePatient(actx *Context, identifier string) *patient.Patient {
	if identifier == "" {
		return actx.Patient
	}
	return patient.Lookup(actx.Patients, identifier)
}

// triageForCriteria maps loose clinician phrasing onto triage levels.
func triageForCriteria(criteria string) patient.TriageLevel {
	c := strings.ToLower(criteria)
	switch {
	case strings.Contains(c, "critical") || strings.Contains(c, "red"):
		return patient.TriageRed
	case strings.Contains(c, "urgent") || strings.Contains(c, "orange"):
		return patient.TriageOrange
	case strings.Contains(c, "yellow"):
		return patient.TriageYellow
	case strings.Contains(c, "green") || strings.Contains(c, "stable"):
		return patient.TriageGreen
	}
	return ""
}

func searchPatientsHandler(ctx context.Context, params map[string]any, actx *Context) (Result, error) {
	criteria := getString(params, "criteria")
	level := triageForCriteria(criteria)
	needle := strings.ToLower(criteria)

	matches := make([]map[string]any, 0)
	for _, p := range actx.Patients {
		matched := false
		switch {
		case level != "" && p.Triage == level:
			matched = true
		case level == "" && needle != "":
			if strings.Contains(strings.ToLower(p.Name), needle) {
				matched = true
			}
			for _, c := range p.ChiefComplaints {
				if strings.Contains(strings.ToLower(c), needle) {
					matched = true
				}
			}
		case criteria == "":
			matched = true
		}
		if matched {
			matches = append(matches, map[string]any{
				"id":     p.ID,
				"name":   p.Name,
				"triage": string(p.Triage),
			})
		}
	}

	return success(map[string]any{
		"patients": matches,
		"count":    len(matches),
	}, fmt.Sprintf("matched %d patient(s)", len(matches))), nil
}

func getPatientHandler(ctx context.Context, params map[string]any, actx *Context) (Result, error) {
	p := resolvePatient(actx, getString(params, "patient"))
	if p == nil {
		return failure("patient not found"), nil
	}

	return success(map[string]any{
		"id":               p.ID,
		"name":             p.Name,
		"age":              p.Age,
		"sex":              p.Sex,
		"triage":           string(p.Triage),
		"chief_complaints": p.ChiefComplaints,
		"active_problems":  p.ActiveProblems,
		"medications":      p.Medications,
		"disposition":      p.Disposition,
		"order_count":      len(p.Orders),
	}, ""), nil
}

func getVitalsHandler(ctx context.Context, params map[string]any, actx *Context) (Result, error) {
	p := resolvePatient(actx, getString(params, "patient"))
	if p == nil {
		return failure("patient not found"), nil
	}
	if p.Vitals == nil {
		return failure(fmt.Sprintf("no vitals recorded for %s", p.Name)), nil
	}

	v := p.Vitals
	return success(map[string]any{
		"patient_id":        p.ID,
		"heart_rate":        v.HeartRate,
		"respiratory_rate":  v.RespiratoryRate,
		"blood_pressure":    fmt.Sprintf("%d/%d", v.SystolicBP, v.DiastolicBP),
		"temperature_c":     v.TemperatureC,
		"oxygen_saturation": v.OxygenSaturation,
	}, ""), nil
}

func getLabResultsHandler(ctx context.Context, params map[string]any, actx *Context) (Result, error) {
	p := resolvePatient(actx, getString(params, "patient"))
	if p == nil {
		return failure("patient not found"), nil
	}

	results := make([]map[string]any, 0, len(p.LabResults))
	for _, lab := range p.LabResults {
		results = append(results, map[string]any{
			"name":  lab.Name,
			"value": lab.Value,
			"unit":  lab.Unit,
			"flag":  lab.Flag,
		})
	}

	return success(map[string]any{
		"patient_id": p.ID,
		"results":    results,
		"count":      len(results),
	}, ""), nil
}

func checkDrugInteractionsHandler(ctx context.Context, params map[string]any, actx *Context) (Result, error) {
	meds := getStringSlice(params, "medications")
	if len(meds) < 2 {
		return failure("at least two medications are required"), nil
	}

	interactions := findInteractions(meds)
	found := make([]map[string]any, 0, len(interactions))
	for _, ix := range interactions {
		found = append(found, map[string]any{
			"pair":     []string{ix.A, ix.B},
			"severity": ix.Severity,
			"effect":   ix.Effect,
		})
	}

	return success(map[string]any{
		"medications":      meds,
		"interactions":     found,
		"interactionCount": len(found),
	}, fmt.Sprintf("%d known interaction(s) among %d medications", len(found), len(meds))), nil
}

func addOrderHandler(ctx context.Context, params map[string]any, actx *Context) (Result, error) {
	p := resolvePatient(actx, getString(params, "patient"))
	if p == nil {
		return failure("patient not found"), nil
	}

	label := getString(params, "label")
	category := getString(params, "category")
	priority := getString(params, "priority")

	staged := &Staged{
		Kind:        StagedOrderKind,
		Description: fmt.Sprintf("Order %s (%s) for %s", label, category, p.Name),
		Order: &StagedOrder{
			PatientID:   p.ID,
			PatientName: p.Name,
			Category:    category,
			Label:       label,
			Priority:    priority,
		},
	}

	res := success(map[string]any{
		"action":     "PENDING_CONFIRMATION",
		"patient_id": p.ID,
		"label":      label,
		"category":   category,
	}, "order staged, awaiting confirmation")
	res.Staged = staged
	return res, nil
}

func addNoteHandler(ctx context.Context, params map[string]any, actx *Context) (Result, error) {
	p := resolvePatient(actx, getString(params, "patient"))
	if p == nil {
		return failure("patient not found"), nil
	}

	note := getString(params, "note")
	staged := &Staged{
		Kind:        StagedNoteKind,
		Description: fmt.Sprintf("Add note to %s", p.Name),
		Note: &StagedNote{
			PatientID:   p.ID,
			PatientName: p.Name,
			Note:        note,
		},
	}

	res := success(map[string]any{
		"action":     "PENDING_CONFIRMATION",
		"patient_id": p.ID,
		"note":       note,
	}, "note staged, awaiting confirmation")
	res.Staged = staged
	return res, nil
}

func updatePatientHandler(ctx context.Context, params map[string]any, actx *Context) (Result, error) {
	p := resolvePatient(actx, getString(params, "patient"))
	if p == nil {
		return failure("patient not found"), nil
	}

	field := getString(params, "field")
	value := getString(params, "value")

	allowed := map[string]bool{"triage": true, "disposition": true}
	if !allowed[field] {
		return failure(fmt.Sprintf("field %q cannot be updated", field)), nil
	}

	staged := &Staged{
		Kind:        StagedUpdateKind,
		Description: fmt.Sprintf("Set %s to %q for %s", field, value, p.Name),
		Update: &StagedUpdate{
			PatientID:   p.ID,
			PatientName: p.Name,
			Field:       field,
			Value:       value,
		},
	}

	res := success(map[string]any{
		"action":     "PENDING_CONFIRMATION",
		"patient_id": p.ID,
		"field":      field,
		"value":      value,
	}, "update staged, awaiting confirmation")
	res.Staged = staged
	return res, nil
}
