package tools

// Registry is the read-only tool catalog, built once at process start.
type Registry struct {
	defs  []Definition
	index map[Name]int
}

// NewRegistry builds the full clinical tool catalog.
func NewRegistry() *Registry {
	patientParam := Property{
		Type:        "string",
		Description: "Patient id or (part of) patient name; omit to use the current patient",
	}

	defs := []Definition{
		{
			Name:        NameSearchPatients,
			Description: "Search the patient list by triage level, name or chief complaint. Use for questions like 'show me all critical patients'.",
			Parameters: Schema{
				Properties: map[string]Property{
					"criteria": {Type: "string", Description: "Free-text criteria, e.g. 'critical', 'chest pain', or a name fragment"},
				},
			},
			Handler: searchPatientsHandler,
		},
		{
			Name:        NameGetPatient,
			Description: "Retrieve a patient's full record: demographics, triage, complaints, problems and medications.",
			Parameters: Schema{
				Properties: map[string]Property{"patient": patientParam},
				Required:   []string{"patient"},
			},
			Handler: getPatientHandler,
		},
		{
			Name:        NameGetVitals,
			Description: "Retrieve the most recent vital signs for a patient.",
			Parameters: Schema{
				Properties: map[string]Property{"patient": patientParam},
				Required:   []string{"patient"},
			},
			Handler: getVitalsHandler,
		},
		{
			Name:        NameGetLabResults,
			Description: "Retrieve resulted labs and imaging for a patient.",
			Parameters: Schema{
				Properties: map[string]Property{"patient": patientParam},
				Required:   []string{"patient"},
			},
			Handler: getLabResultsHandler,
		},
		{
			Name:        NameDrugInteractions,
			Description: "Check a list of medications for known drug-drug interactions.",
			Parameters: Schema{
				Properties: map[string]Property{
					"medications": {
						Type:        "array",
						Description: "Medication names to check against each other",
						Items:       &Property{Type: "string"},
					},
				},
				Required: []string{"medications"},
			},
			Handler: checkDrugInteractionsHandler,
		},
		{
			Name:        NameAddOrder,
			Description: "Stage a new clinical order for a patient. The order is NOT placed until the clinician confirms it.",
			Parameters: Schema{
				Properties: map[string]Property{
					"patient": patientParam,
					"label":   {Type: "string", Description: "Order label, e.g. 'Complete Blood Count'"},
					"category": {
						Type: "string",
						Enum: []string{"investigation", "medication", "procedure"},
					},
					"priority": {Type: "string", Enum: []string{"routine", "urgent", "stat"}},
				},
				Required: []string{"patient", "label", "category"},
			},
			Handler: addOrderHandler,
		},
		{
			Name:        NameAddNote,
			Description: "Stage a clinical note on a patient's record. The note is NOT written until the clinician confirms it.",
			Parameters: Schema{
				Properties: map[string]Property{
					"patient": patientParam,
					"note":    {Type: "string", Description: "Note text"},
				},
				Required: []string{"patient", "note"},
			},
			Handler: addNoteHandler,
		},
		{
			Name:        NameUpdatePatient,
			Description: "Stage a single-field patient update (triage or disposition). NOT applied until the clinician confirms it.",
			Parameters: Schema{
				Properties: map[string]Property{
					"patient": patientParam,
					"field":   {Type: "string", Enum: []string{"triage", "disposition"}},
					"value":   {Type: "string"},
				},
				Required: []string{"patient", "field", "value"},
			},
			Handler: updatePatientHandler,
		},
	}

	index := make(map[Name]int, len(defs))
	for i, d := range defs {
		index[d.Name] = i
	}
	return &Registry{defs: defs, index: index}
}

// Get looks up a tool by name. The second return is false for unknown
// names; lookups never panic or error.
func (r *Registry) Get(name Name) (Definition, bool) {
	i, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// List returns the catalog in registration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}
