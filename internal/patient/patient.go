// Package patient defines the patient data model and the repository
// boundary the agent core reads through.
package patient

import "time"

// TriageLevel is the triage color assigned at intake.
type TriageLevel string

const (
	TriageRed    TriageLevel = "Red"
	TriageOrange TriageLevel = "Orange"
	TriageYellow TriageLevel = "Yellow"
	TriageGreen  TriageLevel = "Green"
)

// VitalSigns is the most recent set of recorded vitals.
type VitalSigns struct {
	HeartRate        int       `json:"heart_rate,omitempty"`
	RespiratoryRate  int       `json:"respiratory_rate,omitempty"`
	SystolicBP       int       `json:"systolic_bp,omitempty"`
	DiastolicBP      int       `json:"diastolic_bp,omitempty"`
	TemperatureC     float64   `json:"temperature_c,omitempty"`
	OxygenSaturation int       `json:"oxygen_saturation,omitempty"`
	RecordedAt       time.Time `json:"recorded_at,omitempty"`
}

// Order is a clinical order attached to a patient.
type Order struct {
	ID       string `json:"id"`
	Category string `json:"category"` // investigation, medication, procedure
	Label    string `json:"label"`
	Status   string `json:"status"` // pending, in_progress, completed, cancelled
	Priority string `json:"priority,omitempty"`
}

// LabResult is a resulted lab or imaging study.
type LabResult struct {
	Name       string    `json:"name"`
	Value      string    `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	Flag       string    `json:"flag,omitempty"` // normal, high, low, critical
	ResultedAt time.Time `json:"resulted_at,omitempty"`
}

// Patient is the read model exposed to tool handlers.
type Patient struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Age             int         `json:"age,omitempty"`
	Sex             string      `json:"sex,omitempty"`
	Triage          TriageLevel `json:"triage"`
	ChiefComplaints []string    `json:"chief_complaints,omitempty"`
	Vitals          *VitalSigns `json:"vitals,omitempty"`
	Orders          []Order     `json:"orders,omitempty"`
	LabResults      []LabResult `json:"lab_results,omitempty"`
	ActiveProblems  []string    `json:"active_problems,omitempty"`
	Medications     []string    `json:"medications,omitempty"`
	Disposition     string      `json:"disposition,omitempty"`
}
