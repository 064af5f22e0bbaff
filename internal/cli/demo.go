package cli

import (
	"time"

	"github.com/careops/wardagent/internal/patient"
)

// demoPatients returns a small ward board for running the CLI without a
// live hospital system behind it.
func demoPatients() []patient.Patient {
	now := time.Now()
	return []patient.Patient{
		{
			ID:              "P-1001",
			Name:            "Ravi Sharma",
			Age:             62,
			Sex:             "M",
			Triage:          patient.TriageRed,
			ChiefComplaints: []string{"chest pain", "shortness of breath"},
			Vitals: &patient.VitalSigns{
				HeartRate:        118,
				RespiratoryRate:  26,
				SystolicBP:       92,
				DiastolicBP:      58,
				TemperatureC:     37.8,
				OxygenSaturation: 91,
				RecordedAt:       now.Add(-10 * time.Minute),
			},
			Orders: []patient.Order{
				{ID: "O-1", Category: "investigation", Label: "ECG", Status: "completed"},
				{ID: "O-2", Category: "investigation", Label: "Troponin", Status: "in_progress", Priority: "stat"},
			},
			LabResults: []patient.LabResult{
				{Name: "Troponin I", Value: "0.8", Unit: "ng/mL", Flag: "critical", ResultedAt: now.Add(-25 * time.Minute)},
			},
			ActiveProblems: []string{"acute coronary syndrome"},
			Medications:    []string{"Aspirin", "Atorvastatin"},
		},
		{
			ID:              "P-1002",
			Name:            "Meera Iyer",
			Age:             45,
			Sex:             "F",
			Triage:          patient.TriageYellow,
			ChiefComplaints: []string{"abdominal pain"},
			Vitals: &patient.VitalSigns{
				HeartRate:        84,
				RespiratoryRate:  16,
				SystolicBP:       124,
				DiastolicBP:      78,
				TemperatureC:     37.1,
				OxygenSaturation: 98,
				RecordedAt:       now.Add(-40 * time.Minute),
			},
			LabResults: []patient.LabResult{
				{Name: "WBC", Value: "12.4", Unit: "10^9/L", Flag: "high", ResultedAt: now.Add(-time.Hour)},
				{Name: "Lipase", Value: "210", Unit: "U/L", Flag: "high", ResultedAt: now.Add(-time.Hour)},
			},
			ActiveProblems: []string{"suspected pancreatitis"},
			Medications:    []string{"Paracetamol", "Omeprazole"},
		},
		{
			ID:              "P-1003",
			Name:            "Arjun Nair",
			Age:             71,
			Sex:             "M",
			Triage:          patient.TriageOrange,
			ChiefComplaints: []string{"fall", "confusion"},
			Vitals: &patient.VitalSigns{
				HeartRate:        72,
				RespiratoryRate:  18,
				SystolicBP:       148,
				DiastolicBP:      90,
				TemperatureC:     36.9,
				OxygenSaturation: 96,
				RecordedAt:       now.Add(-15 * time.Minute),
			},
			Orders: []patient.Order{
				{ID: "O-3", Category: "investigation", Label: "CT Head", Status: "pending", Priority: "urgent"},
			},
			ActiveProblems: []string{"fall under investigation", "atrial fibrillation"},
			Medications:    []string{"Warfarin", "Bisoprolol"},
		},
		{
			ID:              "P-1004",
			Name:            "Sara Thomas",
			Age:             29,
			Sex:             "F",
			Triage:          patient.TriageGreen,
			ChiefComplaints: []string{"ankle sprain"},
			Vitals: &patient.VitalSigns{
				HeartRate:        68,
				RespiratoryRate:  14,
				SystolicBP:       112,
				DiastolicBP:      70,
				TemperatureC:     36.7,
				OxygenSaturation: 99,
				RecordedAt:       now.Add(-2 * time.Hour),
			},
			Disposition: "awaiting discharge",
		},
	}
}
