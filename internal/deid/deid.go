// Package deid provides best-effort removal of direct patient
// identifiers from free text before it is embedded or persisted.
//
// This is a regex scrubber, not a certified de-identification algorithm.
// It targets accidental exposure in logs, summaries and embeddings.
package deid

import (
	"regexp"
	"strings"
)

const (
	// PlaceholderName replaces the patient's display name.
	PlaceholderName = "[PATIENT]"
	// PlaceholderID replaces record-number-looking tokens.
	PlaceholderID = "[ID]"
	// PlaceholderPhone replaces phone-number-length digit runs.
	PlaceholderPhone = "[PHONE]"
	// PlaceholderDate replaces date-like tokens.
	PlaceholderDate = "[DATE]"
)

var (
	// MRN-style record identifiers: a letter prefix followed by digits,
	// e.g. MRN-48213, P00123, ID:9942, P-1001.
	recordIDPattern = regexp.MustCompile(`(?i)\b(?:mrn|pid|id)[-: ]?\d{3,}\b|\b[A-Z]{1,3}-\d{3,}\b|\b[A-Z]{1,3}\d{5,}\b`)

	// Phone-number-length digit runs, with optional separators.
	phonePattern = regexp.MustCompile(`\+?\d[\d\-\s()]{7,}\d`)

	// Numeric and written dates: 2024-01-15, 15/01/2024, Jan 15, 2024.
	datePattern = regexp.MustCompile(`(?i)\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}[/.]\d{1,2}[/.]\d{2,4}\b|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.? \d{1,2},? \d{4}\b`)
)

// Scrub removes the patient's display name and identifier-looking tokens
// from text. Name replacement is case-insensitive and covers every
// occurrence. An empty name skips the name pass but not the pattern passes.
func Scrub(text, patientName string) string {
	out := text

	if name := strings.TrimSpace(patientName); name != "" {
		namePattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(name))
		if err == nil {
			out = namePattern.ReplaceAllString(out, PlaceholderName)
		}
	}

	// Order matters: record ids before phone runs, so MRN digits are not
	// misread as phone numbers.
	out = recordIDPattern.ReplaceAllString(out, PlaceholderID)
	out = datePattern.ReplaceAllString(out, PlaceholderDate)
	out = phonePattern.ReplaceAllString(out, PlaceholderPhone)

	return out
}

// vocabulary is the fixed clinical term list for tag extraction:
// condition names, labs, imaging modalities and workflow states.
var vocabulary = []string{
	// Conditions
	"chest pain", "shortness of breath", "sepsis", "stroke", "fracture",
	"pneumonia", "myocardial infarction", "hypertension", "diabetes",
	"asthma", "copd", "abdominal pain", "fever", "dehydration", "anemia",
	"arrhythmia", "allergic reaction", "head injury", "seizure",
	// Labs
	"complete blood count", "cbc", "troponin", "lactate", "creatinine",
	"electrolytes", "blood gas", "glucose", "hemoglobin", "d-dimer",
	"urinalysis", "blood culture", "inr", "crp",
	// Imaging
	"x-ray", "ct", "mri", "ultrasound", "echocardiogram", "ecg", "ekg",
	// Workflow
	"triage", "admission", "discharge", "transfer", "observation",
	"consult", "pending", "critical", "vitals",
}

// ExtractTags matches text against the fixed vocabulary, case-insensitively.
// Each term is tested once, so the result is duplicate-free and preserves
// vocabulary order.
func ExtractTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, term := range vocabulary {
		if strings.Contains(lower, term) {
			tags = append(tags, term)
		}
	}
	return tags
}
