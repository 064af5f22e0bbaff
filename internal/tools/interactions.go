package tools

import "strings"

// Interaction is one known drug-drug interaction.
type Interaction struct {
	A        string
	B        string
	Severity string
	Effect   string
}

// knownInteractions is a small reference table keyed by normalized drug
// names. Not a clinical decision-support database; flags only the
// well-known pairs the demo data exercises.
var knownInteractions = []Interaction{
	{"warfarin", "aspirin", "major", "increased bleeding risk"},
	{"warfarin", "ibuprofen", "major", "increased bleeding risk"},
	{"warfarin", "amiodarone", "major", "potentiated anticoagulation"},
	{"clopidogrel", "omeprazole", "moderate", "reduced antiplatelet effect"},
	{"lisinopril", "spironolactone", "moderate", "hyperkalemia risk"},
	{"methotrexate", "trimethoprim", "major", "bone marrow suppression"},
	{"sildenafil", "nitroglycerin", "major", "severe hypotension"},
	{"simvastatin", "clarithromycin", "major", "rhabdomyolysis risk"},
	{"tramadol", "sertraline", "moderate", "serotonin syndrome risk"},
	{"digoxin", "furosemide", "moderate", "digoxin toxicity via hypokalemia"},
}

// findInteractions checks every pair in meds against the reference
// table. Matching is case-insensitive on normalized names.
func findInteractions(meds []string) []Interaction {
	normalized := make([]string, len(meds))
	for i, m := range meds {
		normalized[i] = strings.ToLower(strings.TrimSpace(m))
	}

	var found []Interaction
	for i := 0; i < len(normalized); i++ {
		for j := i + 1; j < len(normalized); j++ {
			if ix, ok := lookupPair(normalized[i], normalized[j]); ok {
				found = append(found, ix)
			}
		}
	}
	return found
}

func lookupPair(a, b string) (Interaction, bool) {
	for _, ix := range knownInteractions {
		if (ix.A == a && ix.B == b) || (ix.A == b && ix.B == a) {
			return ix, true
		}
	}
	return Interaction{}, false
}
