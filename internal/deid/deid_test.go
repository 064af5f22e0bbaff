package deid

import (
	"strings"
	"testing"
)

func TestScrub_PatientName(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		patientName string
		want        string
	}{
		{
			name:        "exact name",
			text:        "Ravi Sharma complains of chest pain",
			patientName: "Ravi Sharma",
			want:        "[PATIENT] complains of chest pain",
		},
		{
			name:        "case insensitive",
			text:        "reviewed RAVI SHARMA and ravi sharma again",
			patientName: "Ravi Sharma",
			want:        "reviewed [PATIENT] and [PATIENT] again",
		},
		{
			name:        "empty name skips name pass",
			text:        "patient stable overnight",
			patientName: "",
			want:        "patient stable overnight",
		},
		{
			name:        "name with regex metacharacters",
			text:        "seen J. O'Brien (Jr) today",
			patientName: "J. O'Brien (Jr)",
			want:        "seen [PATIENT] today",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scrub(tt.text, tt.patientName)
			if got != tt.want {
				t.Errorf("Scrub() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScrub_Patterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "mrn prefix",
			text: "chart MRN-48213 reviewed",
			want: "chart [ID] reviewed",
		},
		{
			name: "letter prefixed record number",
			text: "see record AB123456 for details",
			want: "see record [ID] for details",
		},
		{
			name: "hyphenated short id",
			text: "vitals for P-1001 trending up",
			want: "vitals for [ID] trending up",
		},
		{
			name: "phone number",
			text: "call 078-1234-5678 to confirm",
			want: "call [PHONE] to confirm",
		},
		{
			name: "iso date",
			text: "admitted 2024-01-15 overnight",
			want: "admitted [DATE] overnight",
		},
		{
			name: "slash date",
			text: "follow up on 15/01/2024 please",
			want: "follow up on [DATE] please",
		},
		{
			name: "written date",
			text: "discharged Jan 15, 2024 afternoon",
			want: "discharged [DATE] afternoon",
		},
		{
			name: "record id not misread as phone",
			text: "labs under PID 994213 pending",
			want: "labs under [ID] pending",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scrub(tt.text, "")
			if got != tt.want {
				t.Errorf("Scrub() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScrub_NoResidualName(t *testing.T) {
	text := "Meera Iyer, MRN-10042, seen on 2024-03-02. meera iyer improving."
	got := Scrub(text, "Meera Iyer")

	if strings.Contains(strings.ToLower(got), "meera") {
		t.Errorf("scrubbed text still contains the patient name: %q", got)
	}
	if !strings.Contains(got, PlaceholderName) {
		t.Errorf("expected %s placeholder in %q", PlaceholderName, got)
	}
	if !strings.Contains(got, PlaceholderID) {
		t.Errorf("expected %s placeholder in %q", PlaceholderID, got)
	}
	if !strings.Contains(got, PlaceholderDate) {
		t.Errorf("expected %s placeholder in %q", PlaceholderDate, got)
	}
}

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "matches preserve vocabulary order",
			text: "ordered a troponin for chest pain, repeat ECG pending",
			want: []string{"chest pain", "troponin", "ecg", "pending"},
		},
		{
			name: "case insensitive",
			text: "CBC and Blood Culture sent",
			want: []string{"cbc", "blood culture"},
		},
		{
			name: "duplicates collapse",
			text: "troponin now, troponin again in 3 hours",
			want: []string{"troponin"},
		},
		{
			name: "workflow terms",
			text: "vitals stable, plan discharge tomorrow",
			want: []string{"discharge", "vitals"},
		},
		{
			name: "no matches",
			text: "family updated at bedside",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractTags() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExtractTags()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
