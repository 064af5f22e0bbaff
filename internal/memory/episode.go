// Package memory implements the episodic long-term memory layer:
// de-identified, embedded interaction records with semantic retrieval
// and retention management.
package memory

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Outcome is the post-hoc disposition of an episode's advice.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeModified Outcome = "modified"
	OutcomeNone     Outcome = "none"
)

// Episode is one persisted, de-identified interaction. Created once per
// completed interaction; mutated only through the outcome update;
// deleted only by retention cleanup.
type Episode struct {
	ID          string    `json:"id"`
	DoctorID    string    `json:"doctor_id"`
	PatientRef  string    `json:"patient_ref"` // keyed hash, never the raw id
	PatientName string    `json:"patient_name,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Summary     string    `json:"summary"`
	Query       string    `json:"query"`
	Response    string    `json:"response"`
	ToolsUsed   []string  `json:"tools_used,omitempty"`
	Outcome     Outcome   `json:"outcome"`
	Embedding   []float32 `json:"embedding,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Confidence  float64   `json:"confidence"`
}

// SearchResult pairs an episode with its similarity to a query
// embedding, in [-1, 1]. Ephemeral, computed per search.
type SearchResult struct {
	Episode    Episode `json:"episode"`
	Similarity float64 `json:"similarity"`
}

// PatientRef derives the display-safe patient reference stored in place
// of the raw id: HMAC-SHA256 under the configured key, truncated to 16
// hex chars. Keyed, so the reference resists casual re-identification
// and the retrieval filter can match exactly.
func PatientRef(key, patientID string) string {
	if patientID == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(patientID))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}
