package db

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/careops/wardagent/internal/memory"
)

// episodeRecord is the stored shape of an episode.
type episodeRecord struct {
	ID          surrealmodels.RecordID `json:"id,omitempty"`
	DoctorID    string                 `json:"doctor_id"`
	PatientRef  string                 `json:"patient_ref"`
	PatientName *string                `json:"patient_name,omitempty"`
	SessionID   *string                `json:"session_id,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Summary     string                 `json:"summary"`
	Query       string                 `json:"query"`
	Response    string                 `json:"response"`
	ToolsUsed   []string               `json:"tools_used"`
	Outcome     string                 `json:"outcome"`
	Embedding   []float32              `json:"embedding"`
	Tags        []string               `json:"tags"`
	Confidence  float64                `json:"confidence"`
}

func (r episodeRecord) toEpisode() memory.Episode {
	ep := memory.Episode{
		DoctorID:   r.DoctorID,
		PatientRef: r.PatientRef,
		Timestamp:  r.Timestamp,
		Summary:    r.Summary,
		Query:      r.Query,
		Response:   r.Response,
		ToolsUsed:  r.ToolsUsed,
		Outcome:    memory.Outcome(r.Outcome),
		Embedding:  r.Embedding,
		Tags:       r.Tags,
		Confidence: r.Confidence,
	}
	if s, ok := r.ID.ID.(string); ok {
		ep.ID = s
	}
	if r.PatientName != nil {
		ep.PatientName = *r.PatientName
	}
	if r.SessionID != nil {
		ep.SessionID = *r.SessionID
	}
	return ep
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Interface check: Client is a durable memory.Backend.
var _ memory.Backend = (*Client)(nil)

// CreateEpisode persists one episode.
func (c *Client) CreateEpisode(ctx context.Context, ep memory.Episode) error {
	sql := `
		CREATE type::record("episode", $id) SET
			doctor_id = $doctor_id,
			patient_ref = $patient_ref,
			patient_name = $patient_name,
			session_id = $session_id,
			timestamp = type::datetime($timestamp),
			summary = $summary,
			query = $query,
			response = $response,
			tools_used = $tools_used,
			outcome = $outcome,
			embedding = $embedding,
			tags = $tags,
			confidence = $confidence
	`

	toolsUsed := ep.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	tags := ep.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":           ep.ID,
		"doctor_id":    ep.DoctorID,
		"patient_ref":  ep.PatientRef,
		"patient_name": optional(ep.PatientName),
		"session_id":   optional(ep.SessionID),
		"timestamp":    ep.Timestamp.Format(time.RFC3339),
		"summary":      ep.Summary,
		"query":        ep.Query,
		"response":     ep.Response,
		"tools_used":   toolsUsed,
		"outcome":      string(ep.Outcome),
		"embedding":    ep.Embedding,
		"tags":         tags,
		"confidence":   ep.Confidence,
	})
	if err != nil {
		return fmt.Errorf("create episode: %w", err)
	}
	return nil
}

// RecentEpisodes returns up to limit episodes for a doctor, most recent
// first.
func (c *Client) RecentEpisodes(ctx context.Context, doctorID string, limit int) ([]memory.Episode, error) {
	if limit <= 0 {
		limit = 100
	}

	results, err := surrealdb.Query[[]episodeRecord](ctx, c.db, `
		SELECT * FROM episode
		WHERE doctor_id = $doctor_id
		ORDER BY timestamp DESC
		LIMIT $limit
	`, map[string]any{
		"doctor_id": doctorID,
		"limit":     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("recent episodes: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	records := (*results)[0].Result
	episodes := make([]memory.Episode, 0, len(records))
	for _, r := range records {
		episodes = append(episodes, r.toEpisode())
	}
	return episodes, nil
}

// UpdateOutcome sets the outcome tag on one episode. The doctor scope
// guards against cross-doctor updates.
func (c *Client) UpdateOutcome(ctx context.Context, doctorID, episodeID string, outcome memory.Outcome) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("episode", $id)
		SET outcome = $outcome
		WHERE doctor_id = $doctor_id
	`, map[string]any{
		"id":        episodeID,
		"outcome":   string(outcome),
		"doctor_id": doctorID,
	})
	if err != nil {
		return fmt.Errorf("update outcome: %w", err)
	}
	return nil
}

// DeleteOlderThan removes at most limit episodes older than cutoff for
// one doctor and returns the deleted ids.
func (c *Client) DeleteOlderThan(ctx context.Context, doctorID string, cutoff time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}

	// Select the batch first so the ids can be reported back for
	// vector-index maintenance.
	results, err := surrealdb.Query[[]episodeRecord](ctx, c.db, `
		SELECT id FROM episode
		WHERE doctor_id = $doctor_id AND timestamp < type::datetime($cutoff)
		ORDER BY timestamp ASC
		LIMIT $limit
	`, map[string]any{
		"doctor_id": doctorID,
		"cutoff":    cutoff.Format(time.RFC3339),
		"limit":     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("select expired episodes: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}

	var ids []string
	for _, r := range (*results)[0].Result {
		if s, ok := r.ID.ID.(string); ok {
			ids = append(ids, s)
		}
	}

	for _, id := range ids {
		if _, err := surrealdb.Query[any](ctx, c.db,
			`DELETE type::record("episode", $id)`,
			map[string]any{"id": id},
		); err != nil {
			return nil, fmt.Errorf("delete episode %s: %w", id, err)
		}
	}
	return ids, nil
}

type countResult struct {
	Count int `json:"count"`
}

// CountEpisodes returns the number of stored episodes for a doctor.
func (c *Client) CountEpisodes(ctx context.Context, doctorID string) (int, error) {
	results, err := surrealdb.Query[[]countResult](ctx, c.db, `
		SELECT count() AS count FROM episode
		WHERE doctor_id = $doctor_id
		GROUP ALL
	`, map[string]any{"doctor_id": doctorID})
	if err != nil {
		return 0, fmt.Errorf("count episodes: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}

type doctorRow struct {
	DoctorID string `json:"doctor_id"`
}

// DoctorIDs lists doctors with stored episodes.
func (c *Client) DoctorIDs(ctx context.Context) ([]string, error) {
	results, err := surrealdb.Query[[]doctorRow](ctx, c.db, `
		SELECT doctor_id FROM episode GROUP BY doctor_id
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("doctor ids: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	var ids []string
	for _, row := range (*results)[0].Result {
		ids = append(ids, row.DoctorID)
	}
	return ids, nil
}
