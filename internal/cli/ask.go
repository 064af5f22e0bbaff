package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careops/wardagent/internal/agent"
	"github.com/careops/wardagent/internal/metrics"
	"github.com/careops/wardagent/internal/patient"
	"github.com/careops/wardagent/internal/tools"
)

var (
	askDoctor  string
	askPatient string
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant about patients on the ward board",
	Long: `Ask a question about the ward board and get a reasoned answer.

The assistant can look up patients, vitals, labs and drug interactions.
Write actions (orders, notes, patient updates) are never applied directly;
they come back as pending actions awaiting confirmation.

Examples:
  wardagent ask "show me critical patients"
  wardagent ask "what are the vitals for Ravi Sharma?" --patient P-1001
  wardagent ask "order a CBC for bed 3" --doctor dr-rao`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDoctor, "doctor", "d", "demo-doctor", "doctor identifier for episodic memory")
	askCmd.Flags().StringVarP(&askPatient, "patient", "p", "", "current patient id or name")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session identifier")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full response as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	board := demoPatients()
	repo := patient.NewMemoryRepository(board...)

	actx := &tools.Context{
		Patients: board,
		User:     tools.User{ID: askDoctor, Name: askDoctor, Role: "doctor"},
		UpdatePatient: func(ctx context.Context, id string, update func(*patient.Patient)) error {
			return repo.UpdateByID(ctx, id, update)
		},
	}
	if askPatient != "" {
		p := patient.Lookup(board, askPatient)
		if p == nil {
			exitWithError("patient %q not found on the board", askPatient)
		}
		actx.Patient = p
	}

	resp := agentSvc.Ask(ctx, args[0], actx, agent.AskParams{
		DoctorID:  askDoctor,
		SessionID: askSession,
	})

	if askJSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	renderResponse(resp)
	return nil
}

func renderResponse(resp agent.Response) {
	theme := defaultTheme

	if verbose {
		for _, step := range resp.Steps {
			if step.Tool == "" {
				continue
			}
			fmt.Println(theme.stepStyle().Render(
				fmt.Sprintf("  step %d: %s", step.Number, step.Tool)))
		}
		if len(resp.Steps) > 0 {
			fmt.Println()
		}
	}

	fmt.Println(theme.answerStyle().Render(resp.Answer))

	if len(resp.PendingActions) > 0 {
		fmt.Println()
		fmt.Println(theme.pendingStyle().Render("Pending actions (not yet applied):"))
		for _, pa := range resp.PendingActions {
			fmt.Printf("  • %s\n", describePending(pa))
		}
		fmt.Println(theme.hintStyle().Render("Confirm these in the dashboard to apply them."))
	}

	if verbose && len(resp.ToolsUsed) > 0 {
		fmt.Println()
		fmt.Println(theme.hintStyle().Render(
			fmt.Sprintf("tools: %s  confidence: %.2f", strings.Join(resp.ToolsUsed, ", "), resp.Confidence)))
	}

	if verbose {
		printTimings(theme)
	}
}

// printTimings renders the collector's per-operation timings, one line
// per operation that ran during this invocation.
func printTimings(theme Theme) {
	if stats == nil {
		return
	}
	snap := stats.GetSnapshot()
	rows := []struct {
		name string
		op   *metrics.OperationSnapshot
	}{
		{"model", snap.ModelCall},
		{"tools", snap.ToolCall},
		{"embedding", snap.Embedding},
		{"memory search", snap.MemorySearch},
		{"episode save", snap.EpisodeSave},
	}
	for _, row := range rows {
		if row.op == nil {
			continue
		}
		fmt.Println(theme.hintStyle().Render(
			fmt.Sprintf("%s: %dx, avg %.0fms", row.name, row.op.Count, row.op.AvgTimeMs)))
	}
}

func describePending(pa agent.PendingAction) string {
	if pa.Description != "" {
		return pa.Description
	}
	switch {
	case pa.Order != nil:
		return fmt.Sprintf("order %s (%s) for %s", pa.Order.Label, pa.Order.Category, pa.PatientName)
	case pa.Note != nil:
		return fmt.Sprintf("note for %s: %s", pa.PatientName, pa.Note.Note)
	case pa.Update != nil:
		return fmt.Sprintf("set %s of %s to %s", pa.Update.Field, pa.PatientName, pa.Update.Value)
	}
	return string(pa.Kind)
}
