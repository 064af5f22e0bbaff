package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careops/wardagent/internal/memory"
)

var (
	historyDoctor  string
	historyPatient string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show de-identified episode history for a doctor",
	Long: `Show stored interaction episodes for a doctor, most recent first.

All episodes are de-identified at capture time: patient names and record
ids never appear in stored summaries. Use --patient to narrow the list
to episodes about one patient.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyDoctor, "doctor", "d", "demo-doctor", "doctor identifier")
	historyCmd.Flags().StringVarP(&historyPatient, "patient", "p", "", "narrow to one patient id")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max episodes to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	theme := defaultTheme

	var episodes []memory.Episode
	if historyPatient != "" {
		episodes = memStore.PatientHistory(ctx, historyDoctor, historyPatient, historyLimit)
	} else {
		episodes = memStore.Recent(ctx, historyDoctor, historyLimit)
	}
	if len(episodes) == 0 {
		fmt.Println("No episodes recorded.")
		return nil
	}

	for _, ep := range episodes {
		line := fmt.Sprintf("[%s] %s", ep.Timestamp.Format("2006-01-02 15:04"), ep.Summary)
		fmt.Println(line)
		meta := fmt.Sprintf("  id=%s outcome=%s", ep.ID, ep.Outcome)
		if len(ep.Tags) > 0 {
			meta += fmt.Sprintf(" tags=%v", ep.Tags)
		}
		fmt.Println(theme.hintStyle().Render(meta))
	}
	return nil
}
