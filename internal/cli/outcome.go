package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careops/wardagent/internal/memory"
)

var outcomeDoctor string

var outcomeCmd = &cobra.Command{
	Use:   "outcome <episode-id> <accepted|rejected|modified>",
	Short: "Record how a suggestion worked out",
	Long: `Tag a stored episode with the doctor's decision on the assistant's
suggestion. Outcome tags make repeated retrievals more useful: episodes
that led to accepted actions are worth surfacing again.`,
	Args: cobra.ExactArgs(2),
	RunE: runOutcome,
}

func init() {
	outcomeCmd.Flags().StringVarP(&outcomeDoctor, "doctor", "d", "demo-doctor", "doctor identifier")
}

func runOutcome(cmd *cobra.Command, args []string) error {
	episodeID := args[0]
	outcome := memory.Outcome(args[1])

	switch outcome {
	case memory.OutcomeAccepted, memory.OutcomeRejected, memory.OutcomeModified:
	default:
		return fmt.Errorf("invalid outcome %q: must be accepted, rejected or modified", args[1])
	}

	memStore.UpdateOutcome(cmd.Context(), outcomeDoctor, episodeID, outcome)
	fmt.Printf("Episode %s marked %s.\n", episodeID, outcome)
	return nil
}
