package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careops/wardagent/internal/memory"
)

var cleanupDoctor string

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove episodes past the retention window",
	Long: `Remove stored episodes older than the configured retention period.

Without --doctor the sweep covers every doctor with stored episodes,
the same pass the background janitor runs on its interval.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVarP(&cleanupDoctor, "doctor", "d", "", "limit cleanup to one doctor")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var removed int
	if cleanupDoctor != "" {
		removed = memStore.CleanupOld(ctx, cleanupDoctor)
	} else {
		janitor := memory.NewJanitor(memStore, 0, logger)
		removed = janitor.Sweep(ctx)
	}

	fmt.Printf("Removed %d expired episode(s).\n", removed)
	return nil
}
