package commands

import (
	"github.com/spf13/cobra"
)

// flush: retry a submission that parked pending while the backend was
// unreachable. The queued ciphertexts are re-sent as-is.
func flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Retry a submission that is parked pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := resumeMachine(ctx)
			if err != nil {
				return err
			}
			outcome, err := wire.Submit.Flush(ctx, m)
			if err != nil {
				return err
			}
			if err := saveSession(ctx, m); err != nil {
				return err
			}
			report(outcome)
			return nil
		},
	}
}
