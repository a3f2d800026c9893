package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reset: wipe every trace of the exam from this machine. Sealed answers
// become unrecoverable once the key is gone.
func resetCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe local state and remove the encryption key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("reset deletes all local exam data and the encryption key. re-run with --force to confirm")
			}
			ctx := cmd.Context()

			wire.Lockdown.ForceEnd()
			if err := wire.Local.Wipe(ctx); err != nil {
				return err
			}
			if err := wire.Sealer.RemoveKey(); err != nil {
				return err
			}
			fmt.Println("Local exam state wiped.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm the wipe")
	return cmd
}
