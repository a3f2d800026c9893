package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Provision the answer encryption key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Sealer.EnsureKey(); err != nil {
				return err
			}
			fmt.Println("Encryption key ready.")
			return nil
		},
	}
}
