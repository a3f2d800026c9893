package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, ok, err := wire.Local.ActiveSession(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No active exam session.")
				return nil
			}

			fmt.Printf("Session:   %s\n", session.ID)
			fmt.Printf("Exam:      %s\n", session.ExamID)
			fmt.Printf("Status:    %s\n", session.Status)
			fmt.Printf("Answered:  %d question(s)\n", session.AnswerCount())
			if remaining, timed := session.TimeRemaining(wire.Clock.Now()); timed {
				fmt.Printf("Remaining: %s\n", remaining)
			}
			if wire.Monitor != nil {
				wire.Monitor.Check(ctx)
			}
			fmt.Printf("Network:   %s\n", wire.Network.Status())
			return nil
		},
	}
}
