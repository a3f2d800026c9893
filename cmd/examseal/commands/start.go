package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"examseal/internal/services/exam"
)

// start <exam-id>: create a session and begin the countdown.
func startCmd() *cobra.Command {
	var (
		student string
		minutes int
	)
	cmd := &cobra.Command{
		Use:   "start <exam-id>",
		Short: "Begin an exam session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if _, ok, err := wire.Local.ActiveSession(ctx); err != nil {
				return err
			} else if ok {
				return fmt.Errorf("an exam session is already active. submit or reset it first")
			}
			if err := wire.Sealer.EnsureKey(); err != nil {
				return err
			}

			var duration *int
			if minutes > 0 {
				duration = &minutes
			}
			m := exam.New(args[0], student, duration, wire.Clock)
			if err := m.Start(); err != nil {
				return err
			}
			if err := wire.Lockdown.Start(); err != nil {
				return err
			}
			if err := saveSession(ctx, m); err != nil {
				return err
			}

			fmt.Printf("Session %s started.\n", m.Session().ID)
			if remaining, ok := m.TimeRemaining(); ok {
				fmt.Printf("Time remaining: %s\n", remaining)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&student, "student", "", "student identifier")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "exam duration in minutes (0 = untimed)")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}
