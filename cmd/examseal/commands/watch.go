package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"examseal/internal/services/exam"
)

// watch: run the countdown driver (and network monitor, when a backend is
// configured) in the foreground until the session settles or the process is
// interrupted. When the timer expires the answers are submitted automatically.
func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the countdown until the session settles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m, err := resumeMachine(ctx)
			if err != nil {
				return err
			}
			if wire.Monitor != nil {
				go wire.Monitor.Run(ctx)
			}

			onExpire := func(ctx context.Context) error {
				fmt.Println("Time is up. Submitting your answers...")
				answers, err := draftPlaintexts(ctx, m)
				if err != nil {
					return err
				}
				outcome, err := wire.Submit.Submit(ctx, m, answers)
				if err != nil {
					return err
				}
				report(outcome)
				return nil
			}

			driver := exam.NewDriver(m, wire.Cfg.TickInterval, wire.Clock, wire.Log, onExpire)
			runErr := driver.Run(ctx)

			// Persist whatever state the driver left the session in, even
			// on interrupt.
			if err := saveSession(context.WithoutCancel(ctx), m); err != nil {
				return err
			}
			if errors.Is(runErr, context.Canceled) {
				return nil
			}
			return runErr
		},
	}
}
