package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"examseal/internal/app"
	"examseal/internal/services/exam"
)

var (
	home       string
	backendURL string
	passphrase string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "examseal",
		Short:         "Encrypted exam client CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Load()
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			if backendURL != "" {
				cfg.BackendURL = backendURL
			}
			if passphrase != "" {
				cfg.Passphrase = passphrase
				cfg.KeyBackend = app.KeyBackendFile
			}
			wire, err = app.NewWire(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire != nil {
				return wire.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.examseal)")
	root.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL (empty = offline-only)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase for the file key backend")

	root.AddCommand(
		initCmd(), startCmd(), answerCmd(), submitCmd(),
		flushCmd(), statusCmd(), watchCmd(), resetCmd(),
	)
	return root.Execute()
}

// resumeMachine loads the active session from the local store. It fails when
// no session has been started on this machine.
func resumeMachine(ctx context.Context) (*exam.Machine, error) {
	session, ok, err := wire.Local.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no active exam session. run 'examseal start' first")
	}
	return exam.Resume(session, wire.Clock), nil
}

// saveSession mirrors the machine's state into the local store so the session
// survives restarts.
func saveSession(ctx context.Context, m *exam.Machine) error {
	return wire.Local.SaveSession(ctx, m.Session())
}
