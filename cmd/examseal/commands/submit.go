package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"examseal/internal/services/exam"
	"examseal/internal/services/submit"
)

// submit: seal every answered question and persist the batch. When the
// backend is unreachable the submission parks as pending and 'flush' retries
// it later; the answers themselves are never lost.
func submitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Seal and submit all answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := resumeMachine(ctx)
			if err != nil {
				return err
			}
			answers, err := draftPlaintexts(ctx, m)
			if err != nil {
				return err
			}

			outcome, err := wire.Submit.Submit(ctx, m, answers)
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

// draftPlaintexts opens the sealed drafts back into memory so the submission
// service can re-seal them as one batch.
func draftPlaintexts(ctx context.Context, m *exam.Machine) (map[string]string, error) {
	drafts, err := wire.Local.Drafts(ctx, m.Session().ID)
	if err != nil {
		return nil, err
	}
	answers := make(map[string]string, len(drafts))
	for _, d := range drafts {
		text, err := wire.Sealer.Decrypt(d)
		if err != nil {
			return nil, fmt.Errorf("open draft for question %s: %w", d.QuestionID, err)
		}
		answers[d.QuestionID] = text
	}
	return answers, nil
}

func report(outcome submit.Outcome) {
	switch outcome {
	case submit.OutcomeSubmitted:
		if err := wire.Lockdown.End(); err != nil {
			wire.Log.Warn("lockdown release failed", zap.Error(err))
		}
		fmt.Println("Exam submitted.")
	case submit.OutcomePending:
		fmt.Println("You appear to be offline. Your answers are saved and will be submitted when the connection returns; run 'examseal flush' to retry.")
	}
}
