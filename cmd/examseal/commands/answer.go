package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// answer <question-id> <text>: record an answer. The plaintext is sealed
// immediately; only the ciphertext touches disk. An empty text clears the
// answer.
func answerCmd() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "answer <question-id> <text>",
		Short: "Record (or clear) an answer for a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			questionID, text := args[0], args[1]

			m, err := resumeMachine(ctx)
			if err != nil {
				return err
			}
			if err := m.RecordAnswer(questionID, index, text); err != nil {
				return err
			}
			sessionID := m.Session().ID

			if text == "" {
				if err := wire.Local.DeleteDraft(ctx, sessionID, questionID); err != nil {
					return err
				}
			} else {
				sealed, err := wire.Sealer.Encrypt(text, questionID, sessionID)
				if err != nil {
					return err
				}
				if err := wire.Local.SaveDraft(ctx, sealed); err != nil {
					return err
				}
			}
			if err := saveSession(ctx, m); err != nil {
				return err
			}

			sess := m.Session()
			fmt.Printf("Recorded. %d question(s) answered.\n", sess.AnswerCount())
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "zero-based question index")
	return cmd
}
