package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/capitals/internal/store"
	"github.com/abhisek/capitals/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed quizzes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctrl, err := e.newController(cmd)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		history, err := ctrl.LoadHistory(cmd.Context())
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(history) > limit {
			history = history[:limit]
		}
		printHistory(cmd.OutOrStdout(), history)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum quizzes to show (0 for all)")
}

func printHistory(out io.Writer, history []store.QuizSession) {
	if len(history) == 0 {
		fmt.Fprintln(out, theme.Hint.Render("No completed quizzes yet."))
		return
	}
	fmt.Fprintln(out, theme.Title.Render("Quiz history"))
	for _, q := range history {
		fmt.Fprintf(out, "  #%-4d %s  %s\n",
			q.ID,
			theme.Score(q.Score, store.QuestionsPerQuiz),
			theme.Subtitle.Render(q.CompletedAt.Local().Format(time.DateTime)))
	}
}
