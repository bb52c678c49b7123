package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/capitals/internal/session"
	"github.com/abhisek/capitals/internal/store"
	"github.com/abhisek/capitals/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz statistics",
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
		st := session.Summarize(history)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render("Statistics"))
		fmt.Fprintf(out, "  Quizzes played:  %d\n", st.Quizzes)
		if st.Quizzes == 0 {
			return nil
		}
		fmt.Fprintf(out, "  Average score:   %.1f/%d\n", st.AverageScore, store.QuestionsPerQuiz)
		fmt.Fprintf(out, "  Best score:      %s\n", theme.Score(st.BestScore, store.QuestionsPerQuiz))
		fmt.Fprintf(out, "  Perfect quizzes: %d\n", st.PerfectCount)
		return nil
	},
}
