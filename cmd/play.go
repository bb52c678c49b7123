package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/capitals/internal/session"
	"github.com/abhisek/capitals/internal/store"
	"github.com/abhisek/capitals/internal/ui/theme"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a six-question quiz",
	Long: `Play a six-question quiz in the terminal.

Answer each question with 1, 2 or 3. Press Enter to skip a question.
Before finishing you can revise any answer with r<n> (for example r3).
Quitting with q leaves the quiz unfinished; the next play resumes it.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().Bool("new", false, "Start a new quiz even if an unfinished one exists")
}

func runPlay(cmd *cobra.Command, args []string) error {
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

	forceNew, _ := cmd.Flags().GetBool("new")
	return playQuiz(cmd.Context(), ctrl, !forceNew, cmd.InOrStdin(), cmd.OutOrStdout())
}

// errQuit ends a quiz early without finalizing it.
var errQuit = errors.New("quit")

// playQuiz runs one quiz on ctrl, which must be ready. When resume is set an
// unfinished quiz is continued instead of starting a new one.
func playQuiz(ctx context.Context, ctrl *session.Controller, resume bool, in io.Reader, out io.Writer) error {
	resumed := false
	if resume {
		ok, err := ctrl.ResumeSession(ctx)
		if err != nil {
			return err
		}
		resumed = ok
	}
	if !resumed {
		if _, err := ctrl.StartNewSession(ctx); err != nil {
			return err
		}
	}

	sess := ctrl.Session()
	if resumed {
		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Resuming quiz #%d", sess.ID)))
	} else {
		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Quiz #%d", sess.ID)))
	}
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for n := 1; n <= store.QuestionsPerQuiz; n++ {
		if ctrl.Selection(n) != 0 {
			continue
		}
		if err := askQuestion(ctx, ctrl, scanner, out, n); err != nil {
			return quitOrErr(err, out)
		}
	}

	if err := reviewLoop(ctx, ctrl, scanner, out); err != nil {
		return quitOrErr(err, out)
	}

	res, err := ctrl.FinalizeSession(ctx)
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

func quitOrErr(err error, out io.Writer) error {
	if errors.Is(err, errQuit) {
		fmt.Fprintln(out, theme.Hint.Render("Quiz saved. Run play again to resume it."))
		return nil
	}
	return err
}

func askQuestion(ctx context.Context, ctrl *session.Controller, scanner *bufio.Scanner, out io.Writer, n int) error {
	q, _ := ctrl.Question(n)
	fmt.Fprintf(out, "%s %s\n", theme.Subtitle.Render(fmt.Sprintf("%d/%d", n, store.QuestionsPerQuiz)), theme.Question.Render(q.Text()))
	current := ctrl.Selection(n)
	for i, c := range q.Choices {
		style := theme.Unselected
		if current == i+1 {
			style = theme.Selected
		}
		fmt.Fprintf(out, "  %d) %s\n", i+1, style.Render(c))
	}

	for {
		fmt.Fprint(out, "Your answer: ")
		if !scanner.Scan() {
			return errQuit
		}
		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			fmt.Fprintln(out)
			return nil
		case strings.EqualFold(input, "q"):
			return errQuit
		}
		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(q.Choices) {
			fmt.Fprintln(out, theme.Warning.Render("Enter 1, 2 or 3."))
			continue
		}
		if err := ctrl.SelectAnswer(ctx, n, choice); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return nil
	}
}

// reviewLoop shows the selections and lets the user revise them until they
// confirm.
func reviewLoop(ctx context.Context, ctrl *session.Controller, scanner *bufio.Scanner, out io.Writer) error {
	for {
		printSelections(out, ctrl)
		if u := ctrl.Unanswered(); u > 0 {
			fmt.Fprintln(out, theme.Warning.Render(fmt.Sprintf("%d unanswered; they count as incorrect.", u)))
		}
		fmt.Fprint(out, "Press Enter to finish, r<n> to revise, q to quit: ")
		if !scanner.Scan() {
			return nil
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch {
		case input == "":
			fmt.Fprintln(out)
			return nil
		case input == "q":
			return errQuit
		case strings.HasPrefix(input, "r"):
			n, err := strconv.Atoi(strings.TrimSpace(input[1:]))
			if err != nil || n < 1 || n > store.QuestionsPerQuiz {
				fmt.Fprintln(out, theme.Warning.Render(fmt.Sprintf("Pick a question 1-%d.", store.QuestionsPerQuiz)))
				continue
			}
			fmt.Fprintln(out)
			if err := askQuestion(ctx, ctrl, scanner, out, n); err != nil {
				return err
			}
		default:
			fmt.Fprintln(out, theme.Warning.Render("Unrecognized input."))
		}
	}
}

func printSelections(out io.Writer, ctrl *session.Controller) {
	for n := 1; n <= store.QuestionsPerQuiz; n++ {
		q, _ := ctrl.Question(n)
		answer := theme.Hint.Render("(none)")
		if c, ok := q.Choice(ctrl.Selection(n)); ok {
			answer = theme.Selected.Render(c)
		}
		fmt.Fprintf(out, "  %d. %-16s %s\n", n, q.State.StateName, answer)
	}
}

func printResult(out io.Writer, res *session.Result) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", theme.Score(res.Score, res.Total), theme.Title.Render(res.Message))
	for _, o := range res.Outcomes {
		line := fmt.Sprintf("%s %s: %s", theme.Mark(o.Correct), o.StateName, o.CorrectAnswer)
		if !o.Correct && o.Selected != "" {
			line += theme.Hint.Render(fmt.Sprintf(" (you said %s)", o.Selected))
		}
		b.WriteString("\n" + line)
	}
	fmt.Fprintln(out, theme.Card.Render(b.String()))
}
