package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/capitals/internal/store"
	"github.com/abhisek/capitals/internal/ui/theme"
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List states and their capitals",
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

		printStates(cmd.OutOrStdout(), ctrl.States())
		return nil
	},
}

func printStates(out io.Writer, states []store.StateRecord) {
	fmt.Fprintf(out, "%s\n", theme.Title.Render(fmt.Sprintf("%-16s %-16s %-9s %s", "State", "Capital", "Statehood", "Capital since")))
	for _, s := range states {
		fmt.Fprintf(out, "%-16s %-16s %-9s %s\n", s.StateName, s.CapitalCity, optInt(s.StatehoodYear), optInt(s.CapitalSinceYear))
	}
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}
