package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/capitals/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Seed the state catalog from a CSV file",
	Long: `Seed the state catalog from a CSV file (--csv or CAPITALS_CSV), or
from the bundled data when no file is given.

Columns: state, capital, city2, city3 and optional statehood year, capital
since year and capital rank. The first row is a header. The catalog is
only seeded when empty; existing states are never changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		empty, err := e.store.IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			n, err := e.store.CountStates(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Catalog already has %d states; nothing imported.\n", n)
			return nil
		}

		src, name := e.source()
		n, err := importer.Import(ctx, e.store, src)
		if err != nil {
			return fmt.Errorf("import %s: %w", name, err)
		}
		fmt.Fprintf(out, "Imported %d states from %s.\n", n, name)
		return nil
	},
}
