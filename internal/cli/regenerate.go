package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nanosheet/internal/persist"
)

func newRegenerateCmd(app *App) *cobra.Command {
	var server string
	var lanes int
	var perLane []int

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Clear a sheet and reseed it with random cards",
		Example: strings.TrimSpace(`
# Eight lanes, random lengths
nanosheet regenerate --sheet demo

# Fixed lane lengths
nanosheet regenerate --sheet demo --lanes 3 --per-lane 5,1,8
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := resolveStore(app)
			if err != nil {
				return err
			}
			sheetID, err := resolveSheetID(app, st)
			if err != nil {
				return err
			}

			client := persist.NewClient(strings.TrimRight(server, "/"))
			res, err := client.Regenerate(cmd.Context(), sheetID, lanes, perLane)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "regenerated %s: %d lanes, %d cards (longest lane %d)\n",
				res.SheetID, res.Cols, res.TotalCards, res.Rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://127.0.0.1:8787", "Base URL of a running nanosheet server")
	cmd.Flags().IntVar(&lanes, "lanes", 8, "Number of lanes to create")
	cmd.Flags().IntSliceVar(&perLane, "per-lane", nil, "Cards per lane (default: random 3-20 each)")
	return cmd
}
