package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change local view preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := resolveStore(app)
			if err != nil {
				return err
			}
			prefs, err := st.LoadPrefs()
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(prefs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}

	cmd.AddCommand(newPrefsSetCmd(app))
	return cmd
}

func newPrefsSetCmd(app *App) *cobra.Command {
	var orientation string
	var thumbSize int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update view preferences",
		Example: strings.TrimSpace(`
# Lanes as rows, time flowing right
nanosheet prefs set --orientation rows
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := resolveStore(app)
			if err != nil {
				return err
			}
			prefs, err := st.LoadPrefs()
			if err != nil {
				return err
			}

			changed := false
			if o := strings.TrimSpace(orientation); o != "" {
				if o != "columns" && o != "rows" {
					return fmt.Errorf("orientation must be \"columns\" or \"rows\", got %q", o)
				}
				prefs.Orientation = o
				changed = true
			}
			if thumbSize > 0 {
				prefs.ThumbSize = thumbSize
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to set; pass --orientation or --thumb-size")
			}
			return st.SavePrefs(prefs)
		},
	}

	cmd.Flags().StringVar(&orientation, "orientation", "", `View orientation: "columns" or "rows"`)
	cmd.Flags().IntVar(&thumbSize, "thumb-size", 0, "Card thumbnail edge in pixels")
	return cmd
}
