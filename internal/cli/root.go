// Package cli wires the nanosheet commands: the sync server, a terminal
// rendering of a sheet, sheet regeneration, and local preferences.
package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nanosheet/internal/store"
)

type App struct {
	Dir     string
	SheetID string
	User    string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "nanosheet",
		Short:        "Collaborative card grid: shared time axis, parallel lanes",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the sync server + cards API
  nanosheet serve --addr 127.0.0.1:8787

  # Render a sheet in the terminal
  nanosheet show --sheet demo

  # Reseed a sheet with random cards (server must be running)
  nanosheet regenerate --sheet demo --server http://127.0.0.1:8787
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("NANOSHEET_DIR", ""), "Path to store dir (default: nearest .nanosheet, else ./.nanosheet)")
	cmd.PersistentFlags().StringVar(&app.SheetID, "sheet", envOr("NANOSHEET_SHEET", ""), "Sheet id (default: last opened sheet from prefs)")
	cmd.PersistentFlags().StringVar(&app.User, "user", envOr("NANOSHEET_USER", ""), "User id attributed to edits and undo history")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newRegenerateCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newPrefsCmd(app))

	return cmd
}

// resolveStore locates the store directory, preferring --dir, then walking
// up for an existing .nanosheet.
func resolveStore(app *App) (store.Store, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
	}
	s := store.Store{Dir: dir}
	if err := s.Ensure(); err != nil {
		return store.Store{}, err
	}
	return s, nil
}

// resolveSheetID picks the sheet to act on: --sheet, then the last sheet
// recorded in prefs, then "default". The choice is written back to prefs so
// the next invocation sticks.
func resolveSheetID(app *App, s store.Store) (string, error) {
	id := strings.TrimSpace(app.SheetID)
	prefs, err := s.LoadPrefs()
	if err != nil {
		return "", err
	}
	if id == "" {
		id = prefs.LastSheetID
	}
	if id == "" {
		id = "default"
	}
	if prefs.LastSheetID != id {
		prefs.LastSheetID = id
		if err := s.SavePrefs(prefs); err != nil {
			return "", err
		}
	}
	return id, nil
}

func openDB(ctx context.Context, s store.Store) (*store.DB, error) {
	return s.Open(ctx)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
